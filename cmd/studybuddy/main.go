// Command studybuddy is the interactive StudyBuddy client. It restores the
// last session, mounts the student or admin dashboard and reads commands from
// stdin.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/studybuddy/internal/app"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file loaded before configuration (ignored when missing)")
	configPath := flag.String("config", "", "YAML config file (overrides CONFIG_PATH)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(app.BuildVersion())
		return
	}

	if _, err := os.Stat(*envFile); err == nil {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("load %s: %v", *envFile, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("stat %s: %v", *envFile, err)
	}
	if *configPath != "" {
		if err := os.Setenv("CONFIG_PATH", *configPath); err != nil {
			log.Fatalf("set CONFIG_PATH: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// The shell notices cancellation after the current line; a second
		// interrupt gets the default behavior.
		<-ctx.Done()
		stop()
	}()

	if err := app.Run(ctx, app.IO{In: os.Stdin, Out: os.Stdout}); err != nil {
		stop()
		log.Fatalf("studybuddy: %v", err)
	}
}
