package domain

// ScanResult is the structured output of the handwritten-notes scanner.
type ScanResult struct {
	Success       bool
	ExtractedText string
	Notes         string
}
