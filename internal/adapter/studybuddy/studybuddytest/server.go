// Package studybuddytest provides an in-memory StudyBuddy service for tests.
package studybuddytest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Token is the access token handed out by /auth/login.
const Token = "test-token"

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Form   map[string]string
	Files  map[string][]byte
	Body   []byte
	Auth   string
}

// Account is a registered user of the fake service.
type Account struct {
	ID       int64
	Email    string
	Password string
	Role     string
	Name     string
}

type failure struct {
	status int
	detail string
}

// Server is a fake StudyBuddy service backed by in-memory tables.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []Request
	failures  map[string]failure
	holds     map[string]chan struct{}
	nextID    int64
	accounts  map[int64]*Account
	materials map[int64]map[string]any
	notes     map[int64]map[string]any
	events    map[int64]map[string]any
	resources []map[string]any
	videos    map[int64][]map[string]any
	answer    func(question string) (string, bool)
	scan      map[string]any
}

// New starts a server and registers its shutdown with t.Cleanup.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		failures:  make(map[string]failure),
		holds:     make(map[string]chan struct{}),
		nextID:    100,
		accounts:  make(map[int64]*Account),
		materials: make(map[int64]map[string]any),
		notes:     make(map[int64]map[string]any),
		events:    make(map[int64]map[string]any),
		videos:    make(map[int64][]map[string]any),
		answer:    func(q string) (string, bool) { return "echo: " + q, true },
		scan: map[string]any{
			"success":        true,
			"extracted_text": "extracted",
			"notes":          "summary",
		},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/auth/login", s.login)
	r.Post("/auth/register", s.register)
	r.Get("/auth/", s.listUsers)
	r.Post("/auth/", s.createUser)
	r.Put("/auth/{id}", s.updateUser)
	r.Delete("/auth/{id}", s.deleteUser)

	r.Get("/resources", s.listResources)

	r.Get("/student-resources/resources", s.listMaterials)
	r.Get("/student-resources/resources/module/{module}", s.listMaterials)
	r.Get("/student-resources/resources/download/{id}", s.download(s.materials))
	r.Post("/student-resources/", s.uploadMaterial)

	r.Get("/notes/{userID}", s.listNotes)
	r.Post("/notes/", s.uploadNote)
	r.Delete("/notes/{id}", s.deleteNote)
	r.Get("/notes/download/{id}", s.download(s.notes))

	r.Get("/suggest/suggested-videos/{noteID}", s.suggestedVideos)

	r.Get("/timetable/", s.listEvents)
	r.Post("/timetable/", s.createEvent)

	r.Post("/studybuddy/", s.chat)
	r.Post("/studybuddy/notes-from-handwritten-image", s.scanImage)
	return r
}

// ---------------------------------------------------------------------------
// Setup
// ---------------------------------------------------------------------------

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// AddAccount registers an account that can log in.
func (s *Server) AddAccount(email, password, role string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.accounts[id] = &Account{ID: id, Email: email, Password: password, Role: role}
	return id
}

// AddMaterial seeds a shared material.
func (s *Server) AddMaterial(title, module string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.materials[id] = map[string]any{"id": id, "title": title, "module_name": module, "file_path": title + ".pdf", "content": "material " + title}
	return id
}

// AddNote seeds a note owned by userID.
func (s *Server) AddNote(userID int64, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.notes[id] = map[string]any{"id": id, "note_name": name, "user_id": userID, "file_path": name + ".txt", "content": "note " + name}
	return id
}

// AddResource seeds the general resource catalog.
func (s *Server) AddResource(title, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append(s.resources, map[string]any{"id": s.id(), "title": title, "description": description})
}

// SetVideos sets the suggestions returned for a note.
func (s *Server) SetVideos(noteID int64, titles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vids := make([]map[string]any, 0, len(titles))
	for i, title := range titles {
		vids = append(vids, map[string]any{
			"title":     title,
			"url":       "https://video.example/" + strconv.Itoa(i),
			"thumbnail": "https://img.example/" + strconv.Itoa(i),
			"duration":  "PT5M",
		})
	}
	s.videos[noteID] = vids
}

// SetAnswer replaces the chat responder. Returning ok=false omits the
// "answer" field from the response.
func (s *Server) SetAnswer(fn func(question string) (answer string, ok bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer = fn
}

// SetScanResult replaces the body returned by the scan endpoint.
func (s *Server) SetScanResult(success bool, text, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scan = map[string]any{"success": success, "extracted_text": text, "notes": notes}
}

// Fail makes every call to "METHOD /path" answer with status and detail.
// The path is the concrete request path, not the route pattern.
func (s *Server) Fail(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, detail: detail}
}

// Heal removes a failure installed by Fail.
func (s *Server) Heal(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// Hold blocks calls to "METHOD /path" until the returned release func is
// called. Release is idempotent.
func (s *Server) Hold(method, path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[method+" "+path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, method+" "+path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns a copy of every recorded call.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many calls were made to "METHOD /path".
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent call to "METHOD /path".
func (s *Server) Last(method, path string) (Request, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Request{}, false
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
		}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(32 << 20); err == nil {
				rec.Form = make(map[string]string)
				rec.Files = make(map[string][]byte)
				for k, v := range r.MultipartForm.Value {
					rec.Form[k] = v[0]
				}
				for k, fhs := range r.MultipartForm.File {
					f, err := fhs[0].Open()
					if err != nil {
						continue
					}
					data, _ := io.ReadAll(f)
					f.Close()
					rec.Files[k] = data
				}
			}
		} else if r.Body != nil {
			rec.Body, _ = io.ReadAll(r.Body)
		}

		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		fail, failing := s.failures[key]
		hold := s.holds[key]
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeJSON(w, fail.status, map[string]any{"detail": fail.detail})
			return
		}

		ctx := withRecord(r.Context(), &rec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(recordOf(r).Body, &body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "invalid body"}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == body.Email && a.Password == body.Password {
			writeJSON(w, http.StatusOK, map[string]any{"access_token": Token, "role": a.Role, "id": a.ID})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid credentials"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.Unmarshal(recordOf(r).Body, &body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == body.Email {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Email already registered"})
			return
		}
	}
	id := s.id()
	s.accounts[id] = &Account{ID: id, Email: body.Email, Password: body.Password, Role: body.Role, Name: body.Name}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.accounts))
	for _, id := range sortedKeys(s.accounts) {
		a := s.accounts[id]
		out = append(out, map[string]any{"id": a.ID, "email": a.Email, "role": a.Role})
	}
	writeJSON(w, http.StatusOK, out)
}

type userBody struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var body userBody
	if err := json.Unmarshal(recordOf(r).Body, &body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.accounts[id] = &Account{ID: id, Email: body.Email, Role: body.Role, Password: body.Password}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body userBody
	if err := json.Unmarshal(recordOf(r).Body, &body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.accounts[id]
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "User not found"})
		return
	}
	a.Email, a.Role = body.Email, body.Role
	if body.Password != "" {
		a.Password = body.Password
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.accounts[id]; !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "User not found"})
		return
	}
	delete(s.accounts, id)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) listResources(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]map[string]any{}, s.resources...))
}

func (s *Server) listMaterials(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.materials))
	for _, id := range sortedKeys(s.materials) {
		m := s.materials[id]
		if module != "" && m["module_name"] != module {
			continue
		}
		out = append(out, public(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) uploadMaterial(w http.ResponseWriter, r *http.Request) {
	rec := recordOf(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.materials[id] = map[string]any{
		"id":          id,
		"title":       rec.Form["title"],
		"module_name": rec.Form["module_name"],
		"file_path":   rec.Form["title"],
		"content":     string(rec.Files["file"]),
	}
	writeJSON(w, http.StatusOK, public(s.materials[id]))
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, id := range sortedKeys(s.notes) {
		n := s.notes[id]
		if n["user_id"] != userID {
			continue
		}
		out = append(out, public(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) uploadNote(w http.ResponseWriter, r *http.Request) {
	rec := recordOf(r)
	userID, err := strconv.ParseInt(rec.Form["user_id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "user_id must be an integer"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.notes[id] = map[string]any{
		"id":        id,
		"note_name": rec.Form["note_name"],
		"user_id":   userID,
		"file_path": rec.Form["note_name"],
		"content":   string(rec.Files["file"]),
	}
	writeJSON(w, http.StatusOK, public(s.notes[id]))
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.notes[id]; !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Note not found"})
		return
	}
	delete(s.notes, id)
	delete(s.videos, id)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) download(table map[int64]map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		s.mu.Lock()
		row, found := table[id]
		s.mu.Unlock()
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "File not found"})
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, row["content"])
	}
}

func (s *Server) suggestedVideos(w http.ResponseWriter, r *http.Request) {
	noteID, ok := pathID(w, r, "noteID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	vids, found := s.videos[noteID]
	if !found {
		writeJSON(w, http.StatusOK, []map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, vids)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "user_id required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, id := range sortedKeys(s.events) {
		e := s.events[id]
		if e["user_id"] != userID {
			continue
		}
		out = append(out, public(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "user_id required"})
		return
	}
	var body struct {
		Title     string `json:"title"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := json.Unmarshal(recordOf(r).Body, &body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.events[id] = map[string]any{"id": id, "title": body.Title, "start_time": body.StartTime, "end_time": body.EndTime, "user_id": userID}
	writeJSON(w, http.StatusOK, public(s.events[id]))
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Question string `json:"question"`
	}
	if err := json.Unmarshal(recordOf(r).Body, &body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid body"})
		return
	}
	s.mu.Lock()
	answer := s.answer
	s.mu.Unlock()

	text, ok := answer(body.Question)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answer": text})
}

func (s *Server) scanImage(w http.ResponseWriter, r *http.Request) {
	if len(recordOf(r).Files["image"]) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "image required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.scan)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": param + " must be an integer"})
		return 0, false
	}
	return id, true
}

func public(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if k == "content" {
			continue
		}
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
