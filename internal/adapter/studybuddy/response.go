package studybuddy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// flexInt accepts both JSON numbers and numeric strings; the service is not
// consistent about id types (form fields come back as strings).
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", b)
	}
	*f = flexInt(n)
	return nil
}

// flexString accepts strings and numbers (video durations come as either).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

// parseDetail extracts the "detail" field of an error body. FastAPI returns a
// string for handled errors and a list of objects for request validation.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

type apiLoginResponse struct {
	AccessToken string  `json:"access_token"`
	Role        string  `json:"role"`
	ID          flexInt `json:"id"`
}

type apiUser struct {
	ID    flexInt `json:"id"`
	Email string  `json:"email"`
	Role  string  `json:"role"`
}

func (u apiUser) toDomain() domain.AdminUser {
	return domain.AdminUser{ID: int64(u.ID), Email: u.Email, Role: domain.Role(u.Role)}
}

type apiUserRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

type apiResource struct {
	ID          flexInt `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

func (r apiResource) toDomain() domain.Resource {
	return domain.Resource{ID: int64(r.ID), Title: r.Title, Description: r.Description}
}

type apiMaterial struct {
	ID         flexInt `json:"id"`
	Title      string  `json:"title"`
	ModuleName string  `json:"module_name"`
	FilePath   string  `json:"file_path"`
}

func (m apiMaterial) toDomain() domain.Material {
	return domain.Material{ID: int64(m.ID), Title: m.Title, ModuleName: m.ModuleName, FileName: m.FilePath}
}

type apiNote struct {
	ID       flexInt `json:"id"`
	NoteName string  `json:"note_name"`
	UserID   flexInt `json:"user_id"`
	FilePath string  `json:"file_path"`
}

func (n apiNote) toDomain() domain.Note {
	return domain.Note{ID: int64(n.ID), NoteName: n.NoteName, UserID: int64(n.UserID), FileName: n.FilePath}
}

type apiVideo struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Thumbnail string     `json:"thumbnail"`
	Duration  flexString `json:"duration"`
}

func (v apiVideo) toDomain() domain.SuggestedVideo {
	return domain.SuggestedVideo{Title: v.Title, URL: v.URL, Thumbnail: v.Thumbnail, Duration: string(v.Duration)}
}

type apiEvent struct {
	ID        flexInt `json:"id"`
	Title     string  `json:"title"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
}

func (e apiEvent) toDomain() (domain.TimetableEvent, error) {
	start, err := parseEventTime(e.StartTime)
	if err != nil {
		return domain.TimetableEvent{}, fmt.Errorf("event %d start_time: %w", e.ID, err)
	}
	end, err := parseEventTime(e.EndTime)
	if err != nil {
		return domain.TimetableEvent{}, fmt.Errorf("event %d end_time: %w", e.ID, err)
	}
	return domain.TimetableEvent{ID: int64(e.ID), Title: e.Title, Start: start, End: end}, nil
}

type apiEventRequest struct {
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// eventLayouts are tried in order; the client itself submits the minute
// precision form without a zone.
var eventLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

func parseEventTime(s string) (time.Time, error) {
	for _, layout := range eventLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date-time %q", s)
}

type apiScanResponse struct {
	Success       bool   `json:"success"`
	ExtractedText string `json:"extracted_text"`
	Notes         string `json:"notes"`
}

type apiChatRequest struct {
	Email    string `json:"email"`
	Question string `json:"question"`
}

type apiChatResponse struct {
	Answer *string `json:"answer"`
}
