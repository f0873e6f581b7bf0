package domain

import (
	"fmt"
	"strings"
)

// MaterialDraft is the upload form of the materials panel.
type MaterialDraft struct {
	Title      string  `json:"title"       validate:"required"`
	ModuleName string  `json:"module_name" validate:"required"`
	File       *Upload `json:"file"        validate:"required"`
}

// Set assigns a text field by its form name.
func (d *MaterialDraft) Set(field, value string) error {
	switch field {
	case "title":
		d.Title = value
	case "module_name", "module":
		d.ModuleName = value
	default:
		return unknownField(field)
	}
	return nil
}

// SetFile attaches the file to upload.
func (d *MaterialDraft) SetFile(u *Upload) { d.File = u }

// NoteDraft is the upload form of the notes panel. The owner id is taken from
// the session at submit time.
type NoteDraft struct {
	NoteName string  `json:"note_name" validate:"required"`
	File     *Upload `json:"file"      validate:"required"`
}

func (d *NoteDraft) Set(field, value string) error {
	switch field {
	case "note_name", "name":
		d.NoteName = value
	default:
		return unknownField(field)
	}
	return nil
}

func (d *NoteDraft) SetFile(u *Upload) { d.File = u }

// EventDraft is the timetable form: one day plus a start and end time of day.
type EventDraft struct {
	Title string `json:"title" validate:"required"`
	Date  string `json:"date"  validate:"required,datetime=2006-01-02"`
	Start string `json:"start" validate:"required,datetime=15:04"`
	End   string `json:"end"   validate:"required,datetime=15:04"`
}

func (d *EventDraft) Set(field, value string) error {
	switch field {
	case "title":
		d.Title = value
	case "date":
		d.Date = value
	case "start":
		d.Start = value
	case "end":
		d.End = value
	default:
		return unknownField(field)
	}
	return nil
}

// StartTime returns the wire form "<date>T<start>".
func (d EventDraft) StartTime() string { return d.Date + "T" + d.Start }

// EndTime returns the wire form "<date>T<end>".
func (d EventDraft) EndTime() string { return d.Date + "T" + d.End }

// UserDraft is the admin user form. Password is required on create only.
type UserDraft struct {
	Email    string `json:"email"    validate:"required,email"`
	Role     Role   `json:"role"     validate:"required,oneof=student admin"`
	Password string `json:"password"`
}

func (d *UserDraft) Set(field, value string) error {
	switch field {
	case "email":
		d.Email = value
	case "role":
		d.Role = Role(strings.ToLower(value))
	case "password":
		d.Password = value
	default:
		return unknownField(field)
	}
	return nil
}

// ValidateCreate enforces the create-only password requirement.
func (d UserDraft) ValidateCreate() error {
	if d.Password == "" {
		return NewValidationError("password", "required")
	}
	return nil
}

// UserDraftFrom seeds an edit form from a listed user. The password stays empty.
func UserDraftFrom(u AdminUser) UserDraft {
	return UserDraft{Email: u.Email, Role: u.Role}
}

func unknownField(field string) error {
	return NewValidationError(field, fmt.Sprintf("unknown field %q", field))
}
