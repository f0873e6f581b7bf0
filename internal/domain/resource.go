package domain

import "time"

// Material is a shared study document owned by the materials ResourceSync.
type Material struct {
	ID         int64
	Title      string
	ModuleName string
	FileName   string
}

func (m Material) ItemID() int64 { return m.ID }

// Note is a user-owned uploaded note.
type Note struct {
	ID       int64
	NoteName string
	UserID   int64
	FileName string
}

func (n Note) ItemID() int64 { return n.ID }

// SuggestedVideo is a video suggestion derived from exactly one Note.
type SuggestedVideo struct {
	Title     string
	URL       string
	Thumbnail string
	Duration  string
}

// TimetableEvent is a calendar entry owned by the logged-in user.
type TimetableEvent struct {
	ID    int64
	Title string
	Start time.Time
	End   time.Time
}

func (e TimetableEvent) ItemID() int64 { return e.ID }

// AdminUser is a user record managed from the admin dashboard.
// The password is write-only and never part of a listed record.
type AdminUser struct {
	ID    int64
	Email string
	Role  Role
}

func (u AdminUser) ItemID() int64 { return u.ID }

// Resource is an entry of the general read-only resource catalog.
type Resource struct {
	ID          int64
	Title       string
	Description string
}

func (r Resource) ItemID() int64 { return r.ID }
