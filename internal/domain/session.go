package domain

// Role is the account role returned by the remote service on login.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// Session is the authenticated identity held for the lifetime of the process.
// Email is optional; older persisted blobs only carry token, role and id.
type Session struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
}

// IsValid reports whether the session carries enough data to be used.
func (s Session) IsValid() bool {
	return s.Token != "" && s.Role.IsValid()
}

// Route is the top-level screen the shell should display.
type Route string

const (
	RouteHome     Route = "home"
	RouteLogin    Route = "login"
	RouteRegister Route = "register"
	RouteStudent  Route = "student"
	RouteAdmin    Route = "admin"
)

func (r Route) String() string { return string(r) }

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the account creation form.
type Registration struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role"     validate:"required,oneof=student admin"`
}
