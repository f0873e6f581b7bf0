package dashboard

import "github.com/heartmarshall/studybuddy/internal/domain"

// Variant configures the dashboard for one role.
type Variant struct {
	Role        domain.Role
	Route       domain.Route
	Panels      []domain.PanelKey
	Default     domain.PanelKey
	LogoutRoute domain.Route
}

var (
	studentVariant = Variant{
		Role:  domain.RoleStudent,
		Route: domain.RouteStudent,
		Panels: []domain.PanelKey{
			domain.PanelShare,
			domain.PanelMyNotes,
			domain.PanelWatch,
			domain.PanelScanNotes,
			domain.PanelChat,
			domain.PanelTimetable,
			domain.PanelResources,
		},
		Default:     domain.PanelShare,
		LogoutRoute: domain.RouteLogin,
	}

	adminVariant = Variant{
		Role:        domain.RoleAdmin,
		Route:       domain.RouteAdmin,
		Panels:      []domain.PanelKey{domain.PanelDashboard, domain.PanelUsers},
		Default:     domain.PanelDashboard,
		LogoutRoute: domain.RouteHome,
	}
)

// VariantFor returns the dashboard variant of role.
func VariantFor(role domain.Role) Variant {
	if role == domain.RoleAdmin {
		return adminVariant
	}
	return studentVariant
}

var panelTitles = map[domain.PanelKey]string{
	domain.PanelShare:     "Share Materials",
	domain.PanelMyNotes:   "My Notes",
	domain.PanelWatch:     "Watch Videos",
	domain.PanelScanNotes: "Scan Notes",
	domain.PanelChat:      "Tutor Chatbot",
	domain.PanelTimetable: "Timetable",
	domain.PanelResources: "Resources",
	domain.PanelDashboard: "Dashboard",
	domain.PanelUsers:     "Manage Users",
}
