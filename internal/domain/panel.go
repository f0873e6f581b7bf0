package domain

// PanelKey identifies one selectable section of a dashboard.
type PanelKey string

const (
	PanelShare     PanelKey = "share"
	PanelMyNotes   PanelKey = "myNotes"
	PanelWatch     PanelKey = "watch"
	PanelScanNotes PanelKey = "scanNotes"
	PanelChat      PanelKey = "chat"
	PanelTimetable PanelKey = "timetable"
	PanelResources PanelKey = "resources"
	PanelDashboard PanelKey = "dashboard"
	PanelUsers     PanelKey = "users"
)

func (k PanelKey) String() string { return string(k) }
