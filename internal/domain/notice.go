package domain

// NoticeLevel classifies user-visible notices.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a blocking user-facing message, the equivalent of an alert box.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}
