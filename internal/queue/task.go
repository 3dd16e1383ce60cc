package queue

// ResourceState values sent in X-Goog-Resource-State.
const (
	ResourceStateSync   = "sync"
	ResourceStateExists = "exists"
)

// CalendarNotification is one push notification from the calendar provider.
// The provider sends no body; everything arrives in headers.
type CalendarNotification struct {
	ChannelID     string
	ResourceState string
	ResourceID    string
	ResourceURI   string
	MessageNumber string
	TraceID       string
}
