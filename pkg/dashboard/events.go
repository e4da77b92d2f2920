package dashboard

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventViewUpdated   EventType = "view_updated"
	EventActiveChanged EventType = "active_changed"
)

// Event is published on every state change. Data is a ViewState for
// EventViewUpdated and a ViewID for EventActiveChanged.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
