package models

import "time"

// TransportEventID uniquely identifies a bus event log entry.
type TransportEventID int64

// TransportEventKind enumerates the bus events the tracking module records.
type TransportEventKind string

const (
	TransportEventBoarded  TransportEventKind = "bus_boarded"
	TransportEventDeparted TransportEventKind = "bus_departed"
	TransportEventDelayed  TransportEventKind = "bus_delayed"
)

// ValidTransportEventKind reports whether the kind is known.
func ValidTransportEventKind(k TransportEventKind) bool {
	switch k {
	case TransportEventBoarded, TransportEventDeparted, TransportEventDelayed:
		return true
	default:
		return false
	}
}

// TransportEvent is one entry in the bus event log. Recording an event also
// fans out a transport_safety alert to the student's parent.
type TransportEvent struct {
	ID         TransportEventID   `json:"id"`
	StudentID  StudentID          `json:"student_id"`
	Kind       TransportEventKind `json:"kind"`
	Route      string             `json:"route,omitempty"`
	Stop       string             `json:"stop,omitempty"`
	Note       string             `json:"note,omitempty"`
	RecordedBy UserID             `json:"recorded_by"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// RecordTransportEventRequest defines the payload for logging a bus event.
type RecordTransportEventRequest struct {
	StudentID StudentID          `json:"student_id"`
	Kind      TransportEventKind `json:"kind"`
	Route     string             `json:"route,omitempty"`
	Stop      string             `json:"stop,omitempty"`
	Note      string             `json:"note,omitempty"`
}
