package entities

// QueueEvent is fanned out to dashboard websocket connections whenever
// booking state changes. OwnerID scopes the event; the hub attaches it to
// every delivery and leaves filtering to the client.
type QueueEvent struct {
	Event     string `json:"event"`
	OwnerID   int    `json:"owner_id"`
	Action    string `json:"action,omitempty"`
	BookingID int    `json:"booking_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Data      any    `json:"data,omitempty"`
}

const EventUpdateQueue = "UPDATE_QUEUE"

// NewBookingEvent announces a freshly created ticket.
func NewBookingEvent(b Booking) QueueEvent {
	return QueueEvent{
		Event:   EventUpdateQueue,
		OwnerID: b.OwnerID,
		Action:  "NEW_BOOKING",
		Data:    b,
	}
}

// StatusEvent announces a booking status transition.
func StatusEvent(ownerID, bookingID int, status string) QueueEvent {
	return QueueEvent{
		Event:     EventUpdateQueue,
		OwnerID:   ownerID,
		BookingID: bookingID,
		Status:    status,
	}
}
