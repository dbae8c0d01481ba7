package entities

import "time"

// Booking statuses. WAITING, CALLED and IN_PROGRESS hold a queue slot;
// DONE and CANCELLED are terminal.
const (
	StatusWaiting    = "WAITING"
	StatusCalled     = "CALLED"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusCancelled  = "CANCELLED"
)

// Booking is one queue ticket. Num is the tenant-scoped ticket number,
// allocated as last+1 per owner (101 for the first booking).
type Booking struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"owner_id"`
	Num       int       `json:"num"`
	Name      string    `json:"name"`
	Tel       string    `json:"tel"`
	Service   string    `json:"service"`
	Barber    string    `json:"barber"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	ChatID    int64     `json:"chat_id,omitempty"`
	Notified  bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	ID       int    `json:"id"`
	OwnerID  int    `json:"-"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Duration string `json:"duration"`
}

type Barber struct {
	ID       int    `json:"id"`
	OwnerID  int    `json:"-"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}
