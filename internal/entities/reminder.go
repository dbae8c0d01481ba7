package entities

import "time"

// Reminder is a "time to rebook" note scheduled N days after a visit.
type Reminder struct {
	ID       int
	OwnerID  int
	ChatID   int64
	Barber   string
	RemindAt time.Time
	IsSent   bool
}

// TurnNotice is a due "your turn" notification, joined to the owner's
// bot token so the dispatcher can open a transient gateway.
type TurnNotice struct {
	BookingID int
	ChatID    int64
	Num       int
	Barber    string
	BotToken  string
	ShopName  string
}

// ReminderNotice is a due rebook reminder ready for delivery.
type ReminderNotice struct {
	ReminderID int
	ChatID     int64
	Barber     string
	BotToken   string
}
