package interfaces

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"project_navbat/internal/entities"
)

// CredentialSource exposes the current set of tenant bot credentials.
// The fleet manager polls it and diffs against its live sessions.
type CredentialSource interface {
	ListActiveCredentials(ctx context.Context) ([]entities.Credential, error)
}

// Sender is the outbound half of a messaging session. *tgbotapi.BotAPI
// satisfies it; tests substitute fakes.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// FlowStore is everything the booking conversation reads and writes.
type FlowStore interface {
	ListServices(ctx context.Context, ownerID int) ([]entities.Service, error)
	ListActiveBarbers(ctx context.Context, ownerID int) ([]entities.Barber, error)
	GetSettings(ctx context.Context, ownerID int) (map[string]string, error)
	BusyTimes(ctx context.Context, ownerID int, barber string) ([]string, error)
	PhoneForChat(ctx context.Context, chatID int64) (string, error)
	ActiveForChat(ctx context.Context, chatID int64) ([]entities.Booking, error)
	CreateBooking(ctx context.Context, b entities.Booking) (entities.Booking, error)
	CancelByCustomer(ctx context.Context, bookingID int, chatID int64) (ownerID int, err error)
	ShopName(ctx context.Context, ownerID int) (string, error)
}

// DispatchStore feeds the notification loops. Both calls flip the
// sent/notified flag as part of the fetch, so a row is returned at most once.
type DispatchStore interface {
	PendingTurns(ctx context.Context) ([]entities.TurnNotice, error)
	DueReminders(ctx context.Context) ([]entities.ReminderNotice, error)
}

// Publisher fans a tenant-scoped event out to dashboard connections.
type Publisher interface {
	Publish(ev entities.QueueEvent)
}
