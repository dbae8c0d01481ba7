package repository

import (
	"context"

	"project_navbat/internal/entities"
)

// Store aggregates the repositories behind the ports the booking flow and
// the dispatcher consume (interfaces.FlowStore, interfaces.DispatchStore).
type Store struct {
	Owners    *OwnerRepository
	Bookings  *BookingRepository
	Catalog   *CatalogRepository
	Settings  *SettingsRepository
	Reminders *ReminderRepository
}

func NewStore(owners *OwnerRepository, bookings *BookingRepository, catalog *CatalogRepository, settings *SettingsRepository, reminders *ReminderRepository) *Store {
	return &Store{
		Owners:    owners,
		Bookings:  bookings,
		Catalog:   catalog,
		Settings:  settings,
		Reminders: reminders,
	}
}

func (s *Store) ListServices(ctx context.Context, ownerID int) ([]entities.Service, error) {
	return s.Catalog.ListServices(ctx, ownerID)
}

func (s *Store) ListActiveBarbers(ctx context.Context, ownerID int) ([]entities.Barber, error) {
	return s.Catalog.ListActiveBarbers(ctx, ownerID)
}

func (s *Store) GetSettings(ctx context.Context, ownerID int) (map[string]string, error) {
	return s.Settings.GetAll(ctx, ownerID)
}

func (s *Store) BusyTimes(ctx context.Context, ownerID int, barber string) ([]string, error) {
	return s.Bookings.BusyTimes(ctx, ownerID, barber)
}

func (s *Store) PhoneForChat(ctx context.Context, chatID int64) (string, error) {
	return s.Bookings.PhoneForChat(ctx, chatID)
}

func (s *Store) ActiveForChat(ctx context.Context, chatID int64) ([]entities.Booking, error) {
	return s.Bookings.ActiveForChat(ctx, chatID)
}

func (s *Store) CreateBooking(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	return s.Bookings.Create(ctx, b)
}

func (s *Store) CancelByCustomer(ctx context.Context, bookingID int, chatID int64) (int, error) {
	return s.Bookings.CancelByCustomer(ctx, bookingID, chatID)
}

func (s *Store) ShopName(ctx context.Context, ownerID int) (string, error) {
	return s.Owners.ShopName(ctx, ownerID)
}

func (s *Store) PendingTurns(ctx context.Context) ([]entities.TurnNotice, error) {
	return s.Bookings.PendingTurns(ctx)
}

func (s *Store) DueReminders(ctx context.Context) ([]entities.ReminderNotice, error) {
	return s.Reminders.Due(ctx)
}
