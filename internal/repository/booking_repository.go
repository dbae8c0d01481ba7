package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"project_navbat/internal/entities"
)

// ticketLockClass namespaces the per-owner advisory lock that serializes
// ticket number allocation.
const ticketLockClass = 4217

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create allocates the next ticket number for the owner and inserts the
// booking. The advisory lock makes concurrent creations for one tenant
// queue up, so numbers are unique and strictly increasing from 101.
func (r *BookingRepository) Create(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return b, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", ticketLockClass, b.OwnerID); err != nil {
		return b, fmt.Errorf("ticket lock: %w", err)
	}

	if err := tx.QueryRow(ctx,
		"SELECT COALESCE(MAX(num), 100) + 1 FROM bookings WHERE owner_id = $1",
		b.OwnerID).Scan(&b.Num); err != nil {
		return b, err
	}

	if b.Status == "" {
		b.Status = entities.StatusWaiting
	}
	if b.Time == "" {
		b.Time = "Hozir"
	}
	var chatID any
	if b.ChatID != 0 {
		chatID = b.ChatID
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (owner_id, num, name, tel, service, barber, time, status, chat_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		b.OwnerID, b.Num, b.Name, b.Tel, b.Service, b.Barber, b.Time, b.Status, chatID).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return b, err
	}

	return b, tx.Commit(ctx)
}

// Get returns one booking scoped to its owner.
func (r *BookingRepository) Get(ctx context.Context, bookingID, ownerID int) (*entities.Booking, error) {
	var b entities.Booking
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, num, name, tel, service, barber, time, status, COALESCE(chat_id, 0), created_at
		FROM bookings WHERE id = $1 AND owner_id = $2`, bookingID, ownerID).
		Scan(&b.ID, &b.OwnerID, &b.Num, &b.Name, &b.Tel, &b.Service,
			&b.Barber, &b.Time, &b.Status, &b.ChatID, &b.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListForOwner returns the owner's most recent bookings, newest first.
func (r *BookingRepository) ListForOwner(ctx context.Context, ownerID, limit int) ([]entities.Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, num, name, tel, service, barber, time, status, COALESCE(chat_id, 0), created_at
		FROM bookings WHERE owner_id = $1 ORDER BY id DESC LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

// ActiveQueue returns the owner's live queue in ticket order.
func (r *BookingRepository) ActiveQueue(ctx context.Context, ownerID int) ([]entities.Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, num, name, tel, service, barber, time, status, COALESCE(chat_id, 0), created_at
		FROM bookings
		WHERE owner_id = $1 AND status IN ($2, $3, $4)
		ORDER BY num`, ownerID, entities.StatusWaiting, entities.StatusCalled, entities.StatusInProgress)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

// SetStatus moves an owner's booking to the given status.
func (r *BookingRepository) SetStatus(ctx context.Context, bookingID, ownerID int, status string) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE bookings SET status = $1 WHERE id = $2 AND owner_id = $3",
		status, bookingID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CancelByCustomer cancels the chat user's own booking and reports the
// owning tenant for the broadcast event.
func (r *BookingRepository) CancelByCustomer(ctx context.Context, bookingID int, chatID int64) (int, error) {
	var ownerID int
	err := r.db.QueryRow(ctx,
		"UPDATE bookings SET status = $1 WHERE id = $2 AND chat_id = $3 RETURNING owner_id",
		entities.StatusCancelled, bookingID, chatID).Scan(&ownerID)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("booking %d not found for this customer", bookingID)
	}
	return ownerID, err
}

// BusyTimes lists time slots held by non-terminal bookings for one barber.
func (r *BookingRepository) BusyTimes(ctx context.Context, ownerID int, barber string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT time FROM bookings
		WHERE owner_id = $1 AND barber = $2 AND status IN ($3, $4, $5) AND time LIKE '%:%'`,
		ownerID, barber, entities.StatusWaiting, entities.StatusCalled, entities.StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// PhoneForChat returns the phone from the user's most recent booking, from
// any shop. Empty string when the user has never booked.
func (r *BookingRepository) PhoneForChat(ctx context.Context, chatID int64) (string, error) {
	var tel string
	err := r.db.QueryRow(ctx,
		"SELECT tel FROM bookings WHERE chat_id = $1 ORDER BY created_at DESC LIMIT 1",
		chatID).Scan(&tel)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return tel, err
}

// ActiveForChat lists the user's own WAITING/CALLED bookings.
func (r *BookingRepository) ActiveForChat(ctx context.Context, chatID int64) ([]entities.Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, num, name, tel, service, barber, time, status, COALESCE(chat_id, 0), created_at
		FROM bookings
		WHERE chat_id = $1 AND status IN ($2, $3)
		ORDER BY id`, chatID, entities.StatusWaiting, entities.StatusCalled)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

// PendingTurns selects CALLED, chat-addressable bookings that have not been
// notified yet, flipping the flag in the same statement. A booking is
// handed out at most once; a failed send downstream is not retried.
func (r *BookingRepository) PendingTurns(ctx context.Context) ([]entities.TurnNotice, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE bookings b SET notified = 1
		FROM owners o
		WHERE b.owner_id = o.id
		  AND b.status = $1 AND b.notified = 0 AND b.chat_id IS NOT NULL
		  AND o.bot_token IS NOT NULL AND o.bot_token <> ''
		RETURNING b.id, b.chat_id, b.num, b.barber, o.bot_token, o.shop_name`,
		entities.StatusCalled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []entities.TurnNotice
	for rows.Next() {
		var n entities.TurnNotice
		if err := rows.Scan(&n.BookingID, &n.ChatID, &n.Num, &n.Barber, &n.BotToken, &n.ShopName); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

// OwnerStats aggregates booking counts and income for the dashboard.
type OwnerStats struct {
	TotalBookings   int            `json:"total_bookings"`
	WaitingBookings int            `json:"waiting_bookings"`
	DoneBookings    int            `json:"done_bookings"`
	TotalIncome     int            `json:"total_income"`
	BarberStats     map[string]int `json:"barber_stats"`
}

func (r *BookingRepository) Stats(ctx context.Context, ownerID int) (*OwnerStats, error) {
	stats := &OwnerStats{BarberStats: make(map[string]int)}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3)
		FROM bookings WHERE owner_id = $1`,
		ownerID, entities.StatusWaiting, entities.StatusDone).
		Scan(&stats.TotalBookings, &stats.WaitingBookings, &stats.DoneBookings)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(s.price), 0)
		FROM bookings b JOIN services s ON s.owner_id = b.owner_id AND s.name = b.service
		WHERE b.owner_id = $1 AND b.status = $2`,
		ownerID, entities.StatusDone).Scan(&stats.TotalIncome)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT barber, COUNT(*) FROM bookings
		WHERE owner_id = $1 AND status = $2 GROUP BY barber`,
		ownerID, entities.StatusDone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var barber string
		var count int
		if err := rows.Scan(&barber, &count); err != nil {
			return nil, err
		}
		stats.BarberStats[barber] = count
	}
	return stats, rows.Err()
}

func scanBookings(rows pgx.Rows) ([]entities.Booking, error) {
	defer rows.Close()
	var bookings []entities.Booking
	for rows.Next() {
		var b entities.Booking
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Num, &b.Name, &b.Tel, &b.Service,
			&b.Barber, &b.Time, &b.Status, &b.ChatID, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
