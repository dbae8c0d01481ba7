package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"project_navbat/internal/entities"
)

type ReminderRepository struct {
	db *pgxpool.Pool
}

func NewReminderRepository(db *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create schedules a rebook reminder days from now.
func (r *ReminderRepository) Create(ctx context.Context, ownerID int, chatID int64, barber string, days int) error {
	rem := entities.Reminder{
		OwnerID:  ownerID,
		ChatID:   chatID,
		Barber:   barber,
		RemindAt: time.Now().AddDate(0, 0, days),
	}
	_, err := r.db.Exec(ctx,
		"INSERT INTO reminders (owner_id, chat_id, barber, remind_at) VALUES ($1, $2, $3, $4)",
		rem.OwnerID, rem.ChatID, rem.Barber, rem.RemindAt)
	return err
}

// Due selects reminders whose time has come and marks them sent in the same
// statement, so a reminder is handed to the dispatcher at most once. Rows
// for owners without a bot token stay pending: there is no way to deliver
// them until the shop registers a token.
func (r *ReminderRepository) Due(ctx context.Context) ([]entities.ReminderNotice, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE reminders rem SET is_sent = 1
		FROM owners o
		WHERE rem.owner_id = o.id AND rem.remind_at <= NOW() AND rem.is_sent = 0
		  AND o.bot_token IS NOT NULL AND o.bot_token <> ''
		RETURNING rem.id, rem.chat_id, rem.barber, o.bot_token`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []entities.ReminderNotice
	for rows.Next() {
		var n entities.ReminderNotice
		if err := rows.Scan(&n.ReminderID, &n.ChatID, &n.Barber, &n.BotToken); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}
