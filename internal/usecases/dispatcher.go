package usecases

import (
	"context"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"project_navbat/internal/interfaces"
)

// NotifyFunc delivers one text message to a chat through the bot
// identified by token. Injected so tests run without Telegram.
type NotifyFunc func(token string, chatID int64, text string) error

// TelegramNotify opens a transient gateway per call. The dispatcher
// cannot borrow fleet sessions: a notice can come due while its
// tenant's session is mid-reconcile.
func TelegramNotify(token string, chatID int64, text string) error {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err = bot.Send(msg)
	return err
}

// Dispatcher periodically drains due "your turn" notices and rebook
// reminders. Each notice is flagged sent before delivery is attempted,
// so a failed send is dropped rather than retried.
type Dispatcher struct {
	store  interfaces.DispatchStore
	notify NotifyFunc
	cron   *cron.Cron
}

func NewDispatcher(store interfaces.DispatchStore, notify NotifyFunc) *Dispatcher {
	return &Dispatcher{
		store:  store,
		notify: notify,
		cron:   cron.New(),
	}
}

// Start schedules both dispatch jobs and runs them in the background.
func (d *Dispatcher) Start() error {
	if _, err := d.cron.AddFunc("@every 20s", d.DispatchTurns); err != nil {
		return err
	}
	if _, err := d.cron.AddFunc("@every 20s", d.DispatchReminders); err != nil {
		return err
	}
	d.cron.Start()
	log.Println("[dispatcher] started, checking every 20s")
	return nil
}

func (d *Dispatcher) Stop() {
	<-d.cron.Stop().Done()
}

// DispatchTurns delivers every pending "your turn" notice. A failure on
// one notice never blocks the rest of the batch.
func (d *Dispatcher) DispatchTurns() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	notices, err := d.store.PendingTurns(ctx)
	if err != nil {
		log.Printf("[dispatcher] pending turns fetch failed: %v", err)
		return
	}
	for _, n := range notices {
		text := T(LangUz, "notification_turn", n.Num, n.Barber) +
			"\n\n" + T(LangRu, "notification_turn", n.Num, n.Barber)
		if err := d.notify(n.BotToken, n.ChatID, text); err != nil {
			log.Printf("[dispatcher] turn notice for booking %d undeliverable: %v", n.BookingID, err)
			continue
		}
		log.Printf("[dispatcher] turn notice sent for booking %d (num #%d)", n.BookingID, n.Num)
	}
}

// DispatchReminders delivers every due rebook reminder.
func (d *Dispatcher) DispatchReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	reminders, err := d.store.DueReminders(ctx)
	if err != nil {
		log.Printf("[dispatcher] due reminders fetch failed: %v", err)
		return
	}
	for _, r := range reminders {
		if r.BotToken == "" {
			log.Printf("[dispatcher] reminder %d has no bot token, skipping", r.ReminderID)
			continue
		}
		text := T(LangUz, "reminder", r.Barber) +
			"\n\n" + T(LangRu, "reminder", r.Barber)
		if err := d.notify(r.BotToken, r.ChatID, text); err != nil {
			log.Printf("[dispatcher] reminder %d undeliverable: %v", r.ReminderID, err)
			continue
		}
	}
}
