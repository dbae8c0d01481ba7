package infrastructure

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"project_navbat/internal/entities"
	"project_navbat/internal/interfaces"
)

// UpdateHandler receives every inbound update of a live session together
// with the owning tenant. It must not block: the booking flow enqueues the
// update per conversation and returns.
type UpdateHandler func(sender interfaces.Sender, ownerID int, update tgbotapi.Update)

// TelegramSession is one credential-bound bot connection. It owns the
// long-poll loop until Stop is called.
type TelegramSession struct {
	bot     *tgbotapi.BotAPI
	ownerID int
	stop    chan struct{}
	done    chan struct{}
}

// DialTelegram returns the production DialFunc for the fleet manager.
func DialTelegram(handler UpdateHandler) DialFunc {
	return func(cred entities.Credential) (Session, error) {
		bot, err := tgbotapi.NewBotAPI(cred.Token)
		if err != nil {
			return nil, fmt.Errorf("owner %d: invalid bot token: %w", cred.OwnerID, err)
		}
		s := &TelegramSession{
			bot:     bot,
			ownerID: cred.OwnerID,
			stop:    make(chan struct{}),
			done:    make(chan struct{}),
		}
		go s.poll(handler)
		return s, nil
	}
}

func (s *TelegramSession) poll(handler UpdateHandler) {
	defer close(s.done)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.bot.GetUpdatesChan(u)

	log.Printf("[fleet] started polling for owner %d (@%s)", s.ownerID, s.bot.Self.UserName)

	for {
		select {
		case <-s.stop:
			s.bot.StopReceivingUpdates()
			log.Printf("[fleet] stopped polling for owner %d", s.ownerID)
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			handler(s.bot, s.ownerID, update)
		}
	}
}

// Identity returns the gateway-assigned bot id, used by the fleet's
// tenant lookup.
func (s *TelegramSession) Identity() int64 {
	return s.bot.Self.ID
}

// Stop cancels the poll loop and waits until it has exited, so a reused
// credential never has two listeners.
func (s *TelegramSession) Stop() {
	close(s.stop)
	<-s.done
}
