package usecases

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	qrcode "github.com/skip2/go-qrcode"

	"project_navbat/internal/entities"
	"project_navbat/internal/interfaces"
)

// Stage is the position of a conversation in the booking dialogue.
type Stage int

const (
	StageLanguage Stage = iota
	StageMenu
	StageService
	StageBarber
	StageTime
	StagePhone
	StageConfirm
)

type convKey struct {
	ownerID int
	chatID  int64
}

// Conversation is the in-progress booking dialogue of one end user at one
// shop. It is keyed by (tenant, chat), not by bot session, so it survives
// fleet reconciles triggered by credential rotation.
type Conversation struct {
	OwnerID int
	ChatID  int64

	Lang    string
	Stage   Stage
	Service string
	Barber  string
	Time    string
	Phone   string

	mu       sync.Mutex
	pending  []queuedUpdate
	draining bool
}

type queuedUpdate struct {
	sender interfaces.Sender
	update tgbotapi.Update
}

// BookingFlow drives every conversation through the booking state machine:
// language → service → barber → time → phone (skipped for returning
// customers) → confirmation.
type BookingFlow struct {
	store interfaces.FlowStore
	hub   interfaces.Publisher

	mu    sync.RWMutex
	convs map[convKey]*Conversation
}

func NewBookingFlow(store interfaces.FlowStore, hub interfaces.Publisher) *BookingFlow {
	return &BookingFlow{
		store: store,
		hub:   hub,
		convs: make(map[convKey]*Conversation),
	}
}

// Dispatch enqueues an inbound update for its conversation and returns.
// Updates of one conversation are processed strictly in arrival order;
// distinct conversations drain concurrently.
func (f *BookingFlow) Dispatch(sender interfaces.Sender, ownerID int, update tgbotapi.Update) {
	chatID := chatIDOf(update)
	if chatID == 0 {
		// Callbacks on messages the gateway no longer attaches (older than
		// 48 hours) carry no chat. Still answer the callback id so the
		// client's loading spinner clears.
		if update.CallbackQuery != nil {
			if _, err := sender.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
				log.Printf("[flow] callback ack failed: %v", err)
			}
		}
		return
	}
	c := f.conversation(ownerID, chatID)

	c.mu.Lock()
	c.pending = append(c.pending, queuedUpdate{sender: sender, update: update})
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	c.mu.Unlock()

	go f.drain(c)
}

func (f *BookingFlow) drain(c *Conversation) {
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.draining = false
			c.mu.Unlock()
			return
		}
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		f.handle(next.sender, c, next.update)
	}
}

// Conversations reports the number of tracked conversations.
func (f *BookingFlow) Conversations() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.convs)
}

func (f *BookingFlow) conversation(ownerID int, chatID int64) *Conversation {
	key := convKey{ownerID: ownerID, chatID: chatID}

	f.mu.RLock()
	c, ok := f.convs[key]
	f.mu.RUnlock()
	if ok {
		return c
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.convs[key]; ok {
		return c
	}
	c = &Conversation{OwnerID: ownerID, ChatID: chatID, Lang: LangUz, Stage: StageLanguage}
	f.convs[key] = c
	return c
}

func (f *BookingFlow) handle(sender interfaces.Sender, c *Conversation, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		f.handleMessage(sender, c, update.Message)
	case update.CallbackQuery != nil:
		f.handleCallback(sender, c, update.CallbackQuery)
	}
}

func (f *BookingFlow) handleMessage(sender interfaces.Sender, c *Conversation, msg *tgbotapi.Message) {
	if msg.IsCommand() && msg.Command() == "start" {
		// Entry discards any in-flight dialogue, language included.
		c.Stage = StageLanguage
		c.resetDraft()
		f.send(sender, c, T(c.Lang, "choose_lang"), LanguageKeyboard())
		return
	}

	if c.Stage == StagePhone {
		f.handlePhoneInput(sender, c, msg)
		return
	}
	// Free text outside the phone stage is not part of the dialogue.
}

func (f *BookingFlow) handlePhoneInput(sender interfaces.Sender, c *Conversation, msg *tgbotapi.Message) {
	var phone string
	if msg.Contact != nil {
		phone = msg.Contact.PhoneNumber
	} else {
		digits := stripNonDigits(msg.Text)
		if len(digits) < 7 {
			f.send(sender, c, T(c.Lang, "phone_error"), nil)
			return
		}
		phone = "+" + digits
	}
	c.Phone = phone
	c.Stage = StageConfirm

	thanks := tgbotapi.NewMessage(c.ChatID, T(c.Lang, "thanks_phone"))
	thanks.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := sender.Send(thanks); err != nil {
		log.Printf("[flow] send failed for chat %d: %v", c.ChatID, err)
	}

	f.send(sender, c,
		T(c.Lang, "confirm_title", c.Service, c.Barber, c.Time, c.Phone),
		ConfirmKeyboard(c.Lang))
}

func (f *BookingFlow) handleCallback(sender interfaces.Sender, c *Conversation, cq *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	action := ParseAction(cq.Data)

	switch action.Kind {
	case ActionSelectLang:
		f.ack(sender, cq)
		c.Lang = action.Arg
		c.Stage = StageMenu
		f.showMainMenu(ctx, sender, c)

	case ActionChangeLang:
		f.ack(sender, cq)
		c.Stage = StageLanguage
		f.send(sender, c, T(c.Lang, "choose_lang"), LanguageKeyboard())

	case ActionBackToMain:
		// Language is sticky; the booking draft is not.
		f.ack(sender, cq)
		c.resetDraft()
		c.Stage = StageMenu
		f.showMainMenu(ctx, sender, c)

	case ActionBook:
		services, err := f.store.ListServices(ctx, c.OwnerID)
		if err != nil {
			f.alert(sender, cq, T(c.Lang, "error_fetch"))
			return
		}
		if len(services) == 0 {
			f.alert(sender, cq, T(c.Lang, "no_services"))
			return
		}
		f.ack(sender, cq)
		c.Stage = StageService
		f.send(sender, c, T(c.Lang, "choose_service"), ServicesKeyboard(c.Lang, services))

	case ActionSelectService:
		if c.Stage != StageService {
			f.ack(sender, cq)
			return
		}
		barbers, err := f.store.ListActiveBarbers(ctx, c.OwnerID)
		if err != nil {
			f.alert(sender, cq, T(c.Lang, "error_fetch"))
			return
		}
		if len(barbers) == 0 {
			f.alert(sender, cq, T(c.Lang, "no_barbers"))
			return
		}
		f.ack(sender, cq)
		c.Service = action.Arg
		c.Stage = StageBarber
		f.send(sender, c, T(c.Lang, "choose_barber", c.Service), BarbersKeyboard(c.Lang, barbers))

	case ActionSelectBarber:
		if c.Stage != StageBarber {
			f.ack(sender, cq)
			return
		}
		settings, err := f.store.GetSettings(ctx, c.OwnerID)
		if err != nil {
			f.alert(sender, cq, T(c.Lang, "error_fetch"))
			return
		}
		busy, err := f.store.BusyTimes(ctx, c.OwnerID, action.Arg)
		if err != nil {
			f.alert(sender, cq, T(c.Lang, "error_fetch"))
			return
		}
		f.ack(sender, cq)
		c.Barber = action.Arg
		c.Stage = StageTime
		slots := ComputeSlots(settings, busy)
		f.send(sender, c, T(c.Lang, "choose_time", c.Barber), SlotsKeyboard(c.Lang, slots))

	case ActionSelectTime:
		if c.Stage != StageTime {
			f.ack(sender, cq)
			return
		}
		f.ack(sender, cq)
		c.Time = action.Arg

		// Returning customer: a phone on file (from any previous booking)
		// skips the phone stage entirely.
		phone, err := f.store.PhoneForChat(ctx, c.ChatID)
		if err != nil {
			log.Printf("[flow] phone lookup failed for chat %d: %v", c.ChatID, err)
		}
		if phone != "" {
			c.Phone = phone
			c.Stage = StageConfirm
			f.send(sender, c,
				T(c.Lang, "confirm_title", c.Service, c.Barber, c.Time, c.Phone),
				ConfirmKeyboard(c.Lang))
			return
		}

		c.Stage = StagePhone
		req := tgbotapi.NewMessage(c.ChatID, T(c.Lang, "request_phone", c.Time))
		req.ParseMode = tgbotapi.ModeMarkdown
		req.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButtonContact(T(c.Lang, "send_phone_btn"))))
		if _, err := sender.Send(req); err != nil {
			log.Printf("[flow] send failed for chat %d: %v", c.ChatID, err)
		}

	case ActionSlotBusy:
		f.alert(sender, cq, T(c.Lang, "slot_busy"))

	case ActionConfirm:
		if c.Stage != StageConfirm {
			f.ack(sender, cq)
			return
		}
		f.confirmBooking(ctx, sender, c, cq)

	case ActionMyBookings:
		f.showMyBookings(ctx, sender, c, cq)

	case ActionCancelBooking:
		ownerID, err := f.store.CancelByCustomer(ctx, action.BookingID, c.ChatID)
		if err != nil {
			f.alert(sender, cq, T(c.Lang, "cancel_error"))
			return
		}
		f.hub.Publish(entities.StatusEvent(ownerID, action.BookingID, entities.StatusCancelled))
		f.alert(sender, cq, T(c.Lang, "booking_cancelled"))
		f.showMyBookings(ctx, sender, c, cq)

	case ActionShowServices:
		services, err := f.store.ListServices(ctx, c.OwnerID)
		if err != nil || len(services) == 0 {
			f.alert(sender, cq, T(c.Lang, "no_services"))
			return
		}
		f.ack(sender, cq)
		var sb strings.Builder
		sb.WriteString(T(c.Lang, "services_title"))
		for _, s := range services {
			fmt.Fprintf(&sb, "🔹 *%s* - %s UZS\n", s.Name, formatPrice(s.Price))
		}
		f.send(sender, c, sb.String(), BackKeyboard(c.Lang))

	case ActionShowBarbers:
		barbers, err := f.store.ListActiveBarbers(ctx, c.OwnerID)
		if err != nil || len(barbers) == 0 {
			f.alert(sender, cq, T(c.Lang, "no_barbers"))
			return
		}
		f.ack(sender, cq)
		var sb strings.Builder
		sb.WriteString(T(c.Lang, "barbers_title"))
		for _, b := range barbers {
			fmt.Fprintf(&sb, "✅ *%s*\n", b.Name)
		}
		f.send(sender, c, sb.String(), BackKeyboard(c.Lang))

	case ActionShowLocation:
		f.ack(sender, cq)
		settings, _ := f.store.GetSettings(ctx, c.OwnerID)
		address := settings["address"]
		if address == "" {
			address = "Toshkent sh."
		}
		f.send(sender, c, T(c.Lang, "location_text", address), BackKeyboard(c.Lang))

	case ActionShowContact:
		f.ack(sender, cq)
		settings, _ := f.store.GetSettings(ctx, c.OwnerID)
		address := settings["address"]
		if address == "" {
			address = "Toshkent sh."
		}
		start, end := settings[SettingWorkStart], settings[SettingWorkEnd]
		if start == "" {
			start = defaultWorkStart
		}
		if end == "" {
			end = defaultWorkEnd
		}
		f.send(sender, c, T(c.Lang, "contact_text", address, start, end), BackKeyboard(c.Lang))

	case ActionUnknown:
		f.ack(sender, cq)
		log.Printf("[flow] ignoring unknown callback %q from chat %d", cq.Data, c.ChatID)
	}
}

func (f *BookingFlow) confirmBooking(ctx context.Context, sender interfaces.Sender, c *Conversation, cq *tgbotapi.CallbackQuery) {
	booking := entities.Booking{
		OwnerID: c.OwnerID,
		Name:    customerName(cq.From),
		Tel:     c.Phone,
		Service: c.Service,
		Barber:  c.Barber,
		Time:    c.Time,
		ChatID:  c.ChatID,
	}
	created, err := f.store.CreateBooking(ctx, booking)
	if err != nil {
		log.Printf("[flow] booking create failed for chat %d: %v", c.ChatID, err)
		f.alert(sender, cq, T(c.Lang, "book_error"))
		return
	}
	f.ack(sender, cq)
	f.hub.Publish(entities.NewBookingEvent(created))

	shop, err := f.store.ShopName(ctx, c.OwnerID)
	if err != nil {
		shop = "Barber"
	}

	caption := T(c.Lang, "book_success", created.Num, shop)
	png, err := qrcode.Encode(
		fmt.Sprintf("#%d | %s | %s | %s", created.Num, shop, created.Barber, created.Time),
		qrcode.Medium, 256)
	if err != nil {
		log.Printf("[flow] qr encode failed: %v", err)
		f.send(sender, c, caption, BackKeyboard(c.Lang))
	} else {
		photo := tgbotapi.NewPhoto(c.ChatID, tgbotapi.FileBytes{Name: "ticket.png", Bytes: png})
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = BackKeyboard(c.Lang)
		if _, err := sender.Send(photo); err != nil {
			log.Printf("[flow] ticket send failed for chat %d: %v", c.ChatID, err)
		}
	}

	c.resetDraft()
	c.Stage = StageMenu
}

func (f *BookingFlow) showMyBookings(ctx context.Context, sender interfaces.Sender, c *Conversation, cq *tgbotapi.CallbackQuery) {
	bookings, err := f.store.ActiveForChat(ctx, c.ChatID)
	if err != nil {
		f.alert(sender, cq, T(c.Lang, "error_fetch"))
		return
	}
	if len(bookings) == 0 {
		f.alert(sender, cq, T(c.Lang, "no_bookings"))
		return
	}
	f.ack(sender, cq)

	var sb strings.Builder
	sb.WriteString(T(c.Lang, "my_bookings_title"))
	for _, b := range bookings {
		fmt.Fprintf(&sb, "🔢 #%d\n✂️ %s\n🧔 %s\n⏰ %s\n---\n", b.Num, b.Service, b.Barber, b.Time)
	}
	// Side menu: viewing or cancelling bookings leaves the booking draft
	// and its stage untouched.
	f.send(sender, c, sb.String(), MyBookingsKeyboard(c.Lang, bookings))
}

func (f *BookingFlow) showMainMenu(ctx context.Context, sender interfaces.Sender, c *Conversation) {
	shop, err := f.store.ShopName(ctx, c.OwnerID)
	if err != nil {
		shop = "Barber Shop"
	}
	f.send(sender, c, T(c.Lang, "welcome", shop), MainMenuKeyboard(c.Lang))
}

func (f *BookingFlow) send(sender interfaces.Sender, c *Conversation, text string, keyboard any) {
	msg := tgbotapi.NewMessage(c.ChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb, ok := keyboard.(tgbotapi.InlineKeyboardMarkup); ok {
		msg.ReplyMarkup = kb
	}
	if _, err := sender.Send(msg); err != nil {
		log.Printf("[flow] send failed for chat %d: %v", c.ChatID, err)
	}
}

func (f *BookingFlow) ack(sender interfaces.Sender, cq *tgbotapi.CallbackQuery) {
	if _, err := sender.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Printf("[flow] callback ack failed: %v", err)
	}
}

func (f *BookingFlow) alert(sender interfaces.Sender, cq *tgbotapi.CallbackQuery, text string) {
	if _, err := sender.Request(tgbotapi.NewCallbackWithAlert(cq.ID, text)); err != nil {
		log.Printf("[flow] callback alert failed: %v", err)
	}
}

func (c *Conversation) resetDraft() {
	c.Service = ""
	c.Barber = ""
	c.Time = ""
	c.Phone = ""
}

func chatIDOf(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func customerName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
