package usecases

import (
	"strconv"
	"strings"
)

// ActionKind is the closed set of menu actions a callback can carry.
// Parsing into a tagged variant (instead of dispatching on raw strings)
// keeps the switch in the flow handler exhaustive: a new action is a new
// constant the compiler forces every switch to consider.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionSelectLang
	ActionChangeLang
	ActionBackToMain
	ActionBook
	ActionMyBookings
	ActionShowServices
	ActionShowBarbers
	ActionShowLocation
	ActionShowContact
	ActionSelectService
	ActionSelectBarber
	ActionSelectTime
	ActionSlotBusy
	ActionConfirm
	ActionCancelBooking
)

// MenuAction is one parsed callback. Arg holds the selection payload
// (language code, service or barber name, HH:MM slot); BookingID is set
// only for per-booking cancellation.
type MenuAction struct {
	Kind      ActionKind
	Arg       string
	BookingID int
}

// Callback data prefixes, shared by the keyboard builders and the parser.
const (
	cbLangPrefix    = "lang_"
	cbBook          = "book"
	cbMyBookings    = "my_bookings"
	cbServices      = "services"
	cbBarbers       = "barbers"
	cbLocation      = "location"
	cbContact       = "contact"
	cbChangeLang    = "change_lang"
	cbBackToMain    = "back_to_main"
	cbServicePrefix = "service_"
	cbBarberPrefix  = "barber_"
	cbTimePrefix    = "time_"
	cbBusy          = "busy"
	cbConfirm       = "confirm_ok"
	cbCancelPrefix  = "cancel_"
)

// ParseAction maps raw callback data to a MenuAction. Unknown data yields
// ActionUnknown, which the flow ignores.
func ParseAction(data string) MenuAction {
	switch {
	case strings.HasPrefix(data, cbLangPrefix):
		lang := strings.TrimPrefix(data, cbLangPrefix)
		if lang != LangUz && lang != LangRu {
			return MenuAction{Kind: ActionUnknown}
		}
		return MenuAction{Kind: ActionSelectLang, Arg: lang}
	case data == cbBook:
		return MenuAction{Kind: ActionBook}
	case data == cbMyBookings:
		return MenuAction{Kind: ActionMyBookings}
	case data == cbServices:
		return MenuAction{Kind: ActionShowServices}
	case data == cbBarbers:
		return MenuAction{Kind: ActionShowBarbers}
	case data == cbLocation:
		return MenuAction{Kind: ActionShowLocation}
	case data == cbContact:
		return MenuAction{Kind: ActionShowContact}
	case data == cbChangeLang:
		return MenuAction{Kind: ActionChangeLang}
	case data == cbBackToMain:
		return MenuAction{Kind: ActionBackToMain}
	case strings.HasPrefix(data, cbServicePrefix):
		return MenuAction{Kind: ActionSelectService, Arg: strings.TrimPrefix(data, cbServicePrefix)}
	case strings.HasPrefix(data, cbBarberPrefix):
		return MenuAction{Kind: ActionSelectBarber, Arg: strings.TrimPrefix(data, cbBarberPrefix)}
	case strings.HasPrefix(data, cbTimePrefix):
		return MenuAction{Kind: ActionSelectTime, Arg: strings.TrimPrefix(data, cbTimePrefix)}
	case data == cbBusy:
		return MenuAction{Kind: ActionSlotBusy}
	case data == cbConfirm:
		return MenuAction{Kind: ActionConfirm}
	case strings.HasPrefix(data, cbCancelPrefix):
		id, err := strconv.Atoi(strings.TrimPrefix(data, cbCancelPrefix))
		if err != nil {
			return MenuAction{Kind: ActionUnknown}
		}
		return MenuAction{Kind: ActionCancelBooking, BookingID: id}
	}
	return MenuAction{Kind: ActionUnknown}
}
