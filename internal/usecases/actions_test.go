package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		data string
		want MenuAction
	}{
		{"lang_uz", MenuAction{Kind: ActionSelectLang, Arg: "uz"}},
		{"lang_ru", MenuAction{Kind: ActionSelectLang, Arg: "ru"}},
		{"lang_en", MenuAction{Kind: ActionUnknown}},
		{"book", MenuAction{Kind: ActionBook}},
		{"my_bookings", MenuAction{Kind: ActionMyBookings}},
		{"services", MenuAction{Kind: ActionShowServices}},
		{"barbers", MenuAction{Kind: ActionShowBarbers}},
		{"location", MenuAction{Kind: ActionShowLocation}},
		{"contact", MenuAction{Kind: ActionShowContact}},
		{"change_lang", MenuAction{Kind: ActionChangeLang}},
		{"back_to_main", MenuAction{Kind: ActionBackToMain}},
		{"service_Soch olish", MenuAction{Kind: ActionSelectService, Arg: "Soch olish"}},
		{"barber_Usta 1", MenuAction{Kind: ActionSelectBarber, Arg: "Usta 1"}},
		{"time_09:30", MenuAction{Kind: ActionSelectTime, Arg: "09:30"}},
		{"busy", MenuAction{Kind: ActionSlotBusy}},
		{"confirm_ok", MenuAction{Kind: ActionConfirm}},
		{"cancel_42", MenuAction{Kind: ActionCancelBooking, BookingID: 42}},
		{"cancel_abc", MenuAction{Kind: ActionUnknown}},
		{"", MenuAction{Kind: ActionUnknown}},
		{"something_else", MenuAction{Kind: ActionUnknown}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAction(tt.data), "data %q", tt.data)
	}
}

func TestKeyboardCallbacksRoundTrip(t *testing.T) {
	// Every button the keyboards emit must parse to a known action.
	kb := MainMenuKeyboard(LangUz)
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			action := ParseAction(*btn.CallbackData)
			assert.NotEqual(t, ActionUnknown, action.Kind, "callback %q", *btn.CallbackData)
		}
	}

	slots := SlotsKeyboard(LangUz, []Slot{{Time: "09:00"}, {Time: "09:30", Busy: true}})
	for _, row := range slots.InlineKeyboard {
		for _, btn := range row {
			action := ParseAction(*btn.CallbackData)
			assert.NotEqual(t, ActionUnknown, action.Kind, "callback %q", *btn.CallbackData)
		}
	}
}

func TestTranslationFallback(t *testing.T) {
	assert.Equal(t, T(LangUz, "book"), T("fr", "book"))
	assert.NotEqual(t, T(LangUz, "book"), T(LangRu, "book"))
	assert.Empty(t, T(LangUz, "no_such_key"))
}
