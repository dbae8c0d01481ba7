package usecases

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"project_navbat/internal/entities"
)

// LanguageKeyboard offers the two supported languages.
func LanguageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇺🇿 O'zbek", cbLangPrefix+LangUz),
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺 Русский", cbLangPrefix+LangRu),
		),
	)
}

// MainMenuKeyboard is the shop's top-level menu.
func MainMenuKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(T(lang, "book"), cbBook)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(T(lang, "my_bookings"), cbMyBookings)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(T(lang, "services"), cbServices),
			tgbotapi.NewInlineKeyboardButtonData(T(lang, "barbers"), cbBarbers),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(T(lang, "location"), cbLocation),
			tgbotapi.NewInlineKeyboardButtonData(T(lang, "contact"), cbContact),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(T(lang, "change_lang"), cbChangeLang)),
	)
}

// ServicesKeyboard lists services with prices, one per row.
func ServicesKeyboard(lang string, services []entities.Service) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range services {
		label := fmt.Sprintf("💇‍♂️ %s - %s UZS", s.Name, formatPrice(s.Price))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbServicePrefix+s.Name)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(T(lang, "back"), cbBackToMain)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// BarbersKeyboard lists active barbers, one per row.
func BarbersKeyboard(lang string, barbers []entities.Barber) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range barbers {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧔 "+b.Name, cbBarberPrefix+b.Name)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(T(lang, "back"), cbBook)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SlotsKeyboard lays slots out three per row. Busy slots stay visible but
// carry the non-advancing "busy" callback.
func SlotsKeyboard(lang string, slots []Slot) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, s := range slots {
		var btn tgbotapi.InlineKeyboardButton
		if s.Busy {
			btn = tgbotapi.NewInlineKeyboardButtonData("❌ "+s.Time, cbBusy)
		} else {
			btn = tgbotapi.NewInlineKeyboardButtonData(s.Time, cbTimePrefix+s.Time)
		}
		row = append(row, btn)
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(T(lang, "back"), cbBook)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ConfirmKeyboard offers confirm / cancel for the drafted booking.
func ConfirmKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(T(lang, "confirm_btn"), cbConfirm),
			tgbotapi.NewInlineKeyboardButtonData(T(lang, "cancel_btn"), cbBackToMain),
		),
	)
}

// MyBookingsKeyboard offers one cancel button per active booking.
func MyBookingsKeyboard(lang string, bookings []entities.Booking) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range bookings {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				T(lang, "cancel_booking", b.Num),
				fmt.Sprintf("%s%d", cbCancelPrefix, b.ID))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(T(lang, "back"), cbBackToMain)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// BackKeyboard is a single back-to-main-menu row.
func BackKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(T(lang, "back"), cbBackToMain)))
}

// formatPrice renders 50000 as "50 000".
func formatPrice(price int) string {
	s := fmt.Sprintf("%d", price)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, " ")
}
