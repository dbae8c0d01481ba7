package usecases

import "fmt"

// Customer-facing texts in the two languages the bot offers. Keys missing
// from a language fall back to Uzbek.
const (
	LangUz = "uz"
	LangRu = "ru"
)

var translations = map[string]map[string]string{
	LangUz: {
		"choose_lang":       "🌐 Tilni tanlang / Выберите язык:",
		"welcome":           "💈 *%s* ga xush kelibsiz!\n\nQuyidagi menyudan tanlang:",
		"book":              "📅 Navbat olish",
		"my_bookings":       "🎫 Mening navbatlarim",
		"services":          "✂️ Xizmatlar",
		"barbers":           "🧔 Ustalar",
		"location":          "📍 Manzil",
		"contact":           "📞 Aloqa",
		"back":              "⬅️ Orqaga",
		"change_lang":       "🌐 UZ / RU",
		"choose_service":    "✂️ Xizmatni tanlang:",
		"choose_barber":     "🧔 *%s* uchun ustani tanlang:",
		"choose_time":       "⏰ *%s* uchun vaqtni tanlang:",
		"slot_busy":         "❌ Bu vaqt band",
		"request_phone":     "📱 *%s* uchun telefon raqamingizni yuboring:",
		"send_phone_btn":    "📱 Raqamni yuborish",
		"thanks_phone":      "✅ Raqam qabul qilindi.",
		"phone_error":       "❗ Raqam noto'g'ri. Kamida 7 ta raqam kiriting.",
		"confirm_title":     "📋 *Navbatni tasdiqlang:*\n\n✂️ Xizmat: %s\n🧔 Usta: %s\n⏰ Vaqt: %s\n📱 Tel: %s",
		"confirm_btn":       "✅ Tasdiqlash",
		"cancel_btn":        "❌ Bekor qilish",
		"book_success":      "🎉 Navbat olindi!\n\n🔢 Sizning raqamingiz: *#%d*\n💈 %s\n\nQR-chiptani kirishda ko'rsating.",
		"book_error":        "❗ Navbat saqlanmadi. Qayta urinib ko'ring.",
		"no_services":       "Hozircha xizmatlar yo'q",
		"no_barbers":        "Hozircha ustalar yo'q",
		"no_bookings":       "Sizda faol navbat yo'q",
		"error_fetch":       "❗ Ma'lumot olishda xatolik",
		"my_bookings_title": "🎫 *Sizning navbatlaringiz:*\n\n",
		"cancel_booking":    "❌ #%d ni bekor qilish",
		"booking_cancelled": "✅ Navbat bekor qilindi",
		"cancel_error":      "❗ Bekor qilib bo'lmadi",
		"services_title":    "✂️ *Xizmatlar:*\n\n",
		"barbers_title":     "🧔 *Bizning ustalar:*\n\n",
		"location_text":     "📍 *Bizning manzil:*\n\n%s",
		"contact_text":      "📞 *Aloqa:*\n\nManzil: %s\nIsh vaqti: %s - %s",
		"notification_turn": "🔔 Sizning navbatingiz keldi!\n\n🔢 Raqam: *#%d*\n🧔 Usta: %s\n\nIltimos, kirib keling.",
		"reminder":          "💈 Soch olish vaqti keldi!\n\n🧔 %s sizni kutmoqda. Navbat olish uchun /start bosing.",
	},
	LangRu: {
		"choose_lang":       "🌐 Tilni tanlang / Выберите язык:",
		"welcome":           "💈 Добро пожаловать в *%s*!\n\nВыберите из меню:",
		"book":              "📅 Записаться",
		"my_bookings":       "🎫 Мои записи",
		"services":          "✂️ Услуги",
		"barbers":           "🧔 Мастера",
		"location":          "📍 Адрес",
		"contact":           "📞 Контакты",
		"back":              "⬅️ Назад",
		"change_lang":       "🌐 UZ / RU",
		"choose_service":    "✂️ Выберите услугу:",
		"choose_barber":     "🧔 Выберите мастера для *%s*:",
		"choose_time":       "⏰ Выберите время для *%s*:",
		"slot_busy":         "❌ Это время занято",
		"request_phone":     "📱 Отправьте номер телефона для *%s*:",
		"send_phone_btn":    "📱 Отправить номер",
		"thanks_phone":      "✅ Номер принят.",
		"phone_error":       "❗ Неверный номер. Введите минимум 7 цифр.",
		"confirm_title":     "📋 *Подтвердите запись:*\n\n✂️ Услуга: %s\n🧔 Мастер: %s\n⏰ Время: %s\n📱 Тел: %s",
		"confirm_btn":       "✅ Подтвердить",
		"cancel_btn":        "❌ Отменить",
		"book_success":      "🎉 Запись создана!\n\n🔢 Ваш номер: *#%d*\n💈 %s\n\nПокажите QR-билет при входе.",
		"book_error":        "❗ Не удалось сохранить запись. Попробуйте ещё раз.",
		"no_services":       "Пока нет услуг",
		"no_barbers":        "Пока нет мастеров",
		"no_bookings":       "У вас нет активных записей",
		"error_fetch":       "❗ Ошибка при получении данных",
		"my_bookings_title": "🎫 *Ваши записи:*\n\n",
		"cancel_booking":    "❌ Отменить #%d",
		"booking_cancelled": "✅ Запись отменена",
		"cancel_error":      "❗ Не удалось отменить",
		"services_title":    "✂️ *Услуги:*\n\n",
		"barbers_title":     "🧔 *Наши мастера:*\n\n",
		"location_text":     "📍 *Наш адрес:*\n\n%s",
		"contact_text":      "📞 *Контакты:*\n\nАдрес: %s\nРабочее время: %s - %s",
		"notification_turn": "🔔 Подошла ваша очередь!\n\n🔢 Номер: *#%d*\n🧔 Мастер: %s\n\nПожалуйста, заходите.",
		"reminder":          "💈 Пора подстричься!\n\n🧔 %s ждёт вас. Нажмите /start, чтобы записаться.",
	},
}

// T renders a translated text, formatting args when present.
func T(lang, key string, args ...any) string {
	table, ok := translations[lang]
	if !ok {
		table = translations[LangUz]
	}
	text, ok := table[key]
	if !ok {
		text = translations[LangUz][key]
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}
