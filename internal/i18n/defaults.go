package i18n

var defaultRU = map[Key]string{
	KeyChooseLanguage:  "Пожалуйста, выберите язык / Iltimos, tilni tanlang:",
	KeyInvalidLanguage: "Нужно выбрать кнопкой: Русский или O'zbekcha.",
	KeyLanguageName:    "Русский",

	KeyAskName:        "Введите ваше ФИО:",
	KeyInvalidName:    "ФИО может содержать только буквы и пробелы. Попробуйте ещё раз:",
	KeyAskPhone:       "Введите номер телефона:",
	KeyInvalidPhone:   "Номер телефона должен содержать от 7 до 15 цифр, например 901234567 или +998901234567:",
	KeyAskCompany:     "Введите название компании:",
	KeyInvalidCompany: "Название компании не должно быть пустым или длиннее 200 символов:",
	KeyAskTariff:      "Выберите тариф:",
	KeyInvalidTariff:  "Нужно выбрать один из тарифов кнопками.",
	KeyAskEmail:       "Введите e-mail или /skip, чтобы пропустить:",
	KeyInvalidEmail:   "Некорректный e-mail. Введите адрес вида name@example.com или /skip:",

	KeyConfirmValue:    "Вы ввели: %s\nВсё верно?",
	KeyConfirmPending:  "Подтвердите значение кнопками ниже.",
	KeyYes:             "✅ Да",
	KeyNo:              "✏️ Исправить",
	KeyBack:            "Назад",
	KeyCancel:          "Отмена",
	KeyBackUnavailable: "На этом шаге вернуться назад нельзя.",

	KeyThankYou:      "Спасибо! Ваша заявка отправлена.",
	KeyChatError:     "⚠️ Не удалось передать заявку менеджерам, мы свяжемся с вами позже.",
	KeySheetError:    "⚠️ Не удалось сохранить заявку в таблицу.",
	KeyCancelled:     "Отменено. /start чтобы начать заново.",
	KeyFallback:      "Чтобы начать, введите команду /start",
	KeyHelp:          "/start — заполнить заявку\n/back — вернуться на шаг назад\n/cancel — отменить заявку",
	KeyInternalError: "Произошла ошибка. Пожалуйста, попробуйте ещё раз.",

	KeyNotificationTitle: "📥 Новая заявка!",
	KeyEmptyValue:        "—",
	"label_language":     "🌐 Язык",
	"label_name":         "👤 ФИО",
	"label_phone":        "📞 Телефон",
	"label_company":      "🏢 Компания",
	"label_tariff":       "💼 Тариф",
	"label_email":        "✉️ E-mail",

	"tariff_start":     "Старт",
	"tariff_business":  "Бизнес",
	"tariff_corporate": "Корпоратив",
}

var defaultUZ = map[Key]string{
	KeyInvalidLanguage: "Iltimos, tugmalardan foydalanib tanlang: Русский yoki O'zbekcha.",
	KeyLanguageName:    "O'zbekcha",

	KeyAskName:        "Iltimos, ismingiz va familiyangizni kiriting:",
	KeyInvalidName:    "Ism faqat harflar va bo'shliqlardan iborat bo'lishi kerak. Qaytadan kiriting:",
	KeyAskPhone:       "Iltimos, telefon raqamingizni kiriting:",
	KeyInvalidPhone:   "Telefon raqami 7 dan 15 tagacha raqamdan iborat bo'lishi kerak, masalan 901234567 yoki +998901234567:",
	KeyAskCompany:     "Iltimos, kompaniya nomini kiriting:",
	KeyInvalidCompany: "Kompaniya nomi bo'sh yoki 200 belgidan uzun bo'lmasligi kerak:",
	KeyAskTariff:      "Iltimos, tarifni tanlang:",
	KeyInvalidTariff:  "Iltimos, quyidagi tariflardan birini tugmalar orqali tanlang.",
	KeyAskEmail:       "E-mail manzilingizni kiriting yoki o'tkazib yuborish uchun /skip:",
	KeyInvalidEmail:   "E-mail noto'g'ri. name@example.com ko'rinishida kiriting yoki /skip:",

	KeyConfirmValue:    "Siz kiritdingiz: %s\nTo'g'rimi?",
	KeyConfirmPending:  "Iltimos, quyidagi tugmalar orqali tasdiqlang.",
	KeyYes:             "✅ Ha",
	KeyNo:              "✏️ Tuzatish",
	KeyBack:            "Orqaga",
	KeyCancel:          "Bekor qilish",
	KeyBackUnavailable: "Bu bosqichda orqaga qaytib bo'lmaydi.",

	KeyThankYou:      "Rahmat! Murojaatingiz yuborildi.",
	KeyChatError:     "⚠️ Arizani menejerlarga yuborib bo'lmadi, siz bilan keyinroq bog'lanamiz.",
	KeySheetError:    "⚠️ Arizani jadvalga saqlashda muammo yuz berdi.",
	KeyCancelled:     "Bekor qilindi. Qaytadan boshlash uchun /start.",
	KeyFallback:      "/start buyrug'ini kiriting, iltimos.",
	KeyHelp:          "/start — ariza to'ldirish\n/back — bir qadam orqaga\n/cancel — arizani bekor qilish",
	KeyInternalError: "Xatolik yuz berdi. Iltimos, qaytadan urinib ko'ring.",

	"tariff_start":     "Start",
	"tariff_business":  "Biznes",
	"tariff_corporate": "Korporativ",
}
