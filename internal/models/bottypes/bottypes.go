package bottypes

import "time"

// User Зарегистрированный пользователь бота.
type User struct {
	TelegramID int64
	Phone      string
	Username   string
	FirstName  string
	LastName   string
}

// ExpenseRecord Одна запись о расходе пользователя.
type ExpenseRecord struct {
	ID          int64
	UserID      int64
	Category    string
	Amount      float64
	Description string // Пустая строка — описание не задано.
	Date        time.Time
}

// InvestmentLot Одна покупка инвестиционного актива.
type InvestmentLot struct {
	Asset         string
	Quantity      float64
	PurchasePrice float64
}

// CategoryTotal Сумма расходов по категории (для отчётов).
type CategoryTotal struct {
	Category string
	Total    float64
}

// Типы для описания состава кнопок телеграм сообщения.
// Кнопка сообщения.
type TgInlineButton struct {
	DisplayName string
	Value       string
}

// Строка с кнопками сообщения.
type TgRowButtons []TgInlineButton
