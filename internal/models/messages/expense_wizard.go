package messages

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shoksin/walletBot/internal/models/bottypes"
)

// Сценарий добавления расхода: категория -> сумма -> описание -> запись.

const (
	txtSelectCategory     = "Please select a category for your expense:"
	txtEnterCustomName    = "Please enter the name of your custom category:"
	txtEmptyCategoryName  = "❌ Category name cannot be empty. Please enter a name:"
	txtCategoryExists     = "❌ Category already exists. Please choose another name:"
	txtSelectAmount       = "💵 Please select an amount:"
	txtEnterAmount        = "💵 Please enter the amount:"
	txtInvalidAmount      = "❌ Invalid amount. Please enter a number:"
	txtEnterDescription   = "📝 Please enter a description (or type 'skip' to skip):"
	txtExpenseAdded       = "✅ Expense added successfully!"
	txtNoExpenses         = "📭 No expenses found."
	txtEnterExpenseID     = "Enter the expense ID to delete:"
	txtInvalidExpenseID   = "❌ Please enter a valid expense ID."
	txtSkipSentinel       = "skip"
	btnAddCustomCategory  = "➕ Add Custom Category"
	btnCustomAmount       = "✍️ Custom Amount"
	btnBackToCategories   = "🔙 Back to Categories"
	expensesPageSize      = 10
	expenseButtonsPerRow  = 2
)

// Встроенные категории доступны всегда, независимо от сохранённых строк;
// пользовательские категории их дополняют.
var defaultCategories = []string{"Food", "Transport", "Entertainment", "Utilities", "Other"}

var quickAmounts = []int{1, 5, 10, 15, 20, 50, 100}

func (m *Model) addExpenseCommand(ctx context.Context, msg Message) error {
	m.sessions.Set(msg.UserID, Session{State: StateSelectingCategory})
	return m.showCategorySelection(ctx, msg.UserID)
}

func (m *Model) showCategorySelection(ctx context.Context, userID int64) error {
	userCategories, err := m.storage.GetCategories(ctx, userID)
	if err != nil {
		return err
	}
	return m.tgClient.ShowInlineButtons(txtSelectCategory, categoryButtons(userCategories), userID)
}

func categoryButtons(userCategories []string) []bottypes.TgRowButtons {
	buttons := make([]bottypes.TgInlineButton, 0, len(defaultCategories)+len(userCategories)+1)
	for _, category := range defaultCategories {
		buttons = append(buttons, bottypes.TgInlineButton{
			DisplayName: categoryEmoji(category) + " " + category,
			Value:       "category:" + category,
		})
	}
	for _, category := range userCategories {
		buttons = append(buttons, bottypes.TgInlineButton{
			DisplayName: fallbackEmoji + " " + category,
			Value:       "category:" + category,
		})
	}
	buttons = append(buttons, bottypes.TgInlineButton{
		DisplayName: btnAddCustomCategory,
		Value:       "add_category",
	})
	return buttonRows(buttons, expenseButtonsPerRow)
}

func amountButtons() []bottypes.TgRowButtons {
	buttons := make([]bottypes.TgInlineButton, 0, len(quickAmounts)+2)
	for _, amount := range quickAmounts {
		buttons = append(buttons, bottypes.TgInlineButton{
			DisplayName: fmt.Sprintf("$%d", amount),
			Value:       fmt.Sprintf("amount:%d", amount),
		})
	}
	buttons = append(buttons,
		bottypes.TgInlineButton{DisplayName: btnCustomAmount, Value: "custom_amount"},
		bottypes.TgInlineButton{DisplayName: btnBackToCategories, Value: "back_to_category"},
	)
	return buttonRows(buttons, expenseButtonsPerRow)
}

// Раскладка кнопок по строкам фиксированной ширины.
func buttonRows(buttons []bottypes.TgInlineButton, perRow int) []bottypes.TgRowButtons {
	rows := make([]bottypes.TgRowButtons, 0, (len(buttons)+perRow-1)/perRow)
	for len(buttons) > 0 {
		size := perRow
		if len(buttons) < size {
			size = len(buttons)
		}
		rows = append(rows, bottypes.TgRowButtons(buttons[:size]))
		buttons = buttons[size:]
	}
	return rows
}

func (m *Model) promptCustomCategory(ctx context.Context, msg Message) error {
	m.sessions.Set(msg.UserID, Session{State: StateAddingCustomCategory})
	return m.tgClient.ShowReplyButtons(txtEnterCustomName, cancelButtons(), msg.UserID)
}

// Ввод имени пользовательской категории. Дубликат — ожидаемый исход:
// пользователю предлагается другое имя, состояние не меняется.
func (m *Model) addCustomCategory(ctx context.Context, msg Message, session Session) error {
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		return m.tgClient.ShowReplyButtons(txtEmptyCategoryName, cancelButtons(), msg.UserID)
	}

	added, err := m.storage.AddCategory(ctx, msg.UserID, name)
	if err != nil {
		return err
	}
	if !added {
		return m.tgClient.ShowReplyButtons(txtCategoryExists, cancelButtons(), msg.UserID)
	}

	if err := m.sendMainMenu(msg.UserID, fmt.Sprintf("✅ Category '%s' added!", name)); err != nil {
		return err
	}

	session.State = StateSelectingAmount
	session.Category = name
	m.sessions.Set(msg.UserID, session)
	return m.tgClient.ShowInlineButtons(txtSelectAmount, amountButtons(), msg.UserID)
}

func (m *Model) selectCategory(ctx context.Context, msg Message, session Session, category string) error {
	session.State = StateSelectingAmount
	session.Category = category
	m.sessions.Set(msg.UserID, session)
	return m.tgClient.ShowInlineButtons(txtSelectAmount, amountButtons(), msg.UserID)
}

func (m *Model) backToCategorySelection(ctx context.Context, msg Message) error {
	m.sessions.Set(msg.UserID, Session{State: StateSelectingCategory})
	return m.showCategorySelection(ctx, msg.UserID)
}

// Быстрая сумма с кнопки: сразу к вводу описания.
func (m *Model) selectQuickAmount(ctx context.Context, msg Message, session Session, rawAmount string) error {
	amount, valid := parsePositiveNumber(rawAmount)
	if !valid {
		return nil // Устаревшая или повреждённая кнопка.
	}

	session.State = StateEnteringDescription
	session.Amount = amount
	m.sessions.Set(msg.UserID, session)
	return m.tgClient.ShowReplyButtons(txtEnterDescription, cancelButtons(), msg.UserID)
}

func (m *Model) promptCustomAmount(ctx context.Context, msg Message, session Session) error {
	session.State = StateEnteringAmount
	m.sessions.Set(msg.UserID, session)
	return m.tgClient.ShowReplyButtons(txtEnterAmount, cancelButtons(), msg.UserID)
}

// Ввод произвольной суммы. Невалидное число не прерывает сценарий:
// пользователь остаётся в том же состоянии.
func (m *Model) enterAmount(ctx context.Context, msg Message, session Session) error {
	amount, valid := parsePositiveNumber(msg.Text)
	if !valid {
		return m.tgClient.ShowReplyButtons(txtInvalidAmount, cancelButtons(), msg.UserID)
	}

	session.State = StateEnteringDescription
	session.Amount = amount
	m.sessions.Set(msg.UserID, session)
	return m.tgClient.ShowReplyButtons(txtEnterDescription, cancelButtons(), msg.UserID)
}

// Последний шаг: любой текст становится описанием ("skip" — без описания),
// расход записывается, сессия завершается.
func (m *Model) enterDescription(ctx context.Context, msg Message, session Session) error {
	description := msg.Text
	if strings.EqualFold(strings.TrimSpace(description), txtSkipSentinel) {
		description = ""
	}

	date := msg.Date
	if date.IsZero() {
		date = time.Now()
	}

	if err := m.storage.AddExpense(ctx, msg.UserID, session.Category, session.Amount, description, date); err != nil {
		return err
	}

	m.sessions.Clear(msg.UserID)
	return m.sendMainMenu(msg.UserID, txtExpenseAdded)
}

func (m *Model) viewExpensesCommand(ctx context.Context, msg Message) error {
	expenses, err := m.storage.GetExpenses(ctx, msg.UserID, expensesPageSize, 0)
	if err != nil {
		return err
	}

	if len(expenses) == 0 {
		return m.sendMainMenu(msg.UserID, txtNoExpenses)
	}

	var sb strings.Builder
	sb.WriteString("📋 Recent Expenses:\n\n")
	for _, expense := range expenses {
		description := ""
		if expense.Description != "" {
			description = " - " + expense.Description
		}
		sb.WriteString(fmt.Sprintf("•ID: %d\n %s %s (%s)%s\n  %s\n\n",
			expense.ID,
			categoryEmoji(expense.Category),
			formatUSD(expense.Amount),
			expense.Category,
			description,
			expense.Date.Format("2006-01-02 15:04:05"),
		))
	}

	monthSpend, err := m.storage.GetMonthlySpending(ctx, msg.UserID, time.Now())
	if err != nil {
		return err
	}
	sb.WriteString(fmt.Sprintf("💰 Spent this month: %s", formatUSD(monthSpend)))

	return m.tgClient.ShowReplyButtons(sb.String(), deleteButtons(), msg.UserID)
}

func (m *Model) deleteExpenseCommand(ctx context.Context, msg Message) error {
	m.sessions.Set(msg.UserID, Session{State: StateDeletingExpense})
	return m.tgClient.ShowReplyButtons(txtEnterExpenseID, cancelButtons(), msg.UserID)
}

// Удаление одной попыткой: сессия завершается независимо от результата.
func (m *Model) deleteExpenseByID(ctx context.Context, msg Message) error {
	defer m.sessions.Clear(msg.UserID)

	expenseID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil {
		return m.sendMainMenu(msg.UserID, txtInvalidExpenseID)
	}

	deleted, err := m.storage.DeleteExpense(ctx, msg.UserID, expenseID)
	if err != nil {
		return err
	}

	if deleted {
		return m.sendMainMenu(msg.UserID, fmt.Sprintf("✅ Expense ID %d deleted.", expenseID))
	}
	return m.sendMainMenu(msg.UserID, fmt.Sprintf("❌ No expense found with ID %d.", expenseID))
}

// Сумма должна быть положительным конечным числом.
func parsePositiveNumber(text string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, false
	}
	return value, true
}
