package messages

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoksin/walletBot/internal/helpers/dbutils"
	"github.com/shoksin/walletBot/internal/models/bottypes"
	"github.com/shoksin/walletBot/internal/models/db"
	"github.com/shoksin/walletBot/internal/models/portfolio"
	"github.com/shoksin/walletBot/internal/models/stats"
)

// Рекордер исходящих сообщений вместо телеграм-клиента.
type senderRecorder struct {
	texts  []string
	photos []string
}

func (s *senderRecorder) SendMessage(userID int64, text string) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *senderRecorder) ShowInlineButtons(text string, buttons []bottypes.TgRowButtons, userID int64) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *senderRecorder) ShowReplyButtons(text string, buttons []bottypes.TgRowButtons, userID int64) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *senderRecorder) RequestPhoneNumber(text string, buttonLabel string, userID int64) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *senderRecorder) SendPhoto(filePath string, caption string, userID int64) error {
	s.photos = append(s.photos, filePath)
	return nil
}

func (s *senderRecorder) lastText() string {
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

type stubOracle struct {
	prices map[string]float64
}

func (s *stubOracle) GetPrice(ctx context.Context, asset string) (float64, bool) {
	price, ok := s.prices[asset]
	return price, ok
}

type stubCharts struct {
	fail bool
}

func (s *stubCharts) BarChart(totals []bottypes.CategoryTotal, title string) (string, error) {
	if s.fail {
		return "", assert.AnError
	}
	return "bar.png", nil
}

func (s *stubCharts) PieChart(totals []bottypes.CategoryTotal, title string) (string, error) {
	if s.fail {
		return "", assert.AnError
	}
	return "pie.png", nil
}

func (s *stubCharts) Cleanup(paths ...string) {}

func newTestModel(t *testing.T) (*Model, *senderRecorder, *db.UserStorage) {
	t.Helper()

	conn, err := dbutils.NewDBConnect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.CreateTables(context.Background(), conn))

	storage := db.NewUserStorage(conn)
	sender := &senderRecorder{}
	oracle := &stubOracle{prices: map[string]float64{"BTC": 100}}

	model := New(
		context.Background(),
		sender,
		storage,
		NewSessionStore(),
		stats.NewAggregator(storage),
		portfolio.NewValuator(storage, oracle),
		&stubCharts{},
	)
	return model, sender, storage
}

func send(t *testing.T, model *Model, msg Message) {
	t.Helper()
	require.NoError(t, model.IncomingMessage(msg))
}

func TestExpenseFlowEndToEnd(t *testing.T) {
	model, sender, storage := newTestModel(t)
	date := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	send(t, model, Message{UserID: 1, Text: btnAddExpense})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "category:Food"})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "amount:10"})
	send(t, model, Message{UserID: 1, Text: "lunch", Date: date})

	expenses, err := storage.GetExpenses(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Food", expenses[0].Category)
	assert.InDelta(t, 10.0, expenses[0].Amount, 1e-9)
	assert.Equal(t, "lunch", expenses[0].Description)

	assert.Equal(t, StateIdle, model.sessions.Get(1).State, "session cleared after commit")
	assert.Equal(t, txtExpenseAdded, sender.lastText())
}

func TestExpenseFlowSkipDescription(t *testing.T) {
	model, _, storage := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnAddExpense})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "category:Food"})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "amount:5"})
	// Сентинель "skip" нечувствителен к регистру.
	send(t, model, Message{UserID: 1, Text: "SKIP", Date: time.Now()})

	expenses, err := storage.GetExpenses(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "", expenses[0].Description)
}

func TestInvalidAmountRepromptsKeepingState(t *testing.T) {
	model, sender, _ := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnAddExpense})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "category:Food"})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "custom_amount"})

	for _, bad := range []string{"abc", "-5", "0", "NaN", "Inf"} {
		send(t, model, Message{UserID: 1, Text: bad})

		session := model.sessions.Get(1)
		assert.Equal(t, StateEnteringAmount, session.State, "input %q must not change state", bad)
		assert.Equal(t, "Food", session.Category, "collected fields intact after %q", bad)
		assert.Equal(t, txtInvalidAmount, sender.lastText())
	}

	send(t, model, Message{UserID: 1, Text: "12.50"})
	assert.Equal(t, StateEnteringDescription, model.sessions.Get(1).State)
}

func TestCancelClearsSessionWithoutCommit(t *testing.T) {
	model, sender, storage := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnAddExpense})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "category:Food"})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "amount:10"})
	// Отмена на последнем шаге — ничего не записано.
	send(t, model, Message{UserID: 1, Text: btnCancel})

	assert.Equal(t, StateIdle, model.sessions.Get(1).State)
	assert.Equal(t, txtCancelled, sender.lastText())

	expenses, err := storage.GetExpenses(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestCustomCategoryDuplicateReprompts(t *testing.T) {
	model, sender, storage := newTestModel(t)

	_, err := storage.AddCategory(context.Background(), 1, "Books")
	require.NoError(t, err)

	send(t, model, Message{UserID: 1, Text: btnAddExpense})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "add_category"})
	send(t, model, Message{UserID: 1, Text: "Books"})

	// Дубликат: состояние не меняется, пользователю предложено другое имя.
	assert.Equal(t, StateAddingCustomCategory, model.sessions.Get(1).State)
	assert.Equal(t, txtCategoryExists, sender.lastText())

	send(t, model, Message{UserID: 1, Text: "Games"})
	session := model.sessions.Get(1)
	assert.Equal(t, StateSelectingAmount, session.State)
	assert.Equal(t, "Games", session.Category)

	names, err := storage.GetCategories(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Books", "Games"}, names)
}

func TestCustomCategoryEmptyNameReprompts(t *testing.T) {
	model, sender, _ := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnAddExpense})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "add_category"})
	send(t, model, Message{UserID: 1, Text: "   "})

	assert.Equal(t, StateAddingCustomCategory, model.sessions.Get(1).State)
	assert.Equal(t, txtEmptyCategoryName, sender.lastText())
}

func TestCustomCategoryCancelReturnsToSelection(t *testing.T) {
	model, sender, _ := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnAddExpense})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "add_category"})
	send(t, model, Message{UserID: 1, Text: btnCancel})

	assert.Equal(t, StateSelectingCategory, model.sessions.Get(1).State)
	assert.Equal(t, txtSelectCategory, sender.lastText())
}

func TestViewExpensesShowsMonthlyTotal(t *testing.T) {
	model, sender, storage := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnViewExpenses})
	assert.Equal(t, txtNoExpenses, sender.lastText())

	require.NoError(t, storage.AddExpense(context.Background(), 1, "Food", 10, "lunch", time.Now().UTC()))

	send(t, model, Message{UserID: 1, Text: btnViewExpenses})
	text := sender.lastText()
	assert.Contains(t, text, "•ID:")
	assert.Contains(t, text, "lunch")
	assert.Contains(t, text, "Spent this month: $10.00")
}

func TestDeleteExpenseSingleShot(t *testing.T) {
	model, sender, storage := newTestModel(t)

	require.NoError(t, storage.AddExpense(context.Background(), 1, "Food", 10, "", time.Now().UTC()))
	expenses, err := storage.GetExpenses(context.Background(), 1, 1, 0)
	require.NoError(t, err)
	expenseID := expenses[0].ID

	send(t, model, Message{UserID: 1, Text: btnDeleteExpense})
	send(t, model, Message{UserID: 1, Text: "not a number"})

	// Одна попытка: сессия закрывается даже при невалидном вводе.
	assert.Equal(t, StateIdle, model.sessions.Get(1).State)
	assert.Equal(t, txtInvalidExpenseID, sender.lastText())

	send(t, model, Message{UserID: 1, Text: btnDeleteExpense})
	send(t, model, Message{UserID: 1, Text: "999"})
	assert.Contains(t, sender.lastText(), "No expense found")

	send(t, model, Message{UserID: 1, Text: btnDeleteExpense})
	send(t, model, Message{UserID: 1, Text: strconv.FormatInt(expenseID, 10)})
	assert.Contains(t, sender.lastText(), "deleted")

	remaining, err := storage.GetExpenses(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestInvestmentFlowEndToEnd(t *testing.T) {
	model, sender, storage := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnInvestments})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "inv_cat:crypto"})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "inv_asset:BTC"})

	// Невалидное количество не прерывает сценарий.
	send(t, model, Message{UserID: 1, Text: "lots"})
	session := model.sessions.Get(1)
	assert.Equal(t, StateInvestEnteringQuantity, session.State)
	assert.Equal(t, "BTC", session.Asset)
	assert.Equal(t, txtInvalidQuantity, sender.lastText())

	send(t, model, Message{UserID: 1, Text: "0.5"})
	send(t, model, Message{UserID: 1, Text: "60000"})

	lots, err := storage.GetInvestments(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, bottypes.InvestmentLot{Asset: "BTC", Quantity: 0.5, PurchasePrice: 60000}, lots[0])
	assert.Equal(t, StateIdle, model.sessions.Get(1).State)
}

func TestInvestmentBackNavigation(t *testing.T) {
	model, sender, _ := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnInvestments})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "inv_cat:stocks"})
	assert.Equal(t, StateInvestSelectingAsset, model.sessions.Get(1).State)

	send(t, model, Message{UserID: 1, IsCallback: true, Data: "inv_back"})
	assert.Equal(t, StateInvestSelectingCategory, model.sessions.Get(1).State)
	assert.Equal(t, txtSelectAssetClass, sender.lastText())
}

func TestNewWizardOverwritesPriorSession(t *testing.T) {
	model, _, _ := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnAddExpense})
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "category:Food"})

	// Запуск второго сценария вытесняет первый.
	send(t, model, Message{UserID: 1, Text: btnInvestments})
	session := model.sessions.Get(1)
	assert.Equal(t, StateInvestSelectingCategory, session.State)
	assert.Empty(t, session.Category)
}

func TestStaleCallbackIgnored(t *testing.T) {
	model, sender, storage := newTestModel(t)

	// Нажатие кнопки суммы без активного сценария не делает ничего.
	send(t, model, Message{UserID: 1, IsCallback: true, Data: "amount:10"})
	assert.Empty(t, sender.texts)

	expenses, err := storage.GetExpenses(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestRegistrationFlow(t *testing.T) {
	model, sender, storage := newTestModel(t)

	send(t, model, Message{UserID: 7, Text: "/start"})
	assert.Equal(t, txtRegisterPrompt, sender.lastText())

	send(t, model, Message{
		UserID:    7,
		IsContact: true,
		Phone:     "+123",
		Username:  "ann",
		FirstName: "Ann",
		LastName:  "Lee",
	})
	assert.Equal(t, txtRegistered, sender.lastText())

	user, found, err := storage.GetUser(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "+123", user.Phone)

	send(t, model, Message{UserID: 7, Text: "/start"})
	assert.Equal(t, txtWelcomeBack, sender.lastText())
}

func TestViewPortfolio(t *testing.T) {
	model, sender, storage := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: btnViewPortfolio})
	assert.Equal(t, txtEmptyPortfolio, sender.lastText())

	now := time.Now().UTC()
	require.NoError(t, storage.AddInvestment(context.Background(), 1, "BTC", 2, 40, now))
	require.NoError(t, storage.AddInvestment(context.Background(), 1, "XYZ", 1, 10, now.Add(time.Second)))

	send(t, model, Message{UserID: 1, Text: btnViewPortfolio})
	text := sender.lastText()
	assert.Contains(t, text, "*BTC* — 2 units")
	assert.Contains(t, text, "Gain: +$120.00 (+150.0%)")
	// Для неизвестного оракулу актива текущая цена недоступна.
	assert.Contains(t, text, "Current: N/A")
}

func TestStatsFlow(t *testing.T) {
	model, sender, storage := newTestModel(t)

	send(t, model, Message{UserID: 1, IsCallback: true, Data: "stats_period:week"})
	assert.Contains(t, sender.lastText(), "No expenses found")

	now := time.Now().UTC()
	require.NoError(t, storage.AddExpense(context.Background(), 1, "Food", 30, "", now.Add(-time.Hour)))
	require.NoError(t, storage.AddExpense(context.Background(), 1, "Transport", 70, "", now.Add(-2*time.Hour)))

	send(t, model, Message{UserID: 1, IsCallback: true, Data: "stats_period:week"})
	require.Len(t, sender.photos, 2, "bar and pie charts sent")

	summary := sender.texts[len(sender.texts)-1]
	assert.Contains(t, summary, "Total Spend: $100.00")
	assert.Contains(t, summary, "Transport: $70.00")
}

func TestUnknownCommand(t *testing.T) {
	model, sender, _ := newTestModel(t)

	send(t, model, Message{UserID: 1, Text: "what can you do?"})
	assert.Equal(t, txtUnknownCommand, sender.lastText())
}
