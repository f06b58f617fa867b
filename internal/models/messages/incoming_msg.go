package messages

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shoksin/walletBot/internal/models/bottypes"
	"github.com/shoksin/walletBot/internal/models/portfolio"
	"github.com/shoksin/walletBot/internal/models/stats"
)

const (
	txtWelcomeBack    = "Welcome back!"
	txtRegisterPrompt = "Welcome! Please share your phone number to register."
	txtRegistered     = "Registration complete!"
	txtUnknownCommand = "Sorry, I don't know this command. Send /start to begin."
	txtCancelled      = "Action cancelled."
)

// Кнопки главного меню.
const (
	btnAddExpense    = "➕ Add Expense"
	btnViewExpenses  = "📋 View Expenses"
	btnDeleteExpense = "🗑️ Delete Expense"
	btnStatistics    = "📊 Statistics"
	btnInvestments   = "💰 Investments"
	btnViewPortfolio = "💼 View Portfolio"
	btnCancel        = "❌ Cancel"
	btnSharePhone    = "📞 Share Phone Number"
)

var categoryEmojis = map[string]string{
	"Food":          "🍔",
	"Transport":     "🚗",
	"Entertainment": "🎉",
	"Utilities":     "💡",
	"Other":         "🛒",
	"Shopping":      "🛍️",
	"Health":        "💊",
}

const fallbackEmoji = "📌"

func categoryEmoji(category string) string {
	if emoji, found := categoryEmojis[category]; found {
		return emoji
	}
	return fallbackEmoji
}

// MessagesSender Интерфейс для работы с сообщениями.
type MessagesSender interface {
	SendMessage(userID int64, text string) error
	ShowInlineButtons(text string, buttons []bottypes.TgRowButtons, userID int64) error
	ShowReplyButtons(text string, buttons []bottypes.TgRowButtons, userID int64) error
	RequestPhoneNumber(text string, buttonLabel string, userID int64) error
	SendPhoto(filePath string, caption string, userID int64) error
}

// UserDataStorage Интерфейс хранилища данных пользователей.
type UserDataStorage interface {
	UpsertUser(ctx context.Context, user bottypes.User) error
	GetUser(ctx context.Context, userID int64) (bottypes.User, bool, error)
	AddCategory(ctx context.Context, userID int64, name string) (bool, error)
	GetCategories(ctx context.Context, userID int64) ([]string, error)
	AddExpense(ctx context.Context, userID int64, category string, amount float64, description string, date time.Time) error
	GetExpenses(ctx context.Context, userID int64, limit, offset int) ([]bottypes.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, userID int64, expenseID int64) (bool, error)
	GetMonthlySpending(ctx context.Context, userID int64, now time.Time) (float64, error)
	AddInvestment(ctx context.Context, userID int64, asset string, quantity, purchasePrice float64, purchaseDate time.Time) error
	GetInvestments(ctx context.Context, userID int64) ([]bottypes.InvestmentLot, error)
}

// StatsProvider Интерфейс для отчётов о расходах.
type StatsProvider interface {
	WindowedStats(ctx context.Context, userID int64, kind stats.WindowKind) (stats.Report, error)
}

// PortfolioValuator Интерфейс оценки портфеля.
type PortfolioValuator interface {
	Valuate(ctx context.Context, userID int64) ([]portfolio.AssetSummary, error)
}

// ChartRenderer Интерфейс для отрисовки графиков отчётов.
type ChartRenderer interface {
	BarChart(totals []bottypes.CategoryTotal, title string) (string, error)
	PieChart(totals []bottypes.CategoryTotal, title string) (string, error)
	Cleanup(paths ...string)
}

// Message Входящее событие от транспорта: текст, нажатие inline-кнопки
// или переданный контакт.
type Message struct {
	UserID     int64
	Text       string
	Data       string // Значение нажатой inline-кнопки.
	IsCallback bool
	IsContact  bool
	Phone      string
	Username   string
	FirstName  string
	LastName   string
	Date       time.Time
}

// Model Модель бота (клиент, хранилище, сессии диалогов пользователей).
type Model struct {
	ctx      context.Context
	tgClient MessagesSender
	storage  UserDataStorage
	sessions *SessionStore
	stats    StatsProvider
	valuator PortfolioValuator
	charts   ChartRenderer

	// Шаги диалога одного пользователя выполняются строго по одному.
	// Замки не вычищаются вместе с сессией: снимать мьютекс, который может
	// держать конкурентный шаг, небезопасно, а их число ограничено числом
	// пользователей.
	lockMu    sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func New(
	ctx context.Context,
	tgClient MessagesSender,
	storage UserDataStorage,
	sessions *SessionStore,
	statsProvider StatsProvider,
	valuator PortfolioValuator,
	charts ChartRenderer,
) *Model {
	return &Model{
		ctx:       ctx,
		tgClient:  tgClient,
		storage:   storage,
		sessions:  sessions,
		stats:     statsProvider,
		valuator:  valuator,
		charts:    charts,
		userLocks: map[int64]*sync.Mutex{},
	}
}

func (m *Model) GetCtx() context.Context {
	return m.ctx
}

func (m *Model) SetCtx(ctx context.Context) {
	m.ctx = ctx
}

func (m *Model) userLock(userID int64) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()

	lock, found := m.userLocks[userID]
	if !found {
		lock = &sync.Mutex{}
		m.userLocks[userID] = lock
	}
	return lock
}

// IncomingMessage Обработка одного входящего события. Ошибки пользовательского
// ввода гасятся внутри текущего состояния диалога; наверх поднимаются только
// сбои хранилища.
func (m *Model) IncomingMessage(msg Message) error {
	lock := m.userLock(msg.UserID)
	lock.Lock()
	defer lock.Unlock()

	ctx := m.ctx

	if msg.IsContact {
		return m.registerUser(ctx, msg)
	}

	if msg.IsCallback {
		return m.dispatchCallback(ctx, msg)
	}

	switch msg.Text {
	case "/start":
		return m.startCommand(ctx, msg)
	case btnAddExpense:
		return m.addExpenseCommand(ctx, msg)
	case btnViewExpenses:
		return m.viewExpensesCommand(ctx, msg)
	case btnDeleteExpense:
		return m.deleteExpenseCommand(ctx, msg)
	case btnStatistics:
		return m.statsCommand(ctx, msg)
	case btnInvestments:
		return m.investmentsCommand(ctx, msg)
	case btnViewPortfolio:
		return m.viewPortfolioCommand(ctx, msg)
	}

	session := m.sessions.Get(msg.UserID)

	if msg.Text == btnCancel {
		// Внутри ввода имени категории отмена возвращает к выбору категории,
		// во всех остальных состояниях — полностью гасит сценарий.
		if session.State == StateAddingCustomCategory {
			return m.backToCategorySelection(ctx, msg)
		}
		m.sessions.Clear(msg.UserID)
		return m.sendMainMenu(msg.UserID, txtCancelled)
	}

	switch session.State {
	case StateAddingCustomCategory:
		return m.addCustomCategory(ctx, msg, session)
	case StateEnteringAmount:
		return m.enterAmount(ctx, msg, session)
	case StateEnteringDescription:
		return m.enterDescription(ctx, msg, session)
	case StateDeletingExpense:
		return m.deleteExpenseByID(ctx, msg)
	case StateInvestEnteringQuantity:
		return m.enterInvestmentQuantity(ctx, msg, session)
	case StateInvestEnteringPrice:
		return m.enterInvestmentPrice(ctx, msg, session)
	}

	return m.tgClient.SendMessage(msg.UserID, txtUnknownCommand)
}

// Маршрутизация нажатий inline-кнопок. Нажатия, не соответствующие текущему
// состоянию (устаревшие кнопки), молча игнорируются.
func (m *Model) dispatchCallback(ctx context.Context, msg Message) error {
	session := m.sessions.Get(msg.UserID)
	data := msg.Data

	switch {
	case strings.HasPrefix(data, "stats_period:"):
		return m.showStats(ctx, msg, strings.TrimPrefix(data, "stats_period:"))

	case data == "add_category" && session.State == StateSelectingCategory:
		return m.promptCustomCategory(ctx, msg)
	case strings.HasPrefix(data, "category:") && session.State == StateSelectingCategory:
		return m.selectCategory(ctx, msg, session, strings.TrimPrefix(data, "category:"))
	case strings.HasPrefix(data, "amount:") && session.State == StateSelectingAmount:
		return m.selectQuickAmount(ctx, msg, session, strings.TrimPrefix(data, "amount:"))
	case data == "custom_amount" && session.State == StateSelectingAmount:
		return m.promptCustomAmount(ctx, msg, session)
	case data == "back_to_category" && session.State == StateSelectingAmount:
		return m.backToCategorySelection(ctx, msg)

	case strings.HasPrefix(data, "inv_cat:") && session.State == StateInvestSelectingCategory:
		return m.selectInvestmentClass(ctx, msg, strings.TrimPrefix(data, "inv_cat:"))
	case strings.HasPrefix(data, "inv_asset:") && session.State == StateInvestSelectingAsset:
		return m.selectInvestmentAsset(ctx, msg, session, strings.TrimPrefix(data, "inv_asset:"))
	case data == "inv_back" && session.State == StateInvestSelectingAsset:
		return m.backToInvestmentClassSelection(ctx, msg)
	}

	return nil
}

// Регистрация: /start приветствует зарегистрированного, остальным предлагает
// поделиться номером телефона.
func (m *Model) startCommand(ctx context.Context, msg Message) error {
	_, registered, err := m.storage.GetUser(ctx, msg.UserID)
	if err != nil {
		return err
	}

	if registered {
		return m.sendMainMenu(msg.UserID, txtWelcomeBack)
	}
	return m.tgClient.RequestPhoneNumber(txtRegisterPrompt, btnSharePhone, msg.UserID)
}

// Повторная регистрация перезаписывает данные пользователя.
func (m *Model) registerUser(ctx context.Context, msg Message) error {
	err := m.storage.UpsertUser(ctx, bottypes.User{
		TelegramID: msg.UserID,
		Phone:      msg.Phone,
		Username:   msg.Username,
		FirstName:  msg.FirstName,
		LastName:   msg.LastName,
	})
	if err != nil {
		return err
	}
	return m.sendMainMenu(msg.UserID, txtRegistered)
}

func (m *Model) sendMainMenu(userID int64, text string) error {
	return m.tgClient.ShowReplyButtons(text, mainMenuButtons(), userID)
}

func mainMenuButtons() []bottypes.TgRowButtons {
	return []bottypes.TgRowButtons{
		{
			{DisplayName: btnAddExpense, Value: btnAddExpense},
			{DisplayName: btnViewExpenses, Value: btnViewExpenses},
		},
		{
			{DisplayName: btnStatistics, Value: btnStatistics},
			{DisplayName: btnInvestments, Value: btnInvestments},
			{DisplayName: btnViewPortfolio, Value: btnViewPortfolio},
		},
	}
}

func cancelButtons() []bottypes.TgRowButtons {
	return []bottypes.TgRowButtons{
		{{DisplayName: btnCancel, Value: btnCancel}},
	}
}

func deleteButtons() []bottypes.TgRowButtons {
	return []bottypes.TgRowButtons{
		{{DisplayName: btnDeleteExpense, Value: btnDeleteExpense}},
		{{DisplayName: btnCancel, Value: btnCancel}},
	}
}

// Форматирование сумм в долларах для сообщений.
func formatUSD(amount float64) string {
	return money.NewFromFloat(amount, money.USD).Display()
}

func fmtQuantity(quantity float64) string {
	return fmt.Sprintf("%.4g", quantity)
}
