package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shoksin/walletBot/internal/helpers/dbutils"
	"github.com/shoksin/walletBot/internal/helpers/timeutils"
	"github.com/shoksin/walletBot/internal/models/bottypes"
)

type expenseRowDB struct {
	ID          int64          `db:"id"`
	UserID      int64          `db:"user_id"`
	Category    string         `db:"category"`
	Amount      float64        `db:"amount"`
	Description sql.NullString `db:"description"`
	Date        time.Time      `db:"date"`
}

type categoryTotalDB struct {
	Category string  `db:"category"`
	Total    float64 `db:"total"`
}

// AddCategory Добавление пользовательской категории.
// Возвращает false, если категория с таким именем у владельца уже есть
// (ожидаемый исход, не ошибка).
func (storage *UserStorage) AddCategory(ctx context.Context, userID int64, name string) (bool, error) {
	const sqlString = `
		INSERT OR IGNORE INTO categories (user_id, name)
		VALUES (?, ?);`

	res, err := dbutils.Exec(ctx, storage.db, sqlString, userID, name)
	if err != nil {
		return false, err
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return inserted > 0, nil
}

// GetCategories Список пользовательских категорий владельца.
// Встроенные категории хранилище не знает — их добавляет вызывающий код.
func (storage *UserStorage) GetCategories(ctx context.Context, userID int64) ([]string, error) {
	const sqlString = `SELECT name FROM categories WHERE user_id = ?;`

	var names []string
	if err := dbutils.Select(ctx, storage.db, &names, sqlString, userID); err != nil {
		return nil, err
	}
	return names, nil
}

// AddExpense Добавление записи о расходе. Валидность суммы проверяет диалоговый движок.
func (storage *UserStorage) AddExpense(ctx context.Context, userID int64, category string, amount float64, description string, date time.Time) error {
	const sqlString = `
		INSERT INTO expenses (user_id, category, amount, description, date)
		VALUES (?, ?, ?, ?, ?);`

	desc := sql.NullString{String: description, Valid: description != ""}
	if _, err := dbutils.Exec(ctx, storage.db, sqlString, userID, category, amount, desc, date); err != nil {
		return err
	}
	return nil
}

// GetExpenses Последние расходы владельца (новые первыми), с пагинацией.
// Строки без суммы не возвращаются.
func (storage *UserStorage) GetExpenses(ctx context.Context, userID int64, limit, offset int) ([]bottypes.ExpenseRecord, error) {
	const sqlString = `
		SELECT id, user_id, category, amount, description, date
		FROM expenses
		WHERE user_id = ? AND amount IS NOT NULL
		ORDER BY date DESC
		LIMIT ? OFFSET ?;`

	var rows []expenseRowDB
	if err := dbutils.Select(ctx, storage.db, &rows, sqlString, userID, limit, offset); err != nil {
		return nil, err
	}

	records := make([]bottypes.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, bottypes.ExpenseRecord{
			ID:          row.ID,
			UserID:      row.UserID,
			Category:    row.Category,
			Amount:      row.Amount,
			Description: row.Description.String,
			Date:        row.Date,
		})
	}
	return records, nil
}

// DeleteExpense Удаление расхода по id в пределах владельца.
// Возвращает false, если запись не найдена или принадлежит другому пользователю.
func (storage *UserStorage) DeleteExpense(ctx context.Context, userID int64, expenseID int64) (bool, error) {
	const sqlString = `DELETE FROM expenses WHERE user_id = ? AND id = ?;`

	res, err := dbutils.Exec(ctx, storage.db, sqlString, userID, expenseID)
	if err != nil {
		return false, err
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// GetSpendingStats Суммы расходов по категориям за период [start, end],
// по убыванию суммы.
func (storage *UserStorage) GetSpendingStats(ctx context.Context, userID int64, start, end time.Time) ([]bottypes.CategoryTotal, error) {
	const sqlString = `
		SELECT category, SUM(amount) AS total
		FROM expenses
		WHERE user_id = ? AND amount IS NOT NULL AND date BETWEEN ? AND ?
		GROUP BY category
		ORDER BY total DESC;`

	var rows []categoryTotalDB
	if err := dbutils.Select(ctx, storage.db, &rows, sqlString, userID, start, end); err != nil {
		return nil, err
	}

	totals := make([]bottypes.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, bottypes.CategoryTotal{Category: row.Category, Total: row.Total})
	}
	return totals, nil
}

// GetMonthlySpending Сумма расходов владельца с начала текущего месяца.
func (storage *UserStorage) GetMonthlySpending(ctx context.Context, userID int64, now time.Time) (float64, error) {
	const sqlString = `
		SELECT COALESCE(SUM(amount), 0.0) AS total
		FROM expenses
		WHERE user_id = ? AND amount IS NOT NULL AND date BETWEEN ? AND ?;`

	res, err := dbutils.GetMap(ctx, storage.db, sqlString, userID, timeutils.BeginOfMonth(now), now)
	if err != nil {
		return 0, err
	}

	total, ok := res["total"].(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected total type %T", res["total"])
	}
	return total, nil
}
