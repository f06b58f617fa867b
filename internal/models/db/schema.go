package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shoksin/walletBot/internal/helpers/dbutils"
)

// Схема хранилища: пользователи, категории, расходы, инвестиции.
// categories.name уникально в пределах владельца.
var createTableQueries = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id INTEGER PRIMARY KEY,
		phone TEXT,
		username TEXT,
		first_name TEXT,
		last_name TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		UNIQUE (user_id, name),
		FOREIGN KEY (user_id) REFERENCES users (telegram_id)
	);`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		category TEXT NOT NULL,
		amount REAL,
		description TEXT,
		date TIMESTAMP NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users (telegram_id)
	);`,
	`CREATE TABLE IF NOT EXISTS investments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		asset TEXT NOT NULL,
		quantity REAL NOT NULL,
		purchase_price REAL NOT NULL,
		purchase_date TIMESTAMP NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users (telegram_id)
	);`,
}

// CreateTables Создание таблиц, если их ещё нет. Вся схема создаётся в одной
// транзакции: либо целиком, либо никак.
func CreateTables(ctx context.Context, db *sqlx.DB) error {
	return dbutils.RunTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, query := range createTableQueries {
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return fmt.Errorf("create table: %w", err)
			}
		}
		return nil
	})
}
