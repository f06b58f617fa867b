package dbutils

// Хелпер-обёртка для функций подключения к БД (modernc.org/sqlite).

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// Драйвер modernc регистрируется под именем "sqlite"; sqlx о нём не знает.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewDBConnect Открывает соединение с sqlite и проверяет его.
// busy_timeout сериализует конкурентные записи разных пользователей.
func NewDBConnect(connString string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Одно соединение: sqlite сериализует записи сам, а ":memory:" на каждое
	// соединение пула даёт отдельную базу.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		return nil, fmt.Errorf("set pragma: %w", err)
	}

	return db, nil
}
