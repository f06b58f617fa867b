package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shoksin/walletBot/internal/helpers/dbutils"
	"github.com/shoksin/walletBot/internal/models/bottypes"
)

// UserStorage Хранилище данных пользователей (sqlite).
type UserStorage struct {
	db *sqlx.DB
}

func NewUserStorage(db *sqlx.DB) *UserStorage {
	return &UserStorage{db: db}
}

type userRowDB struct {
	TelegramID int64          `db:"telegram_id"`
	Phone      sql.NullString `db:"phone"`
	Username   sql.NullString `db:"username"`
	FirstName  sql.NullString `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
}

// UpsertUser Регистрация пользователя. Повторная регистрация перезаписывает данные.
func (storage *UserStorage) UpsertUser(ctx context.Context, user bottypes.User) error {
	const sqlString = `
		INSERT OR REPLACE INTO users (telegram_id, phone, username, first_name, last_name)
		VALUES (?, ?, ?, ?, ?);`

	if _, err := dbutils.Exec(ctx, storage.db, sqlString,
		user.TelegramID, user.Phone, user.Username, user.FirstName, user.LastName); err != nil {
		return err
	}
	return nil
}

// GetUser Поиск пользователя. Второй результат false, если пользователь не зарегистрирован.
func (storage *UserStorage) GetUser(ctx context.Context, userID int64) (bottypes.User, bool, error) {
	const sqlString = `
		SELECT telegram_id, phone, username, first_name, last_name
		FROM users
		WHERE telegram_id = ?;`

	var row userRowDB
	if err := dbutils.Get(ctx, storage.db, &row, sqlString, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bottypes.User{}, false, nil
		}
		return bottypes.User{}, false, err
	}

	return bottypes.User{
		TelegramID: row.TelegramID,
		Phone:      row.Phone.String,
		Username:   row.Username.String,
		FirstName:  row.FirstName.String,
		LastName:   row.LastName.String,
	}, true, nil
}
