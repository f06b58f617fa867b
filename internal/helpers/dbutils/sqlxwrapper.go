// Package dbutils Хелпер-обёртка для выполнения запросов на базе sqlx и для функций подключения к БД (sqlite).
package dbutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Форматирование текстов ошибок.
func sqlErr(err error, query string, args ...any) error {
	return fmt.Errorf(`run query "%s" with args %+v: %w`, query, args, err)
}

// Exec Выполнение запросов с параметрами (неименованные, в виде ?).
func Exec(ctx context.Context, db sqlx.ExecerContext, query string, args ...any) (sql.Result, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return res, sqlErr(err, query, args...)
	}
	return res, nil
}

// Select Выборка нескольких строк по запросу с параметрами.
func Select(ctx context.Context, db sqlx.QueryerContext, dest any, query string, args ...any) error {
	if err := sqlx.SelectContext(ctx, db, dest, query, args...); err != nil {
		return sqlErr(err, query, args...)
	}
	return nil
}

// Get Выборка одной строки. Возвращает sql.ErrNoRows, если строка не найдена.
func Get(ctx context.Context, db sqlx.QueryerContext, dest any, query string, args ...any) error {
	if err := sqlx.GetContext(ctx, db, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return sqlErr(err, query, args...)
	}
	return nil
}

// GetMap Выборка одной строки в map (для агрегатов).
func GetMap(ctx context.Context, db sqlx.QueryerContext, query string, args ...any) (ret map[string]any, err error) {
	row := db.QueryRowxContext(ctx, query, args...)
	if row.Err() != nil {
		return nil, sqlErr(row.Err(), query, args...)
	}

	ret = map[string]any{}
	if err = row.MapScan(ret); err != nil {
		return nil, sqlErr(err, query, args...)
	}
	return ret, nil
}

// TxFunc Описание типа вложенной функции для выполнения в транзакции.
type TxFunc func(tx *sqlx.Tx) error

type TxRunner interface {
	BeginTxx(context.Context, *sql.TxOptions) (*sqlx.Tx, error)
}

func RunTx(ctx context.Context, db TxRunner, f TxFunc) (err error) {
	var tx *sqlx.Tx

	opts := &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	}

	// Запуск транзакции.
	tx, err = db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Откат или коммит транзакции при завершении функции.
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		} else {
			err = tx.Commit()
		}
	}()
	// Выполнение вложенной функции и возврат результата.
	return f(tx)
}
