package db

import (
	"context"
	"time"

	"github.com/shoksin/walletBot/internal/helpers/dbutils"
	"github.com/shoksin/walletBot/internal/models/bottypes"
)

type investmentRowDB struct {
	Asset         string  `db:"asset"`
	Quantity      float64 `db:"quantity"`
	PurchasePrice float64 `db:"purchase_price"`
}

// AddInvestment Добавление покупки актива. Записи только добавляются,
// редактирования и удаления нет.
func (storage *UserStorage) AddInvestment(ctx context.Context, userID int64, asset string, quantity, purchasePrice float64, purchaseDate time.Time) error {
	const sqlString = `
		INSERT INTO investments (user_id, asset, quantity, purchase_price, purchase_date)
		VALUES (?, ?, ?, ?, ?);`

	if _, err := dbutils.Exec(ctx, storage.db, sqlString, userID, asset, quantity, purchasePrice, purchaseDate); err != nil {
		return err
	}
	return nil
}

// GetInvestments Все покупки владельца, последние первыми.
func (storage *UserStorage) GetInvestments(ctx context.Context, userID int64) ([]bottypes.InvestmentLot, error) {
	const sqlString = `
		SELECT asset, quantity, purchase_price
		FROM investments
		WHERE user_id = ?
		ORDER BY purchase_date DESC;`

	var rows []investmentRowDB
	if err := dbutils.Select(ctx, storage.db, &rows, sqlString, userID); err != nil {
		return nil, err
	}

	lots := make([]bottypes.InvestmentLot, 0, len(rows))
	for _, row := range rows {
		lots = append(lots, bottypes.InvestmentLot{
			Asset:         row.Asset,
			Quantity:      row.Quantity,
			PurchasePrice: row.PurchasePrice,
		})
	}
	return lots, nil
}
