package database

import (
	"context"
	"fmt"

	"condoflow/internal/model"
)

const transactionColumns = "id, description, category, amount, date, type, status, entity, receipt_url"

func scanTransaction(row scanner) (model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(&t.ID, &t.Description, &t.Category, &t.Amount, &t.Date, &t.Type, &t.Status, &t.Entity, &t.ReceiptURL)
	return t, err
}

// ListTransactions returns the newest entries first.
func (db *DB) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+transactionColumns+" FROM transactions ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]model.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (db *DB) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	t, err := scanTransaction(db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (db *DB) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	res, err := db.ExecContext(ctx, `INSERT INTO transactions
		(description, category, amount, date, type, status, entity, receipt_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Description, t.Category, t.Amount, t.Date, t.Type, t.Status, t.Entity, t.ReceiptURL)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (db *DB) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	return db.execOne(ctx, `UPDATE transactions SET
		description = ?, category = ?, amount = ?, date = ?, type = ?, status = ?, entity = ?, receipt_url = ?
		WHERE id = ?`,
		t.Description, t.Category, t.Amount, t.Date, t.Type, t.Status, t.Entity, t.ReceiptURL, t.ID)
}

func (db *DB) DeleteTransaction(ctx context.Context, id int64) error {
	return db.execOne(ctx, "DELETE FROM transactions WHERE id = ?", id)
}

func (db *DB) ChartSeries(ctx context.Context) ([]model.ChartPoint, error) {
	rows, err := db.QueryContext(ctx, "SELECT name, revenue, expense FROM chart_points ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query chart: %w", err)
	}
	defer rows.Close()

	out := make([]model.ChartPoint, 0, 12)
	for rows.Next() {
		var p model.ChartPoint
		if err := rows.Scan(&p.Name, &p.Revenue, &p.Expense); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
