package database

import (
	"context"
	"fmt"

	"condoflow/internal/model"
)

const ticketColumns = `id, title, description, category, requester, date, priority, status,
	location, assigned_to, image_url, updated_at`

func scanTicket(row scanner) (model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Requester, &t.Date, &t.Priority,
		&t.Status, &t.Location, &t.AssignedTo, &t.ImageURL, &t.UpdatedAt)
	return t, err
}

func (db *DB) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+ticketColumns+" FROM tickets ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	out := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (db *DB) GetTicket(ctx context.Context, id int64) (*model.Ticket, error) {
	t, err := scanTicket(db.QueryRowContext(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (db *DB) CreateTicket(ctx context.Context, t *model.Ticket) error {
	res, err := db.ExecContext(ctx, `INSERT INTO tickets
		(title, description, category, requester, date, priority, status, location, assigned_to, image_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Category, t.Requester, t.Date, t.Priority, t.Status,
		t.Location, t.AssignedTo, t.ImageURL, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (db *DB) UpdateTicket(ctx context.Context, t *model.Ticket) error {
	return db.execOne(ctx, `UPDATE tickets SET
		title = ?, description = ?, category = ?, requester = ?, date = ?, priority = ?, status = ?,
		location = ?, assigned_to = ?, image_url = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Description, t.Category, t.Requester, t.Date, t.Priority, t.Status,
		t.Location, t.AssignedTo, t.ImageURL, t.UpdatedAt, t.ID)
}

func (db *DB) DeleteTicket(ctx context.Context, id int64) error {
	return db.execOne(ctx, "DELETE FROM tickets WHERE id = ?", id)
}
