package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"condoflow/internal/model"
)

const unitColumns = `id, unit, block, resident_name, resident_since, resident_image, type,
	contact_phone, contact_email, owner, status`

func scanUnit(row scanner) (model.Unit, error) {
	var (
		u                  model.Unit
		name, since, image sql.NullString
		phone, email       sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Unit, &u.Block, &name, &since, &image, &u.Type, &phone, &email, &u.Owner, &u.Status); err != nil {
		return u, err
	}
	if name.Valid {
		u.Resident = &model.Resident{Name: name.String, Since: since.String, Image: image.String}
	}
	if email.Valid {
		u.Contact = &model.Contact{Phone: phone.String, Email: email.String}
	}
	return u, nil
}

func unitArgs(u *model.Unit) []any {
	var name, since, image, phone, email sql.NullString
	if u.Resident != nil {
		name = sql.NullString{String: u.Resident.Name, Valid: true}
		since = sql.NullString{String: u.Resident.Since, Valid: true}
		image = sql.NullString{String: u.Resident.Image, Valid: true}
	}
	if u.Contact != nil {
		phone = sql.NullString{String: u.Contact.Phone, Valid: true}
		email = sql.NullString{String: u.Contact.Email, Valid: true}
	}
	return []any{u.Unit, u.Block, name, since, image, u.Type, phone, email, u.Owner, u.Status}
}

func (db *DB) ListUnits(ctx context.Context) ([]model.Unit, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+unitColumns+" FROM units ORDER BY CAST(id AS INTEGER), id")
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	out := make([]model.Unit, 0)
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (db *DB) GetUnit(ctx context.Context, id string) (*model.Unit, error) {
	u, err := scanUnit(db.QueryRowContext(ctx, "SELECT "+unitColumns+" FROM units WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// CreateUnit assigns the next numeric ID.
func (db *DB) CreateUnit(ctx context.Context, u *model.Unit) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var last int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(CAST(id AS INTEGER)), 0) FROM units").Scan(&last); err != nil {
		return fmt.Errorf("next unit id: %w", err)
	}
	id := strconv.FormatInt(last+1, 10)

	args := append([]any{id}, unitArgs(u)...)
	if _, err := tx.ExecContext(ctx, "INSERT INTO units ("+unitColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", args...); err != nil {
		return fmt.Errorf("insert unit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (db *DB) UpdateUnit(ctx context.Context, u *model.Unit) error {
	args := append(unitArgs(u), u.ID)
	return db.execOne(ctx, `UPDATE units SET
		unit = ?, block = ?, resident_name = ?, resident_since = ?, resident_image = ?, type = ?,
		contact_phone = ?, contact_email = ?, owner = ?, status = ?
		WHERE id = ?`, args...)
}

func (db *DB) DeleteUnit(ctx context.Context, id string) error {
	return db.execOne(ctx, "DELETE FROM units WHERE id = ?", id)
}
