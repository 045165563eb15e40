package database

import (
	"context"
	"fmt"
	"strings"

	"condoflow/internal/model"
	"condoflow/internal/repository"
)

const reservationColumns = `id, area, resident_name, unit, owner_id, date, start_time, end_time,
	guests, status, notes, image, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanReservation(row scanner) (model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(&r.ID, &r.Area, &r.ResidentName, &r.Unit, &r.OwnerID, &r.Date,
		&r.Start, &r.End, &r.Guests, &r.Status, &r.Notes, &r.Image, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (db *DB) ListReservations(ctx context.Context, filter repository.ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if filter.Area != "" {
		where = append(where, "area = ?")
		args = append(args, filter.Area)
	}
	if filter.Date != "" {
		where = append(where, "date = ?")
		args = append(args, filter.Date)
	}
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := "SELECT " + reservationColumns + " FROM reservations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, start_time, id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	row := db.QueryRowContext(ctx, "SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id)
	r, err := scanReservation(row)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (db *DB) CreateReservation(ctx context.Context, r *model.Reservation) error {
	res, err := db.ExecContext(ctx, `INSERT INTO reservations
		(area, resident_name, unit, owner_id, date, start_time, end_time, guests, status, notes, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Area, r.ResidentName, r.Unit, r.OwnerID, r.Date, r.Start, r.End, r.Guests,
		r.Status, r.Notes, r.Image, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	r.ID, err = res.LastInsertId()
	return err
}

func (db *DB) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	return db.execOne(ctx, `UPDATE reservations SET
		area = ?, resident_name = ?, unit = ?, owner_id = ?, date = ?, start_time = ?, end_time = ?,
		guests = ?, status = ?, notes = ?, image = ?, updated_at = ?
		WHERE id = ?`,
		r.Area, r.ResidentName, r.Unit, r.OwnerID, r.Date, r.Start, r.End,
		r.Guests, r.Status, r.Notes, r.Image, r.UpdatedAt, r.ID)
}

func (db *DB) DeleteReservation(ctx context.Context, id int64) error {
	return db.execOne(ctx, "DELETE FROM reservations WHERE id = ?", id)
}

// Areas

func (db *DB) ListAreas(ctx context.Context) ([]model.Area, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, icon, capacity, is_active, opens_at, closes_at FROM areas ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query areas: %w", err)
	}
	defer rows.Close()

	out := make([]model.Area, 0)
	for rows.Next() {
		var a model.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Icon, &a.Capacity, &a.Active, &a.OpensAt, &a.ClosesAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SyncAreas upserts areas by ID and deactivates the ones no longer listed.
func (db *DB) SyncAreas(ctx context.Context, areas []model.Area) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE areas SET is_active = 0, updated_at = CURRENT_TIMESTAMP"); err != nil {
		return fmt.Errorf("deactivate areas: %w", err)
	}
	for _, a := range areas {
		_, err := tx.ExecContext(ctx, `INSERT INTO areas (id, name, icon, capacity, is_active, opens_at, closes_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				icon = excluded.icon,
				capacity = excluded.capacity,
				is_active = excluded.is_active,
				opens_at = excluded.opens_at,
				closes_at = excluded.closes_at,
				updated_at = CURRENT_TIMESTAMP`,
			a.ID, a.Name, a.Icon, a.Capacity, a.Active, a.OpensAt, a.ClosesAt)
		if err != nil {
			return fmt.Errorf("upsert area %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}
