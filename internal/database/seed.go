package database

import (
	"context"
	"fmt"

	"condoflow/internal/repository"
)

// SeedIfEmpty loads seed when the database holds no areas yet. It reports
// whether the seed was applied.
func (db *DB) SeedIfEmpty(ctx context.Context, seed repository.Seed) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM areas").Scan(&count); err != nil {
		return false, fmt.Errorf("count areas: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	for _, a := range seed.Areas {
		if _, err := tx.ExecContext(ctx, `INSERT INTO areas (id, name, icon, capacity, is_active, opens_at, closes_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, a.ID, a.Name, a.Icon, a.Capacity, a.Active, a.OpensAt, a.ClosesAt); err != nil {
			return false, fmt.Errorf("seed area %s: %w", a.ID, err)
		}
	}
	for _, r := range seed.Reservations {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reservations (`+reservationColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Area, r.ResidentName, r.Unit, r.OwnerID, r.Date, r.Start, r.End, r.Guests,
			r.Status, r.Notes, r.Image, r.CreatedAt, r.UpdatedAt); err != nil {
			return false, fmt.Errorf("seed reservation %d: %w", r.ID, err)
		}
	}
	for i := range seed.Units {
		u := &seed.Units[i]
		args := append([]any{u.ID}, unitArgs(u)...)
		if _, err := tx.ExecContext(ctx, "INSERT INTO units ("+unitColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", args...); err != nil {
			return false, fmt.Errorf("seed unit %s: %w", u.ID, err)
		}
	}
	for _, t := range seed.Transactions {
		if _, err := tx.ExecContext(ctx, "INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			t.ID, t.Description, t.Category, t.Amount, t.Date, t.Type, t.Status, t.Entity, t.ReceiptURL); err != nil {
			return false, fmt.Errorf("seed transaction %d: %w", t.ID, err)
		}
	}
	for i, p := range seed.Chart {
		if _, err := tx.ExecContext(ctx, "INSERT INTO chart_points (position, name, revenue, expense) VALUES (?, ?, ?, ?)",
			i, p.Name, p.Revenue, p.Expense); err != nil {
			return false, fmt.Errorf("seed chart: %w", err)
		}
	}
	for _, t := range seed.Tickets {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tickets ("+ticketColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			t.ID, t.Title, t.Description, t.Category, t.Requester, t.Date, t.Priority, t.Status,
			t.Location, t.AssignedTo, t.ImageURL, t.UpdatedAt); err != nil {
			return false, fmt.Errorf("seed ticket %d: %w", t.ID, err)
		}
	}
	for i := range seed.Posts {
		p := &seed.Posts[i]
		options, comments, liked, votedBy, err := postJSON(p)
		if err != nil {
			return false, err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO posts ("+postColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.Type, p.Author.ID, p.Author.Name, p.Author.Role, p.Author.Avatar, p.Title, p.Content, p.Image,
			p.Pinned, p.Urgent, p.Likes, options, comments, liked, votedBy, p.CreatedAt); err != nil {
			return false, fmt.Errorf("seed post %d: %w", p.ID, err)
		}
	}
	for _, n := range seed.Notifications {
		if _, err := tx.ExecContext(ctx, `INSERT INTO notifications (id, title, message, type, is_read, audience, recipient, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.Title, n.Message, n.Type, n.Read, n.Audience, n.Recipient, n.CreatedAt); err != nil {
			return false, fmt.Errorf("seed notification %d: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	db.logger.Info().
		Int("areas", len(seed.Areas)).
		Int("reservations", len(seed.Reservations)).
		Int("units", len(seed.Units)).
		Msg("Database seeded")
	return true, nil
}
