package database

import (
	"context"
	"encoding/json"
	"fmt"

	"condoflow/internal/model"
)

// Poll options, comments and the per-user like and vote maps live in JSON
// columns; they are always read and written with the post.
const postColumns = `id, type, author_id, author_name, author_role, author_avatar, title, content, image,
	pinned, urgent, likes, poll_options, comments, liked_by, voted_by, created_at`

func scanPost(row scanner) (model.Post, error) {
	var (
		p                                 model.Post
		options, comments, liked, votedBy string
	)
	err := row.Scan(&p.ID, &p.Type, &p.Author.ID, &p.Author.Name, &p.Author.Role, &p.Author.Avatar, &p.Title, &p.Content,
		&p.Image, &p.Pinned, &p.Urgent, &p.Likes, &options, &comments, &liked, &votedBy, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	for _, col := range []struct {
		raw string
		dst any
	}{
		{options, &p.PollOptions},
		{comments, &p.Comments},
		{liked, &p.LikedBy},
		{votedBy, &p.VotedBy},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return p, fmt.Errorf("decode post %d: %w", p.ID, err)
		}
	}
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	return p, nil
}

func postJSON(p *model.Post) (options, comments, liked, votedBy string, err error) {
	encode := func(v any, empty string) string {
		if err != nil {
			return ""
		}
		var b []byte
		b, err = json.Marshal(v)
		if string(b) == "null" {
			return empty
		}
		return string(b)
	}
	options = encode(p.PollOptions, "[]")
	comments = encode(p.Comments, "[]")
	liked = encode(p.LikedBy, "{}")
	votedBy = encode(p.VotedBy, "{}")
	return options, comments, liked, votedBy, err
}

func (db *DB) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+postColumns+" FROM posts ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	out := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (db *DB) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	p, err := scanPost(db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (db *DB) CreatePost(ctx context.Context, p *model.Post) error {
	options, comments, liked, votedBy, err := postJSON(p)
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	res, err := db.ExecContext(ctx, `INSERT INTO posts
		(type, author_id, author_name, author_role, author_avatar, title, content, image, pinned, urgent, likes,
		 poll_options, comments, liked_by, voted_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Type, p.Author.ID, p.Author.Name, p.Author.Role, p.Author.Avatar, p.Title, p.Content, p.Image, p.Pinned, p.Urgent, p.Likes,
		options, comments, liked, votedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (db *DB) UpdatePost(ctx context.Context, p *model.Post) error {
	options, comments, liked, votedBy, err := postJSON(p)
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	return db.execOne(ctx, `UPDATE posts SET
		type = ?, author_name = ?, author_role = ?, author_avatar = ?, title = ?, content = ?, image = ?,
		pinned = ?, urgent = ?, likes = ?, poll_options = ?, comments = ?, liked_by = ?, voted_by = ?
		WHERE id = ?`,
		p.Type, p.Author.Name, p.Author.Role, p.Author.Avatar, p.Title, p.Content, p.Image,
		p.Pinned, p.Urgent, p.Likes, options, comments, liked, votedBy, p.ID)
}

func (db *DB) DeletePost(ctx context.Context, id int64) error {
	return db.execOne(ctx, "DELETE FROM posts WHERE id = ?", id)
}

// Notifications

func (db *DB) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, title, message, type, is_read, audience, recipient, created_at
		FROM notifications ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Type, &n.Read, &n.Audience, &n.Recipient, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (db *DB) CreateNotification(ctx context.Context, n *model.Notification) error {
	res, err := db.ExecContext(ctx, `INSERT INTO notifications (title, message, type, is_read, audience, recipient, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.Title, n.Message, n.Type, n.Read, n.Audience, n.Recipient, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	n.ID, err = res.LastInsertId()
	return err
}

func (db *DB) MarkNotificationRead(ctx context.Context, id int64) error {
	return db.execOne(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ?", id)
}
