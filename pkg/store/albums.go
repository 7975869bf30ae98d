package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Album groups a user's edits.
type Album struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	EditCount   int       `json:"-"`
}

// CreateAlbum creates an album for the user.
func (s *Store) CreateAlbum(ctx context.Context, userID, name, description string) (Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Album{}, fmt.Errorf("album name is empty")
	}
	a := Album{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO albums (id, user_id, name, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, a.Description, toUnix(a.CreatedAt))
	if err != nil {
		return Album{}, fmt.Errorf("insert album: %w", err)
	}
	return a, nil
}

// ListAlbums returns the user's albums, newest first, with edit counts.
func (s *Store) ListAlbums(ctx context.Context, userID string) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.user_id, a.name, a.description, a.created_at, COUNT(e.id)
		FROM albums a LEFT JOIN edits e ON e.album_id = a.id
		WHERE a.user_id = ?
		GROUP BY a.id
		ORDER BY a.created_at DESC, a.rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	albums := []Album{}
	for rows.Next() {
		var (
			a  Album
			ts int64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Description, &ts, &a.EditCount); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		a.CreatedAt = fromUnix(ts)
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

// UpdateAlbum renames an album and replaces its description. An empty name
// keeps the current one.
func (s *Store) UpdateAlbum(ctx context.Context, userID, id, name, description string) (Album, error) {
	a, err := s.album(ctx, userID, id)
	if err != nil {
		return Album{}, err
	}
	if n := strings.TrimSpace(name); n != "" {
		a.Name = n
	}
	a.Description = strings.TrimSpace(description)
	_, err = s.db.ExecContext(ctx,
		`UPDATE albums SET name = ?, description = ? WHERE id = ? AND user_id = ?`,
		a.Name, a.Description, id, userID)
	if err != nil {
		return Album{}, fmt.Errorf("update album: %w", err)
	}
	return a, nil
}

// DeleteAlbum removes an album. Its edits are kept and become unfiled.
func (s *Store) DeleteAlbum(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return expectOne(res)
}

func (s *Store) album(ctx context.Context, userID, id string) (Album, error) {
	var (
		a  Album
		ts int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, created_at FROM albums WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&a.ID, &a.UserID, &a.Name, &a.Description, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, ErrNotFound
		}
		return Album{}, fmt.Errorf("query album: %w", err)
	}
	a.CreatedAt = fromUnix(ts)
	return a, nil
}
