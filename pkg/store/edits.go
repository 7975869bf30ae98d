package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Fepozopo/lunaratelier/pkg/adjust"
)

// DefaultPresetName labels edits saved without a preset.
const DefaultPresetName = "Custom"

// Edit is a saved rendering together with the parameters that produced it.
type Edit struct {
	ID         string            `json:"id"`
	UserID     string            `json:"-"`
	AlbumID    *string           `json:"albumId"`
	ImageData  string            `json:"imageData"`
	PresetName string            `json:"presetName"`
	Settings   adjust.Parameters `json:"settings"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// NewEdit is the input to SaveEdit.
type NewEdit struct {
	UserID     string
	AlbumID    string
	ImageData  string
	PresetName string
	Settings   adjust.Parameters
}

// SaveEdit stores a new edit. An empty preset name becomes
// DefaultPresetName. A non-empty AlbumID must name an album owned by the
// same user, otherwise ErrNotFound is returned.
func (s *Store) SaveEdit(ctx context.Context, in NewEdit) (Edit, error) {
	if in.ImageData == "" {
		return Edit{}, fmt.Errorf("image data is empty")
	}
	e := Edit{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		ImageData:  in.ImageData,
		PresetName: strings.TrimSpace(in.PresetName),
		Settings:   in.Settings,
		CreatedAt:  s.now().UTC(),
	}
	if e.PresetName == "" {
		e.PresetName = DefaultPresetName
	}
	if in.AlbumID != "" {
		if _, err := s.album(ctx, in.UserID, in.AlbumID); err != nil {
			return Edit{}, err
		}
		id := in.AlbumID
		e.AlbumID = &id
	}

	settings, err := json.Marshal(e.Settings)
	if err != nil {
		return Edit{}, fmt.Errorf("encode settings: %w", err)
	}
	blob, err := compress([]byte(e.ImageData))
	if err != nil {
		return Edit{}, fmt.Errorf("compress image: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO edits (id, user_id, album_id, image_data, preset_name, settings_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.AlbumID, blob, e.PresetName, string(settings), toUnix(e.CreatedAt))
	if err != nil {
		return Edit{}, fmt.Errorf("insert edit: %w", err)
	}
	return e, nil
}

// ListEdits returns the user's edits, newest first.
func (s *Store) ListEdits(ctx context.Context, userID string) ([]Edit, error) {
	return s.queryEdits(ctx,
		`SELECT id, user_id, album_id, image_data, preset_name, settings_json, created_at
		 FROM edits WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
}

// ListAlbumEdits returns the edits filed under one of the user's albums.
func (s *Store) ListAlbumEdits(ctx context.Context, userID, albumID string) ([]Edit, error) {
	if _, err := s.album(ctx, userID, albumID); err != nil {
		return nil, err
	}
	return s.queryEdits(ctx,
		`SELECT id, user_id, album_id, image_data, preset_name, settings_json, created_at
		 FROM edits WHERE user_id = ? AND album_id = ? ORDER BY created_at DESC, rowid DESC`, userID, albumID)
}

func (s *Store) queryEdits(ctx context.Context, query string, args ...any) ([]Edit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	edits := []Edit{}
	for rows.Next() {
		var (
			e        Edit
			albumID  *string
			blob     []byte
			settings string
			ts       int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &albumID, &blob, &e.PresetName, &settings, &ts); err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		data, err := decompress(blob)
		if err != nil {
			return nil, fmt.Errorf("decompress edit %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(settings), &e.Settings); err != nil {
			return nil, fmt.Errorf("decode settings of edit %s: %w", e.ID, err)
		}
		e.AlbumID = albumID
		e.ImageData = string(data)
		e.CreatedAt = fromUnix(ts)
		edits = append(edits, e)
	}
	return edits, rows.Err()
}

// DeleteEdit removes one of the user's edits. ErrNotFound covers both a
// missing edit and one owned by somebody else.
func (s *Store) DeleteEdit(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM edits WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete edit: %w", err)
	}
	return expectOne(res)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectOne(res rowsAffected) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
