package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/Fepozopo/lunaratelier/pkg/adjust"
	"github.com/Fepozopo/lunaratelier/pkg/store"
)

// settingsInput distinguishes absent fields from explicit zeros.
type settingsInput struct {
	Brightness  *float64 `json:"brightness"`
	Contrast    *float64 `json:"contrast"`
	Saturate    *float64 `json:"saturate"`
	Blur        *float64 `json:"blur"`
	Hue         *float64 `json:"hue"`
	Temperature *float64 `json:"temperature"`
}

// params fills absent fields with neutral values and clamps the rest.
func (in *settingsInput) params() adjust.Parameters {
	p := adjust.Neutral()
	if in == nil {
		return p
	}
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Brightness, in.Brightness)
	set(&p.Contrast, in.Contrast)
	set(&p.Saturation, in.Saturate)
	set(&p.BlurRadius, in.Blur)
	set(&p.HueRotation, in.Hue)
	set(&p.Temperature, in.Temperature)
	return p.Clamp()
}

type saveEditRequest struct {
	ImageData  string         `json:"imageData"`
	Settings   *settingsInput `json:"settings"`
	PresetName string         `json:"presetName"`
	AlbumID    string         `json:"albumId"`
}

type savedEdit struct {
	ID         string    `json:"id"`
	PresetName string    `json:"presetName"`
	CreatedAt  time.Time `json:"createdAt"`
}

type editsResponse struct {
	Edits []store.Edit `json:"edits"`
	Count int          `json:"count"`
}

func (s *Server) handleSaveEdit(w http.ResponseWriter, r *http.Request) {
	var in saveEditRequest
	if !s.decodeOrReject(w, r, &in) {
		return
	}
	if in.ImageData == "" {
		writeError(w, http.StatusBadRequest, "Image data required")
		return
	}
	e, err := s.store.SaveEdit(r.Context(), store.NewEdit{
		UserID:     userID(r),
		AlbumID:    in.AlbumID,
		ImageData:  in.ImageData,
		PresetName: in.PresetName,
		Settings:   in.Settings.params(),
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Album not found")
		return
	}
	if err != nil {
		s.serverError(w, "Server error while saving edit", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Edit saved successfully",
		"edit":    savedEdit{ID: e.ID, PresetName: e.PresetName, CreatedAt: e.CreatedAt},
	})
}

func (s *Server) handleListEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := s.store.ListEdits(r.Context(), userID(r))
	if err != nil {
		s.serverError(w, "Server error while fetching edits", err)
		return
	}
	writeJSON(w, http.StatusOK, editsResponse{Edits: edits, Count: len(edits)})
}

func (s *Server) handleDeleteEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.DeleteEdit(r.Context(), userID(r), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Edit not found or unauthorized")
		return
	}
	if err != nil {
		s.serverError(w, "Server error while deleting edit", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Edit deleted successfully", "deletedId": id})
}

type albumRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type albumCount struct {
	Edits int `json:"edits"`
}

type albumView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	Count       albumCount `json:"_count"`
}

func viewAlbum(a store.Album, _ int) albumView {
	return albumView{ID: a.ID, Name: a.Name, Description: a.Description, CreatedAt: a.CreatedAt, Count: albumCount{Edits: a.EditCount}}
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.store.ListAlbums(r.Context(), userID(r))
	if err != nil {
		s.serverError(w, "Server error while fetching albums", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"albums": lo.Map(albums, viewAlbum), "count": len(albums)})
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var in albumRequest
	if !s.decodeOrReject(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "Album name required")
		return
	}
	a, err := s.store.CreateAlbum(r.Context(), userID(r), in.Name, in.Description)
	if err != nil {
		s.serverError(w, "Server error while creating album", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Album created successfully", "album": viewAlbum(a, 0)})
}

func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	var in albumRequest
	if !s.decodeOrReject(w, r, &in) {
		return
	}
	a, err := s.store.UpdateAlbum(r.Context(), userID(r), chi.URLParam(r, "id"), in.Name, in.Description)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Album not found or unauthorized")
		return
	}
	if err != nil {
		s.serverError(w, "Server error while updating album", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Album updated successfully", "album": viewAlbum(a, 0)})
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.DeleteAlbum(r.Context(), userID(r), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Album not found or unauthorized")
		return
	}
	if err != nil {
		s.serverError(w, "Server error while deleting album", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Album deleted successfully", "deletedId": id})
}

func (s *Server) handleListAlbumEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := s.store.ListAlbumEdits(r.Context(), userID(r), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Album not found or unauthorized")
		return
	}
	if err != nil {
		s.serverError(w, "Server error while fetching edits", err)
		return
	}
	writeJSON(w, http.StatusOK, editsResponse{Edits: edits, Count: len(edits)})
}
