package server

import (
	"bytes"
	"context"
	"errors"
	"image"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Fepozopo/lunaratelier/pkg/adjust"
	"github.com/Fepozopo/lunaratelier/pkg/imagesrc"
	"github.com/Fepozopo/lunaratelier/pkg/stdimg"
)

// ExportFilename is the attachment name of exported renderings.
const ExportFilename = "lunar-edit.png"

type pipelineRequest struct {
	Settings *settingsInput `json:"settings"`
	Preset   string         `json:"preset"`
}

type imageRequest struct {
	ImageData string `json:"imageData"`
	URL       string `json:"url"`
	pipelineRequest
}

func (in imageRequest) source() string {
	if in.ImageData != "" {
		return in.ImageData
	}
	return in.URL
}

// resolve returns the parameters a request asks for. A preset replaces the
// settings wholesale.
func (s *Server) resolve(in pipelineRequest) (adjust.Parameters, bool) {
	if name := strings.TrimSpace(in.Preset); name != "" {
		p, ok := s.catalog.Lookup(name)
		return p.Settings, ok
	}
	return in.Settings.params(), true
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"presets": s.catalog.All()})
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	var in pipelineRequest
	if !s.decodeOrReject(w, r, &in) {
		return
	}
	p, ok := s.resolve(in)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown preset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": p, "pipeline": adjust.Compile(p)})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	var in imageRequest
	if !s.decodeOrReject(w, r, &in) {
		return
	}
	img, ok := s.loadImage(r.Context(), w, in.source())
	if !ok {
		return
	}
	h, err := stdimg.SampleHistogram(img)
	if err != nil {
		s.imageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var in imageRequest
	if !s.decodeOrReject(w, r, &in) {
		return
	}
	p, ok := s.resolve(in.pipelineRequest)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown preset")
		return
	}
	img, ok := s.loadImage(r.Context(), w, in.source())
	if !ok {
		return
	}
	start := time.Now()
	out, err := stdimg.Render(img, adjust.Compile(p))
	if err != nil {
		s.imageError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := imagesrc.EncodePNG(&buf, out); err != nil {
		s.serverError(w, "Server error while exporting image", err)
		return
	}
	s.log.Debug("rendered export",
		zap.Int("width", out.Bounds().Dx()),
		zap.Int("height", out.Bounds().Dy()),
		zap.Duration("took", time.Since(start)),
	)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	photos := imagesrc.StockPhotos()
	writeJSON(w, http.StatusOK, map[string]any{"photos": photos, "count": len(photos)})
}

func (s *Server) handleStockImport(w http.ResponseWriter, r *http.Request) {
	var in struct {
		URL string `json:"url"`
	}
	if !s.decodeOrReject(w, r, &in) {
		return
	}
	if !isRemote(in.URL) {
		writeError(w, http.StatusBadRequest, "A photo URL is required")
		return
	}
	img, ok := s.loadImage(r.Context(), w, in.URL)
	if !ok {
		return
	}
	data, err := imagesrc.EncodeDataURL(img, "jpeg")
	if err != nil {
		s.serverError(w, "Server error while importing photo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"imageData": data})
}

// loadImage fetches a data or http(s) URL. Local paths are refused. On
// failure it answers the request itself and reports false.
func (s *Server) loadImage(ctx context.Context, w http.ResponseWriter, ref string) (image.Image, bool) {
	if ref == "" {
		writeError(w, http.StatusBadRequest, "Image data required")
		return nil, false
	}
	if !strings.HasPrefix(ref, "data:") && !isRemote(ref) {
		writeError(w, http.StatusBadRequest, "Image must be a data URL or an http(s) URL")
		return nil, false
	}
	img, err := s.loader.Load(ctx, ref)
	if err != nil {
		s.imageError(w, err)
		return nil, false
	}
	return img, true
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func (s *Server) imageError(w http.ResponseWriter, err error) {
	var (
		loadErr    *imagesrc.ImageLoadError
		invalidErr *stdimg.InvalidImageError
	)
	switch {
	case errors.Is(err, imagesrc.ErrBlockedAddress):
		s.log.Warn("image url refused", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Image URL is not allowed")
	case errors.Is(err, imagesrc.ErrTooManyPixels):
		writeError(w, http.StatusRequestEntityTooLarge, "Image dimensions too large")
	case errors.As(err, &loadErr):
		s.log.Warn("image load failed", zap.String("source", loadErr.Source), zap.Error(loadErr.Err))
		writeError(w, http.StatusUnprocessableEntity, "Could not load image, please try again")
	case errors.As(err, &invalidErr):
		writeError(w, http.StatusBadRequest, "Invalid image: "+invalidErr.Reason)
	default:
		s.serverError(w, "Server error while processing image", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	db := "Connected"
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Warn("database ping failed", zap.Error(err))
		db = "Disconnected"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "Server is running!",
		"database":  db,
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}
