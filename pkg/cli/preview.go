package cli

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Fepozopo/lunaratelier/pkg/imagesrc"
)

// Inline terminal previews for kitty-compatible terminals (kitty graphics
// protocol) and iTerm2-compatible ones (OSC 1337 inline files).
// PREVIEW_BACKEND=kitty|inline forces a protocol.

var errNoPreviewProtocol = errors.New("terminal does not support inline images")

type previewer struct {
	w     io.Writer
	log   *zap.Logger
	debug bool
	env   func(string) string
}

func newPreviewer(w io.Writer, log *zap.Logger, debug bool) *previewer {
	return &previewer{w: w, log: log, debug: debug, env: os.Getenv}
}

func (p *previewer) debugf(msg string, fields ...zap.Field) {
	if p.debug {
		p.log.Debug("preview: "+msg, fields...)
	}
}

func (p *previewer) isKitty() bool {
	if p.env("KITTY_WINDOW_ID") != "" {
		return true
	}
	// ghostty implements the kitty protocol
	term := strings.ToLower(p.env("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func (p *previewer) isInlineCapable() bool {
	switch p.env("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "vscode", "Tabby", "Hyper":
		return true
	}
	return p.env("ITERM_SESSION_ID") != "" || strings.Contains(strings.ToLower(p.env("TERM")), "wezterm")
}

// backend picks the protocol to use, or "" when none applies.
func (p *previewer) backend() string {
	switch b := strings.ToLower(p.env("PREVIEW_BACKEND")); b {
	case "kitty", "inline":
		return b
	case "":
	default:
		p.debugf("unknown PREVIEW_BACKEND", zap.String("value", b))
	}
	if p.isKitty() {
		return "kitty"
	}
	if p.isInlineCapable() {
		return "inline"
	}
	return ""
}

// Show encodes img as PNG and writes it to the terminal.
func (p *previewer) Show(img image.Image) error {
	if img == nil {
		return errors.New("nil image")
	}
	backend := p.backend()
	p.debugf("selected backend", zap.String("backend", backend))
	if backend == "" {
		return errNoPreviewProtocol
	}
	var buf bytes.Buffer
	if err := imagesrc.EncodePNG(&buf, img); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	size := computePreviewSize(img.Bounds().Dx(), img.Bounds().Dy())
	if backend == "kitty" {
		return p.sendKitty(buf.Bytes(), size)
	}
	return p.sendInline(buf.Bytes(), size)
}

// previewSize is the placement of a preview in terminal cells.
type previewSize struct {
	Cols, Rows int
	// approximate pixel extent of Cols x Rows
	PixelWidth, PixelHeight int
}

// computePreviewSize fits a w x h image into at most 80x40 cells, assuming
// 8x16 pixel cells, without scaling up.
func computePreviewSize(w, h int) previewSize {
	const (
		charW, charH     = 8, 16
		minCols, minRows = 6, 3
		maxCols, maxRows = 80, 40
	)
	if w <= 0 || h <= 0 {
		return previewSize{Cols: minCols, Rows: minRows, PixelWidth: minCols * charW, PixelHeight: minRows * charH}
	}
	scale := math.Min(1, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))
	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))
	cols = min(max(cols, minCols), maxCols)
	rows = min(max(rows, minRows), maxRows)
	return previewSize{Cols: cols, Rows: rows, PixelWidth: cols * charW, PixelHeight: rows * charH}
}

// sendKitty transmits PNG data in base64 chunks of at most 4096 bytes. The
// first chunk carries the placement, responses are suppressed with q=2.
func (p *previewer) sendKitty(data []byte, size previewSize) error {
	const chunkSize = 4096
	enc := base64.StdEncoding.EncodeToString(data)
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(p.w, seq); err != nil {
			return err
		}
	}
	return p.newlines(size.Rows)
}

func (p *previewer) sendInline(data []byte, size previewSize) error {
	seq := fmt.Sprintf("\x1b]1337;File=name=%s;inline=1;size=%d;width=%dpx;height=%dpx:%s\a",
		base64.StdEncoding.EncodeToString([]byte("preview.png")), len(data),
		size.PixelWidth, size.PixelHeight, base64.StdEncoding.EncodeToString(data))
	if _, err := io.WriteString(p.w, seq); err != nil {
		return err
	}
	return p.newlines(0)
}

// newlines moves the cursor below the image so following output is not
// drawn over it.
func (p *previewer) newlines(rows int) error {
	n := 1
	switch {
	case rows > 20:
		n = 4
	case rows > 6:
		n = 3
	case rows > 2:
		n = 2
	}
	_, err := io.WriteString(p.w, strings.Repeat("\n", n))
	return err
}
