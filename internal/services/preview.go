package services

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/avkrapivin/top-me-up-sub000/internal/models"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	PreviewWidth  = 1200
	PreviewHeight = 630
	previewMargin = 60.0
	previewBand   = 90.0
)

var categoryColors = map[models.Category][3]float64{
	models.CategoryMovies: {0.86, 0.27, 0.22},
	models.CategoryMusic:  {0.22, 0.55, 0.86},
	models.CategoryGames:  {0.30, 0.69, 0.31},
}

// PreviewRenderer draws the social preview card of a list.
type PreviewRenderer struct {
	font  *truetype.Font
	mu    sync.Mutex
	faces map[float64]font.Face
}

func NewPreviewRenderer() (*PreviewRenderer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &PreviewRenderer{font: f, faces: make(map[float64]font.Face)}, nil
}

func (r *PreviewRenderer) face(size float64) font.Face {
	if f, ok := r.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(r.font, &truetype.Options{Size: size})
	r.faces[size] = f
	return f
}

// Render returns the card as a PNG.
func (r *PreviewRenderer) Render(list *ListView) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dc := gg.NewContext(PreviewWidth, PreviewHeight)
	dc.SetRGB(0.98, 0.98, 0.97)
	dc.Clear()

	c, ok := categoryColors[list.Category]
	if !ok {
		c = [3]float64{0.4, 0.4, 0.4}
	}
	dc.SetRGB(c[0], c[1], c[2])
	dc.DrawRectangle(0, 0, PreviewWidth, previewBand)
	dc.Fill()

	dc.SetFontFace(r.face(34))
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("TopMeUp · "+strings.ToUpper(string(list.Category)), previewMargin, previewBand/2, 0, 0.35)

	dc.SetFontFace(r.face(52))
	dc.SetRGB(0.1, 0.1, 0.1)
	title := truncate(dc, list.Title, PreviewWidth-2*previewMargin)
	dc.DrawString(title, previewMargin, previewBand+80)

	dc.SetFontFace(r.face(26))
	colWidth := (PreviewWidth - 3*previewMargin) / 2
	for i, item := range list.Items {
		if i >= models.MaxListItems {
			break
		}
		col := float64(i / 5)
		row := float64(i % 5)
		x := previewMargin + col*(colWidth+previewMargin)
		y := previewBand + 150 + row*58

		line := fmt.Sprintf("%d. %s", item.Rank, item.Title)
		if item.Year > 0 {
			line += fmt.Sprintf(" (%d)", item.Year)
		}
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawString(truncate(dc, line, colWidth), x, y)
	}

	if list.Author != nil {
		dc.SetFontFace(r.face(24))
		dc.SetRGB(0.45, 0.45, 0.45)
		dc.DrawStringAnchored("by "+list.Author.DisplayName, PreviewWidth-previewMargin, PreviewHeight-40, 1, 0)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncate shortens s with an ellipsis until it fits width in the current face.
func truncate(dc *gg.Context, s string, width float64) string {
	if w, _ := dc.MeasureString(s); w <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "…"
		if w, _ := dc.MeasureString(candidate); w <= width {
			return candidate
		}
	}
	return ""
}
