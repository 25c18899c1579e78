package render

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// TextItem is a line of HUD text. Position is in pixels from the top-left.
type TextItem struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

type glyphInfo struct {
	uvMin [2]float32
	uvMax [2]float32
	size  [2]float32
	off   [2]float32
	adv   float32
}

const atlasSize = 512

// TextAtlas is a single-channel glyph atlas of printable ASCII.
type TextAtlas struct {
	Image  *image.Alpha
	glyphs map[rune]glyphInfo
	face   font.Face
}

// NewTextAtlas rasterizes the Go regular font. An empty ttf uses the
// built-in font.
func NewTextAtlas(ttf []byte, size float64) (*TextAtlas, error) {
	if len(ttf) == 0 {
		ttf = goregular.TTF
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize))
	glyphs := make(map[rune]glyphInfo)

	x, y := 2, 2
	rowHeight := 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()
		if x+w >= atlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= atlasSize {
			break
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)
		glyphs[r] = glyphInfo{
			uvMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			uvMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			size:  [2]float32{float32(w), float32(h)},
			off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			adv:   float32(adv) / 64.0,
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &TextAtlas{Image: atlas, glyphs: glyphs, face: face}, nil
}

func (ta *TextAtlas) HasGlyph(r rune) bool {
	_, ok := ta.glyphs[r]
	return ok
}

// Vertices lays out items as two triangles per glyph in clip space.
func (ta *TextAtlas) Vertices(items []TextItem, screenW, screenH int) []TextVertex {
	if screenW <= 0 || screenH <= 0 {
		return nil
	}
	vertices := make([]TextVertex, 0, len(items)*6)
	sw, sh := float32(screenW), float32(screenH)
	metrics := ta.face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	for _, item := range items {
		scale := item.Scale
		if scale == 0 {
			scale = 1
		}
		startX := item.Position[0]
		posX := startX
		posY := item.Position[1] + ascent*scale

		for _, r := range item.Text {
			if r == '\n' {
				posX = startX
				posY += lineHeight * scale
				continue
			}
			g, ok := ta.glyphs[r]
			if !ok {
				continue
			}

			x0 := (posX+g.off[0]*scale)/sw*2 - 1
			y0 := 1 - (posY+g.off[1]*scale)/sh*2
			x1 := (posX+(g.off[0]+g.size[0])*scale)/sw*2 - 1
			y1 := 1 - (posY+(g.off[1]+g.size[1])*scale)/sh*2

			c := item.Color
			vertices = append(vertices,
				TextVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.uvMin[0], g.uvMin[1]}, Color: c},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: c},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: c},
				TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.uvMax[0], g.uvMin[1]}, Color: c},
				TextVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.uvMax[0], g.uvMax[1]}, Color: c},
				TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.uvMin[0], g.uvMax[1]}, Color: c},
			)
			posX += g.adv * scale
		}
	}
	return vertices
}

// Measure returns the width and height of text in pixels.
func (ta *TextAtlas) Measure(text string, scale float32) (float32, float32) {
	if ta == nil {
		return 0, 0
	}
	lineHeight := float32(ta.face.Metrics().Height.Ceil())

	maxW, curW := float32(0), float32(0)
	lines := 1
	for _, r := range text {
		if r == '\n' {
			maxW = max(maxW, curW)
			curW = 0
			lines++
			continue
		}
		if g, ok := ta.glyphs[r]; ok {
			curW += g.adv * scale
		}
	}
	return max(maxW, curW), lineHeight * scale * float32(lines)
}
