package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Strip is one rendered text line.
type Strip struct {
	// Image is as tall as the matrix and at least as wide.
	Image *image.RGBA
	// Text is the source line.
	Text string
}

// Width returns the strip width in pixels.
func (s Strip) Width() int {
	return s.Image.Bounds().Dx()
}

var hexColor = regexp.MustCompile(`#([0-9a-fA-F]{6})`)

// RenderText implements Codec.
//
// Lines are trimmed and blank lines skipped. Lines starting with '?' are
// directives: "?fg #RRGGBB" and "?bg #RRGGBB" set the colors of the lines
// that follow. Any other directive is an error.
func (c *ImageCodec) RenderText(data []byte) ([]Strip, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("codec: text is not valid UTF-8")
	}

	fg, bg := c.cfg.Foreground, c.cfg.Background
	var strips []Strip

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "?") {
			var err error
			switch {
			case strings.HasPrefix(line, "?fg"):
				fg, err = parseColor(line)
			case strings.HasPrefix(line, "?bg"):
				bg, err = parseColor(line)
			default:
				err = fmt.Errorf("codec: unknown directive %q", line)
			}
			if err != nil {
				return nil, err
			}
			continue
		}
		strips = append(strips, Strip{Image: c.renderLine(line, fg, bg), Text: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("codec: read text: %w", err)
	}
	if len(strips) == 0 {
		return nil, ErrNoLines
	}
	return strips, nil
}

// renderLine draws line with the 7x13 basic face and scales it up by the
// largest integer factor that keeps the glyphs within the matrix height.
func (c *ImageCodec) renderLine(line string, fg, bg color.RGBA) *image.RGBA {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	textWidth := d.MeasureString(line).Ceil()
	lineHeight := face.Metrics().Height.Ceil()

	small := image.NewRGBA(image.Rect(0, 0, textWidth, lineHeight))
	draw.Draw(small, small.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	d.Dst = small
	d.Src = &image.Uniform{C: fg}
	d.Dot = fixed.Point26_6{X: 0, Y: face.Metrics().Ascent}
	d.DrawString(line)

	scale := c.cfg.Height / lineHeight
	if scale < 1 {
		scale = 1
	}
	glyphs := resize.Resize(uint(textWidth*scale), uint(lineHeight*scale), small, resize.NearestNeighbor)

	width := glyphs.Bounds().Dx()
	if width < c.cfg.Width {
		width = c.cfg.Width
	}
	strip := image.NewRGBA(image.Rect(0, 0, width, c.cfg.Height))
	draw.Draw(strip, strip.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	top := (c.cfg.Height - glyphs.Bounds().Dy()) / 2
	if top < 0 {
		top = 0
	}
	dst := image.Rect(0, top, glyphs.Bounds().Dx(), top+glyphs.Bounds().Dy())
	draw.Draw(strip, dst, glyphs, glyphs.Bounds().Min, draw.Src)
	return strip
}

// ParseColor parses a #RRGGBB color.
func ParseColor(s string) (color.RGBA, error) {
	if len(s) != 7 || !hexColor.MatchString(s) {
		return color.RGBA{}, fmt.Errorf("codec: %q is not a #RRGGBB color", s)
	}
	return parseColor(s)
}

func parseColor(line string) (color.RGBA, error) {
	m := hexColor.FindStringSubmatch(line)
	if m == nil {
		return color.RGBA{}, fmt.Errorf("codec: directive %q has no #RRGGBB color", line)
	}
	v, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("codec: directive %q: %w", line, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
