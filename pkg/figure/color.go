package figure

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Color and colormap errors.
var (
	ErrUnknownColor    = errors.New("unknown color")
	ErrUnknownColormap = errors.New("unknown colormap")
)

// Colormap names accepted by heatmaps.
const (
	ColormapRdBu      = "RdBu"
	ColormapRdBuR     = "RdBu_r"
	ColormapCoolwarm  = "coolwarm"
	ColormapKindlmann = "kindlmann"
	ColormapBlackBody = "blackbody"
	ColormapHeat      = "heat"
)

// ParseColor resolves a CSS color name or a #rgb / #rrggbb hex string.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(name, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Hex formats c as #rrggbb.
func Hex(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)

	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// Palette samples n colors from a named colormap, low to high.
func Palette(name string, n int) (palette.Palette, error) {
	if n < 2 {
		n = 2
	}

	if strings.EqualFold(name, ColormapHeat) {
		return palette.Heat(n, 1), nil
	}

	cm, reversed, err := colorMap(name)
	if err != nil {
		return nil, err
	}

	cm.SetMin(0)
	cm.SetMax(1)
	cm.SetAlpha(1)

	colors := cm.Palette(n).Colors()
	if reversed {
		colors = slices.Clone(colors)
		slices.Reverse(colors)
	}

	return sampled(colors), nil
}

// sampled is a palette of precomputed colors.
type sampled []color.Color

func (s sampled) Colors() []color.Color { return s }

// PaletteHex is Palette formatted as hex strings.
func PaletteHex(name string, n int) ([]string, error) {
	p, err := Palette(name, n)
	if err != nil {
		return nil, err
	}

	colors := p.Colors()
	out := make([]string, len(colors))

	for i, c := range colors {
		out[i] = Hex(c)
	}

	return out, nil
}

// colorMap resolves name to a moreland map; reversed maps are sampled
// from their base and flipped.
func colorMap(name string) (cm palette.ColorMap, reversed bool, err error) {
	switch strings.ToLower(name) {
	case "rdbu":
		return moreland.SmoothBlueRed(), true, nil
	case "rdbu_r", ColormapCoolwarm:
		return moreland.SmoothBlueRed(), false, nil
	case ColormapKindlmann:
		return moreland.Kindlmann(), false, nil
	case ColormapBlackBody:
		return moreland.BlackBody(), false, nil
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownColormap, name)
	}
}
