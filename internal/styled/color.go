package styled

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorType names a palette entry.
type ColorType uint8

// Palette entries.
const (
	ColorDefault ColorType = iota
	ColorBase
	ColorSecondaryBase
	ColorTertiaryBase
	ColorSurface0
	ColorSurface1
	ColorSurface2
	ColorOverlay0
	ColorOverlay1
	ColorOverlay2
	ColorText
	ColorSubtext0
	ColorSubtext1
	ColorAccent
	ColorLink
	ColorSuccess
	ColorWarning
	ColorError
	ColorTags
	ColorSelection
	ColorCursor
	ColorPink
	ColorRed
	ColorLime
	ColorGreen
	ColorLightYellow
	ColorYellow
	ColorOrange
	ColorBrown
	ColorLightBlue
	ColorBlue
	ColorLightMagenta
	ColorMagenta
	ColorLightPurple
	ColorPurple
	ColorLightCyan
	ColorCyan
	ColorWhite
	ColorLightGray
	ColorGray
	ColorBlack

	colorCount
)

var colorNames = [colorCount]string{
	"Default", "Base", "SecondaryBase", "TertiaryBase",
	"Surface0", "Surface1", "Surface2",
	"Overlay0", "Overlay1", "Overlay2",
	"Text", "Subtext0", "Subtext1",
	"Accent", "Link", "Success", "Warning", "Error", "Tags", "Selection", "Cursor",
	"Pink", "Red", "Lime", "Green", "LightYellow", "Yellow", "Orange", "Brown",
	"LightBlue", "Blue", "LightMagenta", "Magenta", "LightPurple", "Purple",
	"LightCyan", "Cyan", "White", "LightGray", "Gray", "Black",
}

// String returns the palette name.
func (c ColorType) String() string {
	if c < colorCount {
		return colorNames[c]
	}
	return fmt.Sprintf("ColorType(%d)", c)
}

// ParseColorType returns the palette entry called name.
func ParseColorType(name string) (ColorType, error) {
	for i, n := range colorNames {
		if n == name {
			return ColorType(i), nil
		}
	}
	return ColorDefault, fmt.Errorf("invalid color type %q", name)
}

// ColorTypes returns every palette entry except ColorDefault.
func ColorTypes() []ColorType {
	out := make([]ColorType, 0, colorCount-1)
	for c := ColorBase; c < colorCount; c++ {
		out = append(out, c)
	}
	return out
}

// ColorValue is an RGB colour or an ANSI palette index.
type ColorValue struct {
	R, G, B uint8
	// If Indexed is true, Index holds the ANSI colour and R, G, B are unused.
	Indexed bool
	Index   uint8
}

// RGB returns a true colour value.
func RGB(r, g, b uint8) ColorValue {
	return ColorValue{R: r, G: g, B: b}
}

// Ansi returns an indexed palette value.
func Ansi(index uint8) ColorValue {
	return ColorValue{Indexed: true, Index: index}
}

// ParseColor parses "#rrggbb" or "#rgb".
func ParseColor(hex string) (ColorValue, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ColorValue{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}

// Hex returns the value as "#rrggbb". Indexed values have no hex form and
// return "".
func (v ColorValue) Hex() string {
	if v.Indexed {
		return ""
	}
	return colorful.Color{R: float64(v.R) / 255, G: float64(v.G) / 255, B: float64(v.B) / 255}.Hex()
}

// ColorDef binds a palette entry to a value. Sessions send one per entry
// when a frontend connects.
type ColorDef struct {
	Color ColorType
	Value ColorValue
}
