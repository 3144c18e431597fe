package styled

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
)

// Theme maps palette entries to colours. Each frontend connection keeps its
// own Theme, filled from the session's ColorDefs.
type Theme struct {
	palette map[ColorType]ColorValue
}

// NewTheme returns an empty theme. Entries without a value draw with the
// terminal's default colour.
func NewTheme() *Theme {
	return &Theme{palette: make(map[ColorType]ColorValue)}
}

// DefaultPalette is the palette sessions send when the configuration names
// no colours.
var DefaultPalette = map[string]string{
	"Base":          "#1e1e2e",
	"SecondaryBase": "#181825",
	"TertiaryBase":  "#11111b",
	"Surface0":      "#313244",
	"Surface1":      "#45475a",
	"Surface2":      "#585b70",
	"Overlay0":      "#6c7086",
	"Overlay1":      "#7f849c",
	"Overlay2":      "#9399b2",
	"Text":          "#cdd6f4",
	"Subtext0":      "#a6adc8",
	"Subtext1":      "#bac2de",
	"Accent":        "#cba6f7",
	"Link":          "#89b4fa",
	"Success":       "#a6e3a1",
	"Warning":       "#f9e2af",
	"Error":         "#f38ba8",
	"Tags":          "#f5c2e7",
	"Selection":     "#585b70",
	"Cursor":        "#f5e0dc",
	"Red":           "#f38ba8",
	"Green":         "#a6e3a1",
	"Yellow":        "#f9e2af",
	"Orange":        "#fab387",
	"Blue":          "#89b4fa",
	"Magenta":       "#f5c2e7",
	"Purple":        "#cba6f7",
	"Cyan":          "#94e2d5",
	"White":         "#ffffff",
	"Gray":          "#6c7086",
	"Black":         "#000000",
}

// ParsePalette converts palette names and hex strings to ColorDefs, sorted
// by palette entry.
func ParsePalette(palette map[string]string) ([]ColorDef, error) {
	defs := make([]ColorDef, 0, len(palette))
	for name, hex := range palette {
		c, err := ParseColorType(name)
		if err != nil {
			return nil, err
		}
		v, err := ParseColor(hex)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		defs = append(defs, ColorDef{Color: c, Value: v})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Color < defs[j].Color })
	return defs, nil
}

// Set binds c to v.
func (t *Theme) Set(c ColorType, v ColorValue) {
	t.palette[c] = v
}

// Apply binds every definition in defs.
func (t *Theme) Apply(defs []ColorDef) {
	for _, d := range defs {
		t.Set(d.Color, d.Value)
	}
}

// Lookup returns the value bound to c.
func (t *Theme) Lookup(c ColorType) (ColorValue, bool) {
	v, ok := t.palette[c]
	return v, ok
}

// Color converts a palette entry to a tcell colour.
func (t *Theme) Color(c ColorType) tcell.Color {
	v, ok := t.palette[c]
	if !ok || c == ColorDefault {
		return tcell.ColorDefault
	}
	if v.Indexed {
		return tcell.PaletteColor(int(v.Index))
	}
	return tcell.NewRGBColor(int32(v.R), int32(v.G), int32(v.B))
}

// Style converts a run style to a tcell style.
func (t *Theme) Style(s Style) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(t.Color(s.Fg)).
		Background(t.Color(s.Bg))

	if s.Attr.Has(AttrBold) {
		style = style.Bold(true)
	}
	if s.Attr.Has(AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attr.Has(AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attr.Has(AttrStrikethrough) {
		style = style.StrikeThrough(true)
	}
	return style
}
