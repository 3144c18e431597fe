package input

import (
	"fmt"
	"strings"
)

// Key identifies a keyboard key. Character keys use KeyRune and carry the
// character in KeyPress.Rune.
type Key uint8

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// KeyRune is used for character keys.
	KeyRune

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var keyNames = map[Key]string{
	KeyEscape:    "escape",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyInsert:    "insert",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pageup",
	KeyPageDown:  "pagedown",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
}

// keyNameMap maps key names and their aliases to keys.
var keyNameMap = map[string]Key{
	"esc": KeyEscape,
	"ret": KeyEnter,
	"bs":  KeyBackspace,
	"del": KeyDelete,
	"ins": KeyInsert,
}

func init() {
	for k, name := range keyNames {
		keyNameMap[name] = k
	}
	for i := 0; i < 12; i++ {
		k := KeyF1 + Key(i)
		name := fmt.Sprintf("f%d", i+1)
		keyNames[k] = name
		keyNameMap[name] = k
	}
}

// String returns the key's name as used in bindings.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyRune:
		return "rune"
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsArrow reports whether k is an arrow key.
func (k Key) IsArrow() bool {
	return k >= KeyUp && k <= KeyRight
}

// KeyFromName returns the key for a name, ignoring case. Unknown names
// yield KeyNone.
func KeyFromName(name string) Key {
	if k, ok := keyNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return KeyNone
}

// Modifier is a set of modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModCtrl indicates the Control key, written "C-".
	ModCtrl Modifier = 1 << iota
	// ModAlt indicates the Alt or Meta key, written "M-".
	ModAlt
	// ModShift indicates the Shift key on non-character keys, written "S-".
	ModShift
)

// Has returns true if m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns m with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// String returns the Emacs prefix form, such as "C-M-".
func (m Modifier) String() string {
	var b strings.Builder
	if m.Has(ModCtrl) {
		b.WriteString("C-")
	}
	if m.Has(ModAlt) {
		b.WriteString("M-")
	}
	if m.Has(ModShift) {
		b.WriteString("S-")
	}
	return b.String()
}
