package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse errors.
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// KeyPress is a single key event.
type KeyPress struct {
	Key  Key
	Rune rune
	Mods Modifier
}

// Char returns the press of character r with mods.
func Char(r rune, mods Modifier) KeyPress {
	return KeyPress{Key: KeyRune, Rune: r, Mods: mods}
}

// Special returns the press of a non-character key with mods.
func Special(k Key, mods Modifier) KeyPress {
	return KeyPress{Key: k, Mods: mods}
}

// IsPrintable reports whether the press inserts its character.
func (k KeyPress) IsPrintable() bool {
	return k.Key == KeyRune && k.Mods&(ModCtrl|ModAlt) == 0 && unicode.IsPrint(k.Rune)
}

// String returns the Emacs notation, such as "C-x", "M-down" or "C-space".
func (k KeyPress) String() string {
	name := k.Key.String()
	if k.Key == KeyRune {
		switch k.Rune {
		case ' ':
			name = "space"
		default:
			name = string(k.Rune)
		}
	}
	return k.Mods.String() + name
}

// Parse parses a single key in Emacs notation.
func Parse(spec string) (KeyPress, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return KeyPress{}, ErrEmptySpec
	}

	var mods Modifier
	for len(spec) > 2 && spec[1] == '-' {
		switch spec[0] {
		case 'C':
			mods = mods.With(ModCtrl)
		case 'M', 'A':
			mods = mods.With(ModAlt)
		case 'S':
			mods = mods.With(ModShift)
		default:
			return KeyPress{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, spec[:2])
		}
		spec = spec[2:]
	}

	if utf8.RuneCountInString(spec) == 1 {
		r, _ := utf8.DecodeRuneInString(spec)
		return Char(r, mods), nil
	}
	if strings.EqualFold(spec, "space") || strings.EqualFold(spec, "spc") {
		return Char(' ', mods), nil
	}
	if k := KeyFromName(spec); k != KeyNone {
		return Special(k, mods), nil
	}
	return KeyPress{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, spec)
}

// ParseSequence parses space separated keys, such as "C-x C-s".
func ParseSequence(spec string) ([]KeyPress, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, ErrEmptySpec
	}
	keys := make([]KeyPress, len(fields))
	for i, f := range fields {
		k, err := Parse(f)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}

// SequenceString joins keys in Emacs notation.
func SequenceString(keys []KeyPress) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, " ")
}
