package terminal

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/koru-editor/koru/internal/input"
)

var specialKeys = map[tcell.Key]input.Key{
	tcell.KeyEscape:     input.KeyEscape,
	tcell.KeyEnter:      input.KeyEnter,
	tcell.KeyTab:        input.KeyTab,
	tcell.KeyBacktab:    input.KeyTab,
	tcell.KeyBackspace:  input.KeyBackspace,
	tcell.KeyBackspace2: input.KeyBackspace,
	tcell.KeyDelete:     input.KeyDelete,
	tcell.KeyInsert:     input.KeyInsert,
	tcell.KeyHome:       input.KeyHome,
	tcell.KeyEnd:        input.KeyEnd,
	tcell.KeyPgUp:       input.KeyPageUp,
	tcell.KeyPgDn:       input.KeyPageDown,
	tcell.KeyUp:         input.KeyUp,
	tcell.KeyDown:       input.KeyDown,
	tcell.KeyLeft:       input.KeyLeft,
	tcell.KeyRight:      input.KeyRight,
	tcell.KeyF1:         input.KeyF1,
	tcell.KeyF2:         input.KeyF2,
	tcell.KeyF3:         input.KeyF3,
	tcell.KeyF4:         input.KeyF4,
	tcell.KeyF5:         input.KeyF5,
	tcell.KeyF6:         input.KeyF6,
	tcell.KeyF7:         input.KeyF7,
	tcell.KeyF8:         input.KeyF8,
	tcell.KeyF9:         input.KeyF9,
	tcell.KeyF10:        input.KeyF10,
	tcell.KeyF11:        input.KeyF11,
	tcell.KeyF12:        input.KeyF12,
}

// convertMods maps tcell modifiers to ours. Meta and Alt are both "M-".
func convertMods(m tcell.ModMask) input.Modifier {
	var mods input.Modifier
	if m&tcell.ModCtrl != 0 {
		mods |= input.ModCtrl
	}
	if m&(tcell.ModAlt|tcell.ModMeta) != 0 {
		mods |= input.ModAlt
	}
	if m&tcell.ModShift != 0 {
		mods |= input.ModShift
	}
	return mods
}

// convertKey turns a tcell key event into a key press. Control characters
// become the letter with ModCtrl, so Ctrl-X reads as "C-x". The boolean is
// false for keys the editor has no name for.
func convertKey(ev *tcell.EventKey) (input.KeyPress, bool) {
	mods := convertMods(ev.Modifiers())
	k := ev.Key()

	switch {
	case k == tcell.KeyRune:
		r := ev.Rune()
		// Shift is already in the character.
		mods &^= input.ModShift
		if mods.Has(input.ModCtrl) {
			r = unicode.ToLower(r)
		}
		return input.Char(r, mods), true

	case k == tcell.KeyCtrlSpace:
		return input.Char(' ', mods|input.ModCtrl), true
	}

	if special, ok := specialKeys[k]; ok {
		if k == tcell.KeyBacktab {
			mods |= input.ModShift
		}
		// Enter, Tab and Backspace share codes with Ctrl-M, Ctrl-I and Ctrl-H.
		if k == tcell.KeyEnter || k == tcell.KeyTab || k == tcell.KeyBackspace {
			mods &^= input.ModCtrl
		}
		return input.Special(special, mods), true
	}

	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return input.Char(rune('a'+(k-tcell.KeyCtrlA)), mods|input.ModCtrl), true
	}
	return input.KeyPress{}, false
}
