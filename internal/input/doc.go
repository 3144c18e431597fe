// Package input describes key presses as they travel from a frontend to a
// session.
//
// Keys are written in Emacs notation: "a", "C-x", "M-down", "C-space".
// A binding may span several presses, such as "C-x C-s", which a session
// collects in a KeyBuffer until the sequence resolves.
package input
