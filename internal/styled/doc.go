// Package styled is the rendering output a session hands to frontends.
//
// A File is a list of lines, each a list of runs. A run is either plain text
// or text with a foreground, background and attributes drawn from a named
// palette. Frontends map palette names to real colours through a Theme.
package styled
