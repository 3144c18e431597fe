package buffer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/koru-editor/koru/internal/engine/cursor"
)

// Canonicalize returns the absolute, symlink-free form of path. A path whose
// final element does not exist yet is resolved through its directory.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &PathError{Op: "canonicalize", Path: path, Err: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", &PathError{Op: "canonicalize", Path: path, Err: err}
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", &PathError{Op: "canonicalize", Path: path, Err: err}
	}
	return filepath.Join(dir, filepath.Base(abs)), nil
}

// Open reads path into a new buffer named by its canonical path.
func Open(path string, opts ...Option) (*TextBuffer, error) {
	canonical, err := Canonicalize(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(canonical)
	if err != nil {
		return nil, &PathError{Op: "open", Path: canonical, Err: err}
	}

	b := New(canonical, string(data), opts...)
	b.path = canonical
	b.disk = xxhash.Sum64String(b.text.String())
	return b, nil
}

// Save rewrites the backing file with the buffer's contents.
func (b *TextBuffer) Save() error {
	if b.path == "" {
		return ErrNoPath
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(b.path); err == nil {
		mode = info.Mode().Perm()
	}
	text := b.text.String()
	if err := os.WriteFile(b.path, []byte(text), mode); err != nil {
		return &PathError{Op: "save", Path: b.path, Err: err}
	}
	b.modified = false
	b.disk = xxhash.Sum64String(text)
	return nil
}

// SaveAs points the buffer at path, renames it after the canonical path and saves.
func (b *TextBuffer) SaveAs(path string) error {
	canonical, err := Canonicalize(path)
	if err != nil {
		return err
	}
	oldPath, oldName := b.path, b.name
	b.path = canonical
	b.name = canonical
	if err := b.Save(); err != nil {
		b.path, b.name = oldPath, oldName
		return err
	}
	return nil
}

// Reload replaces the contents with the backing file as one undo step, so
// the previous text stays reachable through Undo. The buffer is unmodified
// afterwards.
func (b *TextBuffer) Reload(cursors []cursor.Cursor) ([]cursor.Cursor, error) {
	if b.path == "" {
		return cursors, ErrNoPath
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		return cursors, &PathError{Op: "reload", Path: b.path, Err: err}
	}

	old, text := b.text.String(), normalize(string(data))
	b.disk = xxhash.Sum64String(text)
	if old == text {
		b.modified = false
		return cursors, nil
	}
	b.history.Replace(0, old, text)
	out := b.splice(change{start: 0, end: len(old), text: text, actor: -1}, cursors)
	b.modified = false
	return b.ClampCursors(out), nil
}

// ChangedOnDisk reports whether the backing file differs from what the
// buffer last read from or wrote to it.
func (b *TextBuffer) ChangedOnDisk() (bool, error) {
	if b.path == "" {
		return false, ErrNoPath
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		return false, &PathError{Op: "stat", Path: b.path, Err: err}
	}
	return xxhash.Sum64String(normalize(string(data))) != b.disk, nil
}
