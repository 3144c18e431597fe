package lua

import "github.com/koru-editor/koru/internal/script"

// Host is the session surface scripts operate on. Edits act on the focused
// buffer at every cursor.
type Host interface {
	Insert(text string) error
	DeleteBack() error
	DeleteForward() error
	Move(direction string) error
	Undo() error
	Redo() error
	Replace(text string) error

	// Marks take a kind of "point", "line", "box" or "file".
	PlaceMark(kind string) error
	RemoveMark() error
	DeleteRegion() error

	// Cursor indices count from 0 in buffer order.
	AddCursor(line, column int) error
	RemoveCursor(index int) error
	ChangeMainCursor(index int) error
	CursorCount() int
	CursorPosition(index int) (line, column int, err error)

	Open(path string) error
	Save() error
	BufferName() string
	BufferText() string
	Cursor() (line, column int)

	Message(text string)
	Warn(text string)
	Command(line string) error

	Bind(keys string, fn script.Callable) error
	AddHook(hook, name string, fn script.Callable) error
	RemoveHook(hook, name string) bool

	MajorMode() string
	SetMajorMode(name string) error
	ModeBind(mode, keys string, fn script.Callable) error
	ModeCommand(mode, name string, fn script.Callable) error
	ModeAlias(mode, name, alias string) error
	DefineMinorMode(name string) error
	RemoveMinorMode(name string) bool
	EnableMinorMode(name string) error
	DisableMinorMode(name string) bool
	MinorModes() []string

	SessionID() string
}
