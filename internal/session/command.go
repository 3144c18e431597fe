package session

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/koru-editor/koru/internal/input"
)

const commandPrompt = ": "

// command is a command-bar command. arg is the rest of the line, trimmed.
type command func(ctx context.Context, s *Session, arg string) error

var commands = map[string]command{
	"open":    func(ctx context.Context, s *Session, arg string) error { return s.openFile(ctx, arg) },
	"save":    func(ctx context.Context, s *Session, _ string) error { return s.save(ctx) },
	"save-as": func(ctx context.Context, s *Session, arg string) error { return s.saveAs(ctx, arg) },
	"close":   func(ctx context.Context, s *Session, arg string) error { return s.closeBuffer(ctx, arg) },
	"rename":  func(ctx context.Context, s *Session, arg string) error { return s.rename(ctx, arg) },
	"undo":    func(ctx context.Context, s *Session, _ string) error { return s.undo(ctx) },
	"redo":    func(ctx context.Context, s *Session, _ string) error { return s.redo(ctx) },
	"replace": func(ctx context.Context, s *Session, arg string) error { return s.replace(ctx, arg) },
	"buffer": func(ctx context.Context, s *Session, arg string) error {
		if arg == "" {
			s.message(ctx, strings.Join(s.BufferNames(), "  "))
			return nil
		}
		return s.focusBuffer(ctx, arg)
	},
	"redo-branch": func(ctx context.Context, s *Session, arg string) error {
		if arg == "" {
			return fmt.Errorf("%w: branch", ErrMissingArgument)
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("redo-branch: %w", err)
		}
		return s.redoBranch(ctx, n)
	},
	"branches": func(ctx context.Context, s *Session, _ string) error {
		n, err := s.redoBranches(ctx)
		if err != nil {
			return err
		}
		s.message(ctx, fmt.Sprintf("%d redo branches", n))
		return nil
	},
	"warnings": func(ctx context.Context, s *Session, _ string) error { return s.focusBuffer(ctx, WarningsBuffer) },
	"errors":   func(ctx context.Context, s *Session, _ string) error { return s.focusBuffer(ctx, ErrorsBuffer) },
	"lua": func(ctx context.Context, s *Session, arg string) error {
		if arg == "" {
			return fmt.Errorf("%w: code", ErrMissingArgument)
		}
		return s.lua.DoString(ctx, arg)
	},
	"mode": func(ctx context.Context, s *Session, arg string) error {
		if arg == "" {
			s.message(ctx, s.describeModes(ctx))
			return nil
		}
		return s.setMajorMode(ctx, arg)
	},
	"minor-mode": func(ctx context.Context, s *Session, arg string) error {
		if arg == "" {
			return fmt.Errorf("%w: mode name", ErrMissingArgument)
		}
		if s.disableMinorMode(ctx, arg) {
			return nil
		}
		return s.enableMinorMode(ctx, arg)
	},
	"session": func(ctx context.Context, s *Session, _ string) error {
		s.message(ctx, "session "+s.id.String())
		return nil
	},
	"quit": func(ctx context.Context, s *Session, _ string) error { return s.quit(ctx) },
}

// Commands returns the command-bar command names in sorted order.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// runCommand executes a command-bar line such as "open main.go". The
// focused buffer's major mode is searched before the global commands.
func (s *Session) runCommand(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	if name == "" {
		return nil
	}
	cmd, ok := s.focused(ctx).major.command(name)
	if !ok {
		cmd, ok = commands[name]
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	s.logger.Debugf("command %s", name)
	return cmd(ctx, s, strings.TrimSpace(arg))
}

// oneInt parses a command argument holding one integer.
func oneInt(arg string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: index", ErrMissingArgument)
	}
	return strconv.Atoi(arg)
}

// twoInts parses a command argument holding two integers separated by
// spaces, such as "3 10".
func twoInts(arg string) (int, int, error) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: line and column", ErrMissingArgument)
	}
	a, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// startCommand enters command-bar input.
func (s *Session) startCommand(ctx context.Context) error {
	line := commandPrompt
	s.command = &line
	s.message(ctx, line)
	return nil
}

// commandKey edits the command bar. Enter runs the line, Escape or C-g
// abandons it.
func (s *Session) commandKey(ctx context.Context, k input.KeyPress) {
	line := *s.command
	switch {
	case k.Key == input.KeyEnter:
		s.command = nil
		s.message(ctx, "")
		if err := s.runCommand(ctx, strings.TrimPrefix(line, commandPrompt)); err != nil {
			s.fail(ctx, err)
		}
		return
	case k.Key == input.KeyEscape || k == input.Char('g', input.ModCtrl):
		s.command = nil
		s.message(ctx, "")
		return
	case k.Key == input.KeyBackspace:
		if len(line) > len(commandPrompt) {
			_, size := utf8.DecodeLastRuneInString(line)
			line = line[:len(line)-size]
		}
	case k.IsPrintable():
		line += string(k.Rune)
	default:
		return
	}
	s.command = &line
	s.message(ctx, line)
}

// CommandLine returns the command-bar text and whether a command is being
// entered.
func (s *Session) CommandLine() (string, bool) {
	if s.command == nil {
		return "", false
	}
	return *s.command, true
}
