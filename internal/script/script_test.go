package script

import (
	"context"
	"errors"
	"testing"
)

func TestHooksRunInNameOrder(t *testing.T) {
	h := NewHooks()
	var calls []string
	record := func(name string) Callable {
		return Func(func(_ context.Context, args ...any) ([]any, error) {
			calls = append(calls, name+":"+args[0].(string))
			return nil, nil
		})
	}

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := h.Add(HookFileOpen, name, record(name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.Run(context.Background(), HookFileOpen, "main.go"); err != nil {
		t.Fatal(err)
	}

	want := []string{"alpha:main.go", "mid:main.go", "zeta:main.go"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestHooksCollectErrors(t *testing.T) {
	h := NewHooks()
	boom := errors.New("boom")
	ran := false

	_ = h.Add(HookBufferSave, "a-fails", Func(func(context.Context, ...any) ([]any, error) {
		return nil, boom
	}))
	_ = h.Add(HookBufferSave, "b-runs", Func(func(context.Context, ...any) ([]any, error) {
		ran = true
		return nil, nil
	}))

	err := h.Run(context.Background(), HookBufferSave)
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
	var hookErr *HookError
	if !errors.As(err, &hookErr) || hookErr.Name != "a-fails" || hookErr.Hook != HookBufferSave {
		t.Errorf("HookError = %+v", hookErr)
	}
	if !ran {
		t.Error("second procedure did not run after the first failed")
	}
}

func TestHooksUnknownPoint(t *testing.T) {
	h := NewHooks()
	noop := Func(func(context.Context, ...any) ([]any, error) { return nil, nil })
	if err := h.Add("no-such-hook", "x", noop); !errors.Is(err, ErrUnknownHook) {
		t.Errorf("Add() error = %v", err)
	}
	if err := h.Run(context.Background(), "no-such-hook"); !errors.Is(err, ErrUnknownHook) {
		t.Errorf("Run() error = %v", err)
	}
}

func TestHooksReplaceAndRemove(t *testing.T) {
	h := NewHooks()
	count := 0
	inc := func(n int) Callable {
		return Func(func(context.Context, ...any) ([]any, error) {
			count += n
			return nil, nil
		})
	}

	_ = h.Add(HookKey, "p", inc(1))
	_ = h.Add(HookKey, "p", inc(10))
	_ = h.Run(context.Background(), HookKey)
	if count != 10 {
		t.Errorf("count = %d, want replaced procedure only", count)
	}

	if !h.Remove(HookKey, "p") || h.Remove(HookKey, "p") {
		t.Error("Remove() should report presence")
	}
	if len(h.Names(HookKey)) != 0 {
		t.Errorf("Names() = %v", h.Names(HookKey))
	}
}
