package window

import (
	"errors"
	"fmt"
)

var (
	// ErrWindowCreation is returned when the platform window cannot be created.
	ErrWindowCreation = errors.New("window: create native window")

	// ErrContextCreation is returned when no rendering context could be
	// negotiated. No context is bound when it is returned.
	ErrContextCreation = errors.New("window: create rendering context")

	// ErrClassRegistration is returned when the process-wide window class or
	// display connection cannot be set up.
	ErrClassRegistration = errors.New("window: register window class")

	// ErrInvalidState is returned when an operation is attempted out of the
	// native window lifecycle order.
	ErrInvalidState = errors.New("window: invalid lifecycle state")
)

// ContextOptions selects the OpenGL context a native window negotiates.
type ContextOptions struct {
	Major int
	Minor int
	// Legacy requests a 1.x-style compatibility context instead of a
	// forward-compatible core profile.
	Legacy bool
}

// DefaultContext is a 4.6 core profile.
var DefaultContext = ContextOptions{Major: 4, Minor: 6}

func (o ContextOptions) String() string {
	if o.Legacy {
		return "legacy"
	}
	return fmt.Sprintf("%d.%d core", o.Major, o.Minor)
}

// State is the lifecycle position of a NativeWindow. Transitions only move
// forward.
type State int

const (
	StateUninitialized State = iota
	StateWindowCreated
	StateContextCreated
	StateRunning
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateWindowCreated:
		return "window-created"
	case StateContextCreated:
		return "context-created"
	case StateRunning:
		return "running"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// NativeWindow owns one platform window handle and at most one rendering
// context. It is the only adapter to the platform window system and is
// driven from a single goroutine locked to its OS thread.
type NativeWindow interface {
	// CreateContext negotiates a pixel format and creates the rendering
	// context. It is valid once, directly after window creation.
	CreateContext(opts ContextOptions) error

	// Destroy releases the context, the window and the process-wide
	// registration. Calls after the first are no-ops.
	Destroy()

	// PollEvents drains pending platform events without blocking and
	// forwards each one to the owning Window.
	PollEvents()

	// RefreshScreen swaps the front and back buffers.
	RefreshScreen()

	ConvertNativeKeyCode(code int) KeyCode
	NativeKeyCode(key KeyCode) int

	// IsKeyDown queries the live platform key state.
	IsKeyDown(key KeyCode) bool

	// GetProcAddress resolves an OpenGL entry point for the current context.
	// It returns 0 when the name cannot be resolved.
	GetProcAddress(name string) uintptr

	State() State
}

// Driver creates the NativeWindow backing a Window.
type Driver func(owner *Window) (NativeWindow, error)

// Platform is the native window variant compiled into this build.
func Platform(owner *Window) (NativeWindow, error) {
	return newPlatformWindow(owner)
}

// lifecycle tracks the State of a native window. Variants embed it.
type lifecycle struct {
	state State
}

func (l *lifecycle) State() State {
	return l.state
}

// advance moves to next if the current state is one of from.
func (l *lifecycle) advance(next State, from ...State) error {
	for _, s := range from {
		if l.state == s {
			l.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidState, l.state, next)
}

// beginDestroy reports whether teardown should run and marks the window
// destroyed.
func (l *lifecycle) beginDestroy() bool {
	if l.state == StateDestroyed || l.state == StateUninitialized {
		l.state = StateDestroyed
		return false
	}
	l.state = StateDestroyed
	return true
}

// markPolled moves a window with a context into StateRunning on its first
// event poll.
func (l *lifecycle) markPolled() {
	if l.state == StateContextCreated {
		l.state = StateRunning
	}
}

// live reports whether the window still has a platform handle.
func (l *lifecycle) live() bool {
	return l.state != StateUninitialized && l.state != StateDestroyed
}
