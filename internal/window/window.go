// Package window is the platform-independent window facade. A Window owns
// exactly one NativeWindow, the window description and the running flag that
// drives the application loop.
//
// Callbacks are single-subscriber slots: each event kind holds at most one
// function and setting a new one replaces the previous registration. There is
// no fan-out to multiple listeners.
//
// A Window is not safe for concurrent use. It must be created, polled and
// destroyed from the same goroutine.
package window

import (
	"log/slog"
)

// Description is the title and client-area size of a window.
type Description struct {
	Title  string
	Width  int
	Height int
}

// Callbacks is the table of event handlers of a Window. A nil field selects
// the default behaviour for that event.
type Callbacks struct {
	Resize func(width, height int)
	// Close decides whether a close request stops the window. Returning
	// false keeps it running.
	Close       func() bool
	Key         func(key KeyCode, pressed bool)
	MouseButton func(button MouseButton, pressed bool)
	MouseMove   func(x, y int)
	Character   func(r rune)
}

type Window struct {
	desc      Description
	callbacks Callbacks
	native    NativeWindow
	running   bool
	log       *slog.Logger
}

type options struct {
	driver Driver
	logger *slog.Logger
}

// Option configures Create.
type Option func(*options)

// WithDriver selects the native window variant. The default is Platform.
func WithDriver(d Driver) Option {
	return func(o *options) { o.driver = d }
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Create builds a window from desc and its native window. The returned window
// is running but has no rendering context yet.
func Create(desc Description, opts ...Option) (*Window, error) {
	o := options{driver: Platform, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Window{desc: desc, log: o.logger}
	native, err := o.driver(w)
	if err != nil {
		return nil, err
	}
	w.native = native
	w.running = true

	w.log.Info("created window",
		slog.String("title", desc.Title),
		slog.Int("width", desc.Width),
		slog.Int("height", desc.Height),
	)
	return w, nil
}

// Destroy tears down the native window. The running flag is left untouched.
func (w *Window) Destroy() {
	if w.native.State() == StateDestroyed {
		return
	}
	w.native.Destroy()
	w.log.Info("destroyed window", slog.String("title", w.desc.Title))
}

func (w *Window) IsRunning() bool { return w.running }

func (w *Window) SetRunning(running bool) { w.running = running }

// CreateContext creates the OpenGL context of the native window.
func (w *Window) CreateContext(opts ContextOptions) error {
	if err := w.native.CreateContext(opts); err != nil {
		return err
	}
	w.log.Info("created rendering context", slog.String("context", opts.String()))
	return nil
}

func (w *Window) PollEvents() { w.native.PollEvents() }

func (w *Window) SwapBuffers() { w.native.RefreshScreen() }

func (w *Window) IsKeyDown(key KeyCode) bool { return w.native.IsKeyDown(key) }

func (w *Window) GetProcAddress(name string) uintptr { return w.native.GetProcAddress(name) }

// Native returns the native window backing w.
func (w *Window) Native() NativeWindow { return w.native }

// Description returns a copy of the current description.
func (w *Window) Description() Description { return w.desc }

// SetSize records a new client-area size in the description.
func (w *Window) SetSize(width, height int) {
	w.desc.Width = width
	w.desc.Height = height
}

// Callbacks returns a copy of the callback table.
func (w *Window) Callbacks() Callbacks { return w.callbacks }

func (w *Window) SetResizeCallback(fn func(width, height int)) { w.callbacks.Resize = fn }

func (w *Window) SetCloseCallback(fn func() bool) { w.callbacks.Close = fn }

func (w *Window) SetKeyCallback(fn func(key KeyCode, pressed bool)) { w.callbacks.Key = fn }

func (w *Window) SetMouseButtonCallback(fn func(button MouseButton, pressed bool)) {
	w.callbacks.MouseButton = fn
}

func (w *Window) SetMouseMoveCallback(fn func(x, y int)) { w.callbacks.MouseMove = fn }

func (w *Window) SetCharacterCallback(fn func(r rune)) { w.callbacks.Character = fn }

// dispatch applies a translated platform event. Native windows call it from
// PollEvents.
func (w *Window) dispatch(ev Event) {
	cb := &w.callbacks
	switch ev.Kind {
	case EventCharacter:
		if cb.Character != nil {
			cb.Character(ev.Char)
		}
	case EventResize:
		w.SetSize(ev.Width, ev.Height)
		if cb.Resize != nil {
			cb.Resize(ev.Width, ev.Height)
		}
	case EventKey:
		if cb.Key != nil {
			cb.Key(ev.Key, ev.Pressed)
		}
	case EventMouseButton:
		if cb.MouseButton != nil {
			cb.MouseButton(ev.Button, ev.Pressed)
		}
	case EventMouseMove:
		if cb.MouseMove != nil {
			cb.MouseMove(ev.X, ev.Y)
		}
	case EventClose:
		if cb.Close == nil || cb.Close() {
			w.running = false
		} else {
			w.log.Debug("close request vetoed by callback", slog.String("title", w.desc.Title))
		}
	case EventDestroy:
		w.running = false
	}
}
