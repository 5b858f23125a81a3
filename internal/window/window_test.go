package window

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func newHeadless(t *testing.T, desc Description) (*Window, *HeadlessWindow) {
	t.Helper()
	w, err := Create(desc,
		WithDriver(Headless),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(w.Destroy)
	return w, w.Native().(*HeadlessWindow)
}

func TestCloseRequest(t *testing.T) {
	tests := []struct {
		name        string
		callback    func() bool
		wantRunning bool
	}{
		{name: "no callback", callback: nil, wantRunning: false},
		{name: "callback allows", callback: func() bool { return true }, wantRunning: false},
		{name: "callback vetoes", callback: func() bool { return false }, wantRunning: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})
			w.SetCloseCallback(tt.callback)

			h.Inject(CloseEvent())
			w.PollEvents()

			if got := w.IsRunning(); got != tt.wantRunning {
				t.Fatalf("IsRunning() = %v, want %v", got, tt.wantRunning)
			}
		})
	}
}

func TestResize(t *testing.T) {
	t.Run("with callback", func(t *testing.T) {
		w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})
		var gotW, gotH, calls int
		w.SetResizeCallback(func(width, height int) {
			gotW, gotH = width, height
			calls++
		})

		h.Inject(ResizeEvent(1024, 768))
		w.PollEvents()

		if calls != 1 || gotW != 1024 || gotH != 768 {
			t.Fatalf("callback got %dx%d in %d calls, want 1024x768 once", gotW, gotH, calls)
		}
		if d := w.Description(); d.Width != 1024 || d.Height != 768 {
			t.Fatalf("description = %dx%d, want 1024x768", d.Width, d.Height)
		}
	})

	t.Run("without callback", func(t *testing.T) {
		w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})

		h.Inject(ResizeEvent(320, 240))
		w.PollEvents()

		if d := w.Description(); d.Width != 320 || d.Height != 240 {
			t.Fatalf("description = %dx%d, want 320x240", d.Width, d.Height)
		}
		if d := w.Description(); d.Title != "Test" {
			t.Fatalf("title = %q, want Test", d.Title)
		}
	})
}

func TestInputCallbacks(t *testing.T) {
	w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})

	type keyPress struct {
		key     KeyCode
		pressed bool
	}
	type buttonPress struct {
		button  MouseButton
		pressed bool
	}
	var (
		keys    []keyPress
		buttons []buttonPress
		moves   [][2]int
		chars   []rune
	)
	w.SetKeyCallback(func(key KeyCode, pressed bool) { keys = append(keys, keyPress{key, pressed}) })
	w.SetMouseButtonCallback(func(b MouseButton, pressed bool) { buttons = append(buttons, buttonPress{b, pressed}) })
	w.SetMouseMoveCallback(func(x, y int) { moves = append(moves, [2]int{x, y}) })
	w.SetCharacterCallback(func(r rune) { chars = append(chars, r) })

	h.Inject(
		KeyEvent(KeyW, true),
		CharacterEvent('w'),
		KeyEvent(KeyW, false),
		MouseButtonEvent(MouseButtonRight, true),
		MouseButtonEvent(MouseButtonRight, false),
		MouseMoveEvent(-3, 40),
	)
	w.PollEvents()

	wantKeys := []keyPress{{KeyW, true}, {KeyW, false}}
	if len(keys) != len(wantKeys) || keys[0] != wantKeys[0] || keys[1] != wantKeys[1] {
		t.Errorf("keys = %v, want %v", keys, wantKeys)
	}
	// A button release reports pressed=false.
	wantButtons := []buttonPress{{MouseButtonRight, true}, {MouseButtonRight, false}}
	if len(buttons) != 2 || buttons[0] != wantButtons[0] || buttons[1] != wantButtons[1] {
		t.Errorf("buttons = %v, want %v", buttons, wantButtons)
	}
	if len(moves) != 1 || moves[0] != [2]int{-3, 40} {
		t.Errorf("moves = %v, want [[-3 40]]", moves)
	}
	if string(chars) != "w" {
		t.Errorf("chars = %q, want \"w\"", string(chars))
	}
}

func TestCallbackReplaces(t *testing.T) {
	w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})
	var first, second int
	w.SetKeyCallback(func(KeyCode, bool) { first++ })
	w.SetKeyCallback(func(KeyCode, bool) { second++ })

	h.Inject(KeyEvent(KeyA, true))
	w.PollEvents()

	if first != 0 || second != 1 {
		t.Fatalf("first=%d second=%d, want 0 and 1", first, second)
	}

	w.SetKeyCallback(nil)
	h.Inject(KeyEvent(KeyA, false))
	w.PollEvents()
	if second != 1 {
		t.Fatalf("cleared callback still called")
	}
}

func TestIsKeyDown(t *testing.T) {
	w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})

	if w.IsKeyDown(KeyEscape) {
		t.Fatal("Escape down before any event")
	}
	h.Inject(KeyEvent(KeyEscape, true))
	if w.IsKeyDown(KeyEscape) {
		t.Fatal("Escape down before the event was polled")
	}
	w.PollEvents()
	if !w.IsKeyDown(KeyEscape) {
		t.Fatal("Escape not down after press")
	}
	h.Inject(KeyEvent(KeyEscape, false))
	w.PollEvents()
	if w.IsKeyDown(KeyEscape) {
		t.Fatal("Escape still down after release")
	}
	if w.IsKeyDown(KeyUnknown) || w.IsKeyDown(KeyCount) {
		t.Fatal("invalid keys report down")
	}
}

func TestDestroyEvent(t *testing.T) {
	w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})
	w.SetCloseCallback(func() bool { return false })

	h.Inject(DestroyEvent())
	w.PollEvents()

	if w.IsRunning() {
		t.Fatal("window still running after destroy event")
	}
}

func TestLifecycle(t *testing.T) {
	w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})

	if got := h.State(); got != StateWindowCreated {
		t.Fatalf("state after Create = %s", got)
	}
	if !w.IsRunning() {
		t.Fatal("new window not running")
	}

	opts := ContextOptions{Major: 3, Minor: 3}
	if err := w.CreateContext(opts); err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	if got := h.State(); got != StateContextCreated {
		t.Fatalf("state after CreateContext = %s", got)
	}
	if h.Context() != opts {
		t.Fatalf("context = %s, want %s", h.Context(), opts)
	}

	if err := w.CreateContext(opts); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second CreateContext err = %v, want ErrInvalidState", err)
	}

	w.PollEvents()
	if got := h.State(); got != StateRunning {
		t.Fatalf("state after first poll = %s", got)
	}

	w.SwapBuffers()
	w.SwapBuffers()
	if h.Swaps() != 2 {
		t.Fatalf("swaps = %d, want 2", h.Swaps())
	}

	w.Destroy()
	if got := h.State(); got != StateDestroyed {
		t.Fatalf("state after Destroy = %s", got)
	}
	// Destroy leaves the running flag alone and is idempotent.
	if !w.IsRunning() {
		t.Fatal("Destroy cleared the running flag")
	}
	w.Destroy()

	w.SwapBuffers()
	h.Inject(CloseEvent())
	w.PollEvents()
	if h.Swaps() != 2 || !w.IsRunning() {
		t.Fatal("destroyed window still swaps or dispatches")
	}
}

func TestCreateContextFailure(t *testing.T) {
	w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})
	h.FailContext(ErrContextCreation)

	if err := w.CreateContext(DefaultContext); !errors.Is(err, ErrContextCreation) {
		t.Fatalf("err = %v, want ErrContextCreation", err)
	}
	if got := h.State(); got != StateWindowCreated {
		t.Fatalf("state after failed CreateContext = %s", got)
	}
	if err := w.CreateContext(DefaultContext); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestCreateFailure(t *testing.T) {
	failing := func(*Window) (NativeWindow, error) {
		return nil, ErrWindowCreation
	}
	w, err := Create(Description{Title: "Test"}, WithDriver(failing))
	if !errors.Is(err, ErrWindowCreation) {
		t.Fatalf("err = %v, want ErrWindowCreation", err)
	}
	if w != nil {
		t.Fatal("window returned alongside an error")
	}
}

// A window titled "Test" at 800x600 survives a resize and stops on a close
// request without a callback.
func TestResizeThenClose(t *testing.T) {
	w, h := newHeadless(t, Description{Title: "Test", Width: 800, Height: 600})
	if err := w.CreateContext(DefaultContext); err != nil {
		t.Fatal(err)
	}

	h.Inject(ResizeEvent(1024, 768))
	w.PollEvents()
	if !w.IsRunning() {
		t.Fatal("resize stopped the window")
	}
	if d := w.Description(); d.Width != 1024 || d.Height != 768 {
		t.Fatalf("description = %dx%d", d.Width, d.Height)
	}

	h.Inject(CloseEvent())
	w.PollEvents()
	if w.IsRunning() {
		t.Fatal("close without callback kept the window running")
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{DefaultContext.String(), "4.6 core"},
		{ContextOptions{Legacy: true}.String(), "legacy"},
		{StateContextCreated.String(), "context-created"},
		{State(42).String(), "State(42)"},
		{EventMouseButton.String(), "mouse-button"},
		{MouseButtonMiddle.String(), "Middle"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
