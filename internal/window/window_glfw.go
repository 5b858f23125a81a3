//go:build glfw

package window

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var glfwKeys = newKeyTable(append(append(
	alphaNumericBindings(int(glfw.KeyA), int(glfw.Key0)),
	functionKeyBindings(int(glfw.KeyF1))...),
	keyBinding{int(glfw.KeyEscape), KeyEscape},
	keyBinding{int(glfw.KeyEnter), KeyEnter},
	keyBinding{int(glfw.KeySpace), KeySpace},
	keyBinding{int(glfw.KeyBackspace), KeyBackspace},
	keyBinding{int(glfw.KeyTab), KeyTab},
	keyBinding{int(glfw.KeyLeftShift), KeyShift},
	keyBinding{int(glfw.KeyRightShift), KeyShift},
	keyBinding{int(glfw.KeyLeftControl), KeyCtrl},
	keyBinding{int(glfw.KeyRightControl), KeyCtrl},
	keyBinding{int(glfw.KeyLeftAlt), KeyAlt},
	keyBinding{int(glfw.KeyRightAlt), KeyAlt},
	keyBinding{int(glfw.KeyLeft), KeyLeft},
	keyBinding{int(glfw.KeyRight), KeyRight},
	keyBinding{int(glfw.KeyUp), KeyUp},
	keyBinding{int(glfw.KeyDown), KeyDown},
))

// glfw.Init and glfw.Terminate bracket the lifetime of every window.
var library struct {
	sync.Mutex
	refs int
}

func acquireLibrary() error {
	library.Lock()
	defer library.Unlock()

	if library.refs == 0 {
		if err := glfw.Init(); err != nil {
			return fmt.Errorf("%w: %w", ErrClassRegistration, err)
		}
	}
	library.refs++
	return nil
}

func releaseLibrary() {
	library.Lock()
	defer library.Unlock()

	if library.refs == 0 {
		return
	}
	library.refs--
	if library.refs == 0 {
		glfw.Terminate()
	}
}

// glfwWindow defers creating the GLFW window to CreateContext because GLFW
// binds the context hints to window creation.
type glfwWindow struct {
	lifecycle

	owner  *Window
	window *glfw.Window
}

func newPlatformWindow(owner *Window) (NativeWindow, error) {
	runtime.LockOSThread()

	if err := acquireLibrary(); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	w := &glfwWindow{owner: owner}
	w.state = StateWindowCreated
	return w, nil
}

func (w *glfwWindow) CreateContext(opts ContextOptions) error {
	if w.state != StateWindowCreated {
		return fmt.Errorf("%w: create context in state %s", ErrInvalidState, w.state)
	}

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.StencilBits, 8)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)
	if !opts.Legacy {
		glfw.WindowHint(glfw.ContextVersionMajor, opts.Major)
		glfw.WindowHint(glfw.ContextVersionMinor, opts.Minor)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	}

	desc := w.owner.desc
	win, err := glfw.CreateWindow(desc.Width, desc.Height, desc.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrContextCreation, opts, err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	w.window = win
	w.installCallbacks()
	w.state = StateContextCreated
	return nil
}

func (w *glfwWindow) installCallbacks() {
	w.window.SetCharCallback(func(_ *glfw.Window, char rune) {
		w.owner.dispatch(CharacterEvent(char))
	})
	w.window.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.owner.dispatch(ResizeEvent(width, height))
	})
	w.window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		w.owner.dispatch(KeyEvent(glfwKeys.key(int(key)), action != glfw.Release))
	})
	w.window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b := glfwButton(button)
		if b == MouseButtonUnknown {
			return
		}
		w.owner.dispatch(MouseButtonEvent(b, action == glfw.Press))
	})
	w.window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.owner.dispatch(MouseMoveEvent(int(x), int(y)))
	})
	w.window.SetCloseCallback(func(win *glfw.Window) {
		w.owner.dispatch(CloseEvent())
		if w.owner.IsRunning() {
			win.SetShouldClose(false)
		}
	})
}

func glfwButton(b glfw.MouseButton) MouseButton {
	switch b {
	case glfw.MouseButtonLeft:
		return MouseButtonLeft
	case glfw.MouseButtonRight:
		return MouseButtonRight
	case glfw.MouseButtonMiddle:
		return MouseButtonMiddle
	}
	return MouseButtonUnknown
}

func (w *glfwWindow) Destroy() {
	if !w.beginDestroy() {
		return
	}
	if w.window != nil {
		glfw.DetachCurrentContext()
		w.window.Destroy()
		w.window = nil
	}
	releaseLibrary()
	runtime.UnlockOSThread()
}

func (w *glfwWindow) PollEvents() {
	if !w.live() {
		return
	}
	w.markPolled()
	glfw.PollEvents()
}

func (w *glfwWindow) RefreshScreen() {
	if w.window != nil {
		w.window.SwapBuffers()
	}
}

func (w *glfwWindow) ConvertNativeKeyCode(code int) KeyCode { return glfwKeys.key(code) }

func (w *glfwWindow) NativeKeyCode(key KeyCode) int { return glfwKeys.native(key) }

func (w *glfwWindow) IsKeyDown(key KeyCode) bool {
	code := glfwKeys.native(key)
	if code < 0 || w.window == nil {
		return false
	}
	return w.window.GetKey(glfw.Key(code)) != glfw.Release
}

func (w *glfwWindow) GetProcAddress(name string) uintptr {
	if w.window == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(glfw.GetProcAddress(name)))
}
