//go:build windows && !glfw

package window

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"syscall"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	csOwnDC   = 0x0020
	csHRedraw = 0x0002
	csVRedraw = 0x0001

	wsOverlappedWindow = 0x00CF0000
	wsClipSiblings     = 0x04000000
	wsClipChildren     = 0x02000000
	swShow             = 5

	wmDestroy     = 0x0002
	wmSize        = 0x0005
	wmClose       = 0x0010
	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmChar        = 0x0102
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	pmRemove      = 0x0001

	pfdTypeRGBA      = 0
	pfdMainPlane     = 0
	pfdDrawToWindow  = 0x00000004
	pfdSupportOpenGL = 0x00000020
	pfdDoubleBuffer  = 0x00000001

	cwUseDefault = 0x80000000

	wglContextMajorVersionARB         = 0x2091
	wglContextMinorVersionARB         = 0x2092
	wglContextFlagsARB                = 0x2094
	wglContextProfileMaskARB          = 0x9126
	wglContextCoreProfileBitARB       = 0x0001
	wglContextForwardCompatibleBitARB = 0x0002
)

// Virtual-key codes.
const (
	vkBack    = 0x08
	vkTab     = 0x09
	vkReturn  = 0x0D
	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkEscape  = 0x1B
	vkSpace   = 0x20
	vkLeft    = 0x25
	vkUp      = 0x26
	vkRight   = 0x27
	vkDown    = 0x28
	vkF1      = 0x70
)

type (
	hwnd  = windows.Handle
	hdc   = windows.Handle
	hglrc = windows.Handle
)

type wndClassEx struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     windows.Handle
	hIcon         windows.Handle
	hCursor       windows.Handle
	hbrBackground windows.Handle
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       windows.Handle
}

type msg struct {
	hwnd     hwnd
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

type point struct {
	x int32
	y int32
}

type rect struct {
	left   int32
	top    int32
	right  int32
	bottom int32
}

// Mirrors PIXELFORMATDESCRIPTOR (must be 40 bytes).
type pixelFormatDescriptor struct {
	nSize           uint16
	nVersion        uint16
	dwFlags         uint32
	iPixelType      byte
	cColorBits      byte
	cRedBits        byte
	cRedShift       byte
	cGreenBits      byte
	cGreenShift     byte
	cBlueBits       byte
	cBlueShift      byte
	cAlphaBits      byte
	cAlphaShift     byte
	cAccumBits      byte
	cAccumRedBits   byte
	cAccumGreenBits byte
	cAccumBlueBits  byte
	cAccumAlphaBits byte
	cDepthBits      byte
	cStencilBits    byte
	cAuxBuffers     byte
	iLayerType      byte
	bReserved       byte
	dwLayerMask     uint32
	dwVisibleMask   uint32
	dwDamageMask    uint32
}

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	opengl32 = windows.NewLazySystemDLL("opengl32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassEx  = user32.NewProc("RegisterClassExW")
	procUnregisterClass  = user32.NewProc("UnregisterClassW")
	procCreateWindowEx   = user32.NewProc("CreateWindowExW")
	procAdjustWindowRect = user32.NewProc("AdjustWindowRect")
	procDefWindowProc    = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procUpdateWindow     = user32.NewProc("UpdateWindow")
	procPeekMessage      = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessage  = user32.NewProc("DispatchMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
	procGetDC            = user32.NewProc("GetDC")
	procReleaseDC        = user32.NewProc("ReleaseDC")
	procLoadCursor       = user32.NewProc("LoadCursorW")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")

	procChoosePixelFormat   = gdi32.NewProc("ChoosePixelFormat")
	procDescribePixelFormat = gdi32.NewProc("DescribePixelFormat")
	procGetPixelFormat      = gdi32.NewProc("GetPixelFormat")
	procSetPixelFormat      = gdi32.NewProc("SetPixelFormat")
	procSwapBuffers         = gdi32.NewProc("SwapBuffers")

	procWglCreateContext  = opengl32.NewProc("wglCreateContext")
	procWglMakeCurrent    = opengl32.NewProc("wglMakeCurrent")
	procWglDeleteContext  = opengl32.NewProc("wglDeleteContext")
	procWglGetProcAddress = opengl32.NewProc("wglGetProcAddress")

	procGetModuleHandle = kernel32.NewProc("GetModuleHandleW")
)

var validateProcs = sync.OnceValue(func() error {
	procs := []*windows.LazyProc{
		procRegisterClassEx,
		procUnregisterClass,
		procCreateWindowEx,
		procGetDC,
		procReleaseDC,
		procDescribePixelFormat,
		procSetPixelFormat,
		procGetPixelFormat,
		procWglCreateContext,
		procWglMakeCurrent,
		procWglDeleteContext,
		procWglGetProcAddress,
	}
	for _, p := range procs {
		if err := p.Find(); err != nil {
			return fmt.Errorf("missing procedure %q: %w", p.Name, err)
		}
	}
	return nil
})

var win32Keys = newKeyTable(append(append(
	alphaNumericBindings('A', '0'),
	functionKeyBindings(vkF1)...),
	keyBinding{vkEscape, KeyEscape},
	keyBinding{vkReturn, KeyEnter},
	keyBinding{vkSpace, KeySpace},
	keyBinding{vkBack, KeyBackspace},
	keyBinding{vkTab, KeyTab},
	keyBinding{vkShift, KeyShift},
	keyBinding{vkControl, KeyCtrl},
	keyBinding{vkMenu, KeyAlt},
	keyBinding{vkLeft, KeyLeft},
	keyBinding{vkRight, KeyRight},
	keyBinding{vkUp, KeyUp},
	keyBinding{vkDown, KeyDown},
))

// The window class is shared by every window of the process. It is
// registered by the first window and unregistered with the last one.
var windowClass struct {
	sync.Mutex
	refs int
	name *uint16
	proc uintptr
}

// Native windows by handle, for the window procedure.
var (
	liveMu  sync.Mutex
	liveWin = map[hwnd]*win32Window{}
)

func winErr(op string, e error) error {
	var errno syscall.Errno
	if errors.As(e, &errno) && errno != 0 {
		return fmt.Errorf("%s failed: %w", op, errno)
	}
	return fmt.Errorf("%s failed", op)
}

type win32Window struct {
	lifecycle

	owner    *Window
	instance windows.Handle
	hwnd     hwnd
	hdc      hdc
	ctx      hglrc

	// High half of a surrogate pair waiting for its WM_CHAR partner.
	highSurrogate rune
}

func newPlatformWindow(owner *Window) (NativeWindow, error) {
	runtime.LockOSThread()

	if unsafe.Sizeof(pixelFormatDescriptor{}) != 40 {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf(
			"%w: PIXELFORMATDESCRIPTOR size mismatch: got %d, want 40",
			ErrWindowCreation,
			unsafe.Sizeof(pixelFormatDescriptor{}),
		)
	}

	if err := validateProcs(); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: %w", ErrClassRegistration, err)
	}

	instance := moduleHandle()
	if err := acquireWindowClass(instance); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	w := &win32Window{owner: owner, instance: instance}
	if err := w.createWindow(owner.desc); err != nil {
		releaseWindowClass(instance)
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: %w", ErrWindowCreation, err)
	}
	w.state = StateWindowCreated

	liveMu.Lock()
	liveWin[w.hwnd] = w
	liveMu.Unlock()

	procShowWindow.Call(uintptr(w.hwnd), swShow)
	procUpdateWindow.Call(uintptr(w.hwnd))

	return w, nil
}

func (w *win32Window) createWindow(desc Description) error {
	titlePtr, err := windows.UTF16PtrFromString(desc.Title)
	if err != nil {
		return err
	}

	style := uint32(wsOverlappedWindow | wsClipSiblings | wsClipChildren)

	// Grow the outer frame so the client area matches the description.
	r := rect{right: int32(desc.Width), bottom: int32(desc.Height)}
	procAdjustWindowRect.Call(uintptr(unsafe.Pointer(&r)), uintptr(style), 0)

	ret, _, e := procCreateWindowEx.Call(
		0,
		uintptr(unsafe.Pointer(windowClass.name)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(style),
		cwUseDefault,
		cwUseDefault,
		uintptr(r.right-r.left),
		uintptr(r.bottom-r.top),
		0,
		0,
		uintptr(w.instance),
		0,
	)
	if ret == 0 {
		return winErr("CreateWindowExW", e)
	}
	w.hwnd = hwnd(ret)

	dc, _, e := procGetDC.Call(uintptr(w.hwnd))
	if dc == 0 {
		procDestroyWindow.Call(uintptr(w.hwnd))
		w.hwnd = 0
		return winErr("GetDC", e)
	}
	w.hdc = hdc(dc)
	return nil
}

func (w *win32Window) CreateContext(opts ContextOptions) error {
	if w.state != StateWindowCreated {
		return fmt.Errorf("%w: create context in state %s", ErrInvalidState, w.state)
	}

	if _, _, err := chooseAndSetPixelFormat(w.hdc); err != nil {
		return fmt.Errorf("%w: %w", ErrContextCreation, err)
	}

	var (
		ctx uintptr
		err error
	)
	if opts.Legacy {
		var e error
		if ctx, _, e = procWglCreateContext.Call(uintptr(w.hdc)); ctx == 0 {
			err = winErr("wglCreateContext", e)
		}
	} else {
		ctx, err = w.createCoreContext(opts)
	}
	if err != nil {
		return fmt.Errorf("%w: %s context: %w", ErrContextCreation, opts, err)
	}

	if ok, _, e := procWglMakeCurrent.Call(uintptr(w.hdc), ctx); ok == 0 {
		procWglDeleteContext.Call(ctx)
		return fmt.Errorf("%w: %w", ErrContextCreation, winErr("wglMakeCurrent", e))
	}

	w.ctx = hglrc(ctx)
	w.state = StateContextCreated
	return nil
}

// createCoreContext makes a temporary legacy context current, which is
// required before wglCreateContextAttribsARB can be resolved, and creates the
// requested core profile through it.
func (w *win32Window) createCoreContext(opts ContextOptions) (uintptr, error) {
	temp, _, e := procWglCreateContext.Call(uintptr(w.hdc))
	if temp == 0 {
		return 0, winErr("wglCreateContext", e)
	}
	defer procWglDeleteContext.Call(temp)
	if ok, _, e := procWglMakeCurrent.Call(uintptr(w.hdc), temp); ok == 0 {
		return 0, winErr("wglMakeCurrent", e)
	}
	defer procWglMakeCurrent.Call(0, 0)

	createAttribs := w.GetProcAddress("wglCreateContextAttribsARB")
	if createAttribs == 0 {
		return 0, errors.New("wglCreateContextAttribsARB unavailable")
	}

	attribs := []int32{
		wglContextMajorVersionARB, int32(opts.Major),
		wglContextMinorVersionARB, int32(opts.Minor),
		wglContextProfileMaskARB, wglContextCoreProfileBitARB,
		wglContextFlagsARB, wglContextForwardCompatibleBitARB,
		0,
	}
	ctx, _, e := syscall.SyscallN(createAttribs, uintptr(w.hdc), 0, uintptr(unsafe.Pointer(&attribs[0])))
	runtime.KeepAlive(attribs)
	if ctx == 0 {
		return 0, winErr("wglCreateContextAttribsARB", e)
	}
	return ctx, nil
}

func (w *win32Window) Destroy() {
	if !w.beginDestroy() {
		return
	}

	liveMu.Lock()
	delete(liveWin, w.hwnd)
	liveMu.Unlock()

	if w.ctx != 0 {
		procWglMakeCurrent.Call(0, 0)
		procWglDeleteContext.Call(uintptr(w.ctx))
		w.ctx = 0
	}
	if w.hdc != 0 && w.hwnd != 0 {
		procReleaseDC.Call(uintptr(w.hwnd), uintptr(w.hdc))
		w.hdc = 0
	}
	if w.hwnd != 0 {
		procDestroyWindow.Call(uintptr(w.hwnd))
		w.hwnd = 0
	}
	releaseWindowClass(w.instance)
	runtime.UnlockOSThread()
}

func (w *win32Window) PollEvents() {
	if !w.live() {
		return
	}
	w.markPolled()

	var m msg
	for {
		ret, _, _ := procPeekMessage.Call(
			uintptr(unsafe.Pointer(&m)),
			0,
			0,
			0,
			pmRemove,
		)
		if ret == 0 {
			break
		}
		if m.message == wmQuit {
			w.owner.dispatch(DestroyEvent())
			continue
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (w *win32Window) RefreshScreen() {
	if w.hdc != 0 {
		procSwapBuffers.Call(uintptr(w.hdc))
	}
}

func (w *win32Window) ConvertNativeKeyCode(code int) KeyCode { return win32Keys.key(code) }

func (w *win32Window) NativeKeyCode(key KeyCode) int { return win32Keys.native(key) }

func (w *win32Window) IsKeyDown(key KeyCode) bool {
	vk := win32Keys.native(key)
	if vk < 0 {
		return false
	}
	ret, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return ret&0x8000 != 0
}

// GetProcAddress asks WGL first and falls back to the opengl32.dll exports,
// which hold the GL 1.1 entry points WGL refuses to return.
func (w *win32Window) GetProcAddress(name string) uintptr {
	cname, err := windows.BytePtrFromString(name)
	if err != nil {
		return 0
	}
	addr, _, _ := procWglGetProcAddress.Call(uintptr(unsafe.Pointer(cname)))
	switch addr {
	case 0, 1, 2, 3, ^uintptr(0):
	default:
		return addr
	}

	if err := opengl32.Load(); err != nil {
		return 0
	}
	addr, err = windows.GetProcAddress(windows.Handle(opengl32.Handle()), name)
	if err != nil {
		return 0
	}
	return addr
}

func (w *win32Window) handleMessage(message uint32, wParam, lParam uintptr) bool {
	owner := w.owner
	switch message {
	case wmChar:
		if r, ok := w.decodeChar(uint16(wParam)); ok {
			owner.dispatch(CharacterEvent(r))
		}
	case wmSize:
		owner.dispatch(ResizeEvent(int(loWord(lParam)), int(hiWord(lParam))))
	case wmKeyDown, wmSysKeyDown:
		owner.dispatch(KeyEvent(win32Keys.key(int(wParam)), true))
	case wmKeyUp, wmSysKeyUp:
		owner.dispatch(KeyEvent(win32Keys.key(int(wParam)), false))
	case wmLButtonDown, wmLButtonUp:
		owner.dispatch(MouseButtonEvent(MouseButtonLeft, message == wmLButtonDown))
	case wmRButtonDown, wmRButtonUp:
		owner.dispatch(MouseButtonEvent(MouseButtonRight, message == wmRButtonDown))
	case wmMButtonDown, wmMButtonUp:
		owner.dispatch(MouseButtonEvent(MouseButtonMiddle, message == wmMButtonDown))
	case wmMouseMove:
		owner.dispatch(MouseMoveEvent(int(int16(loWord(lParam))), int(int16(hiWord(lParam)))))
	case wmClose:
		// The owner decides; the window is torn down by Destroy.
		owner.dispatch(CloseEvent())
		return true
	case wmDestroy:
		procPostQuitMessage.Call(0)
		return true
	}
	return false
}

// decodeChar assembles WM_CHAR code units into runes. Characters outside
// the BMP arrive as two messages.
func (w *win32Window) decodeChar(unit uint16) (rune, bool) {
	r := rune(unit)
	if !utf16.IsSurrogate(r) {
		w.highSurrogate = 0
		return r, true
	}
	if r < 0xDC00 {
		w.highSurrogate = r
		return 0, false
	}
	high := w.highSurrogate
	w.highSurrogate = 0
	if high == 0 {
		return 0, false
	}
	return utf16.DecodeRune(high, r), true
}

func wndProc(h, message, wParam, lParam uintptr) uintptr {
	liveMu.Lock()
	w := liveWin[hwnd(h)]
	liveMu.Unlock()

	if w != nil && w.handleMessage(uint32(message), wParam, lParam) {
		return 0
	}
	ret, _, _ := procDefWindowProc.Call(h, message, wParam, lParam)
	return ret
}

func acquireWindowClass(instance windows.Handle) error {
	windowClass.Lock()
	defer windowClass.Unlock()

	if windowClass.refs > 0 {
		windowClass.refs++
		return nil
	}

	if windowClass.name == nil {
		// Unique per process to avoid CS_OWNDC collisions.
		windowClass.name = windows.StringToUTF16Ptr(fmt.Sprintf("SengineWindow_%d", os.Getpid()))
		windowClass.proc = windows.NewCallback(wndProc)
	}

	wc := wndClassEx{
		cbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		style:         csOwnDC | csHRedraw | csVRedraw,
		lpfnWndProc:   windowClass.proc,
		hInstance:     instance,
		hCursor:       loadCursor(),
		lpszClassName: windowClass.name,
	}
	ret, _, e := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc)))
	if ret == 0 {
		return fmt.Errorf("%w: %w", ErrClassRegistration, winErr("RegisterClassExW", e))
	}
	windowClass.refs = 1
	return nil
}

func releaseWindowClass(instance windows.Handle) {
	windowClass.Lock()
	defer windowClass.Unlock()

	if windowClass.refs == 0 {
		return
	}
	windowClass.refs--
	if windowClass.refs > 0 {
		return
	}
	if ret, _, e := procUnregisterClass.Call(uintptr(unsafe.Pointer(windowClass.name)), uintptr(instance)); ret == 0 {
		slog.Warn("unregister window class", slog.Any("err", winErr("UnregisterClassW", e)))
	}
}

func chooseAndSetPixelFormat(hdc hdc) (int32, pixelFormatDescriptor, error) {
	desired := pixelFormatDescriptor{
		nSize:        uint16(unsafe.Sizeof(pixelFormatDescriptor{})),
		nVersion:     1,
		dwFlags:      pfdDrawToWindow | pfdSupportOpenGL | pfdDoubleBuffer,
		iPixelType:   pfdTypeRGBA,
		cColorBits:   32,
		cDepthBits:   24,
		cStencilBits: 8,
		iLayerType:   pfdMainPlane,
	}

	pf, _, e := procChoosePixelFormat.Call(
		uintptr(hdc),
		uintptr(unsafe.Pointer(&desired)),
	)
	if pf == 0 {
		return 0, pixelFormatDescriptor{}, winErr("ChoosePixelFormat", e)
	}

	var chosen pixelFormatDescriptor
	r, _, e := procDescribePixelFormat.Call(
		uintptr(hdc),
		pf,
		uintptr(unsafe.Sizeof(chosen)),
		uintptr(unsafe.Pointer(&chosen)),
	)
	if r == 0 {
		return 0, pixelFormatDescriptor{}, winErr("DescribePixelFormat", e)
	}

	if !usablePixelFormat(chosen, desired) {
		return enumAndSetPixelFormat(hdc, desired)
	}

	if ok, _, e := procSetPixelFormat.Call(uintptr(hdc), pf, uintptr(unsafe.Pointer(&chosen))); ok == 0 {
		return 0, pixelFormatDescriptor{}, fmt.Errorf("SetPixelFormat failed for index %d: %w", pf, winErr("SetPixelFormat", e))
	}

	got, _, _ := procGetPixelFormat.Call(uintptr(hdc))
	if got != pf {
		return 0, pixelFormatDescriptor{}, fmt.Errorf("GetPixelFormat mismatch: got=%d want=%d", got, pf)
	}

	return int32(pf), chosen, nil
}

func usablePixelFormat(pfd, desired pixelFormatDescriptor) bool {
	const requiredFlags = pfdDrawToWindow | pfdSupportOpenGL | pfdDoubleBuffer
	return pfd.dwFlags&requiredFlags == requiredFlags &&
		pfd.iPixelType == pfdTypeRGBA &&
		pfd.cColorBits >= 24 &&
		pfd.cDepthBits >= desired.cDepthBits &&
		pfd.cStencilBits >= desired.cStencilBits &&
		pfd.iLayerType == pfdMainPlane
}

// enumAndSetPixelFormat walks every format of the device when
// ChoosePixelFormat returns something unusable.
func enumAndSetPixelFormat(hdc hdc, desired pixelFormatDescriptor) (int32, pixelFormatDescriptor, error) {
	var pfd pixelFormatDescriptor

	maxFormats, _, e := procDescribePixelFormat.Call(
		uintptr(hdc),
		1,
		uintptr(unsafe.Sizeof(pfd)),
		uintptr(unsafe.Pointer(&pfd)),
	)
	if maxFormats == 0 {
		return 0, pixelFormatDescriptor{}, winErr("DescribePixelFormat(count)", e)
	}

	for i := uintptr(1); i <= maxFormats; i++ {
		ret, _, _ := procDescribePixelFormat.Call(
			uintptr(hdc),
			i,
			uintptr(unsafe.Sizeof(pfd)),
			uintptr(unsafe.Pointer(&pfd)),
		)
		if ret == 0 || !usablePixelFormat(pfd, desired) {
			continue
		}

		if ok, _, e := procSetPixelFormat.Call(uintptr(hdc), i, uintptr(unsafe.Pointer(&pfd))); ok == 0 {
			return 0, pixelFormatDescriptor{}, winErr("SetPixelFormat(enum)", e)
		}
		return int32(i), pfd, nil
	}

	return 0, pixelFormatDescriptor{}, errors.New("failed to find a suitable OpenGL pixel format")
}

func loWord(v uintptr) uint16 { return uint16(v & 0xFFFF) }

func hiWord(v uintptr) uint16 { return uint16((v >> 16) & 0xFFFF) }

func loadCursor() windows.Handle {
	const idcArrow = 32512
	ret, _, _ := procLoadCursor.Call(0, uintptr(idcArrow))
	return windows.Handle(ret)
}

func moduleHandle() windows.Handle {
	h, _, _ := procGetModuleHandle.Call(0)
	return windows.Handle(h)
}
