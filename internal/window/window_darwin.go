//go:build darwin && !glfw

package window

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"
)

// NS geometry mirrors (keep alignment explicit).
type NSPoint struct {
	X float64
	Y float64
}

type NSSize struct {
	W float64
	H float64
}

type NSRect struct {
	Origin NSPoint
	Size   NSSize
}

// Cocoa constants (subset).
const (
	nsApplicationActivationPolicyRegular = 0

	nsWindowStyleTitled      = 1 << 0
	nsWindowStyleClosable    = 1 << 1
	nsWindowStyleMiniaturize = 1 << 2
	nsWindowStyleResizable   = 1 << 3

	nsBackingStoreBuffered = 2

	nsEventMaskAny = ^uint(0)

	nsEventLeftMouseDown     = 1
	nsEventLeftMouseUp       = 2
	nsEventRightMouseDown    = 3
	nsEventRightMouseUp      = 4
	nsEventMouseMoved        = 5
	nsEventLeftMouseDragged  = 6
	nsEventRightMouseDragged = 7
	nsEventKeyDown           = 10
	nsEventKeyUp             = 11
	nsEventOtherMouseDown    = 25
	nsEventOtherMouseUp      = 26
	nsEventOtherMouseDragged = 27

	// NSOpenGL pixel format attributes.
	nsOpenGLPFAAccelerated       = 73
	nsOpenGLPFADoubleBuffer      = 5
	nsOpenGLPFAColorSize         = 8
	nsOpenGLPFADepthSize         = 12
	nsOpenGLPFAStencilSize       = 13
	nsOpenGLPFAOpenGLProfile     = 99
	nsOpenGLProfileVersionLegacy = 0x1000
	nsOpenGLProfileVersion32Core = 0x3200
	nsOpenGLProfileVersion41Core = 0x4100

	nsOpenGLCPSwapInterval = 222

	cgEventSourceStateCombined = 0
)

// Virtual key codes from HIToolbox/Events.h.
var cocoaKeys = newKeyTable([]keyBinding{
	{0x00, KeyA}, {0x0B, KeyB}, {0x08, KeyC}, {0x02, KeyD}, {0x0E, KeyE},
	{0x03, KeyF}, {0x05, KeyG}, {0x04, KeyH}, {0x22, KeyI}, {0x26, KeyJ},
	{0x28, KeyK}, {0x25, KeyL}, {0x2E, KeyM}, {0x2D, KeyN}, {0x1F, KeyO},
	{0x23, KeyP}, {0x0C, KeyQ}, {0x0F, KeyR}, {0x01, KeyS}, {0x11, KeyT},
	{0x20, KeyU}, {0x09, KeyV}, {0x0D, KeyW}, {0x07, KeyX}, {0x10, KeyY},
	{0x06, KeyZ},

	{0x1D, KeyNum0}, {0x12, KeyNum1}, {0x13, KeyNum2}, {0x14, KeyNum3},
	{0x15, KeyNum4}, {0x17, KeyNum5}, {0x16, KeyNum6}, {0x1A, KeyNum7},
	{0x1C, KeyNum8}, {0x19, KeyNum9},

	{0x35, KeyEscape}, {0x24, KeyEnter}, {0x31, KeySpace}, {0x33, KeyBackspace},
	{0x30, KeyTab}, {0x38, KeyShift}, {0x3C, KeyShift}, {0x3B, KeyCtrl},
	{0x3E, KeyCtrl}, {0x3A, KeyAlt}, {0x3D, KeyAlt},
	{0x7B, KeyLeft}, {0x7C, KeyRight}, {0x7E, KeyUp}, {0x7D, KeyDown},

	{0x7A, KeyF1}, {0x78, KeyF2}, {0x63, KeyF3}, {0x76, KeyF4},
	{0x60, KeyF5}, {0x61, KeyF6}, {0x62, KeyF7}, {0x64, KeyF8},
	{0x65, KeyF9}, {0x6D, KeyF10}, {0x67, KeyF11}, {0x6F, KeyF12},
})

var (
	cfRunLoopRunInMode    func(uintptr, float64, bool) int32
	cfDefaultMode         uintptr
	cgEventSourceKeyState func(int32, uint16) bool
	openGLFramework       uintptr

	// Cached selectors.
	selAlloc                 objc.SEL
	selInit                  objc.SEL
	selRelease               objc.SEL
	selSharedApplication     objc.SEL
	selNextEventMatchingMask objc.SEL
	selSetActivationPolicy   objc.SEL
	selFinishLaunching       objc.SEL
	selStringWithUTF8String  objc.SEL
	selUTF8String            objc.SEL
	selInitWithContentRect   objc.SEL
	selMakeKeyAndOrderFront  objc.SEL
	selSetTitle              objc.SEL
	selSetAcceptsMouseMoved  objc.SEL
	selSetReleasedWhenClosed objc.SEL
	selCenter                objc.SEL
	selContentView           objc.SEL
	selBounds                objc.SEL
	selIsVisible             objc.SEL
	selSendEvent             objc.SEL
	selFlushBuffer           objc.SEL
	selSetView               objc.SEL
	selUpdate                objc.SEL
	selMakeCurrentContext    objc.SEL
	selClearCurrentContext   objc.SEL
	selInitWithAttributes    objc.SEL
	selInitWithFormat        objc.SEL
	selSetValuesForParameter objc.SEL
	selType                  objc.SEL
	selKeyCode               objc.SEL
	selCharacters            objc.SEL
	selLocationInWindow      objc.SEL
	selWindow                objc.SEL
)

var ensureRuntime = sync.OnceValue(func() error {
	if err := loadObjc(); err != nil {
		return err
	}
	loadSelectors()
	return nil
})

// NSApplication is shared by every window; the autorelease pool lives as long
// as at least one window does.
var application struct {
	sync.Mutex
	refs int
	app  objc.ID
	pool objc.ID
}

func acquireApplication() (objc.ID, error) {
	application.Lock()
	defer application.Unlock()

	if application.refs > 0 {
		application.refs++
		return application.app, nil
	}
	if err := ensureRuntime(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrClassRegistration, err)
	}
	app := objc.ID(objc.GetClass("NSApplication")).Send(selSharedApplication)
	if app == 0 {
		return 0, fmt.Errorf("%w: NSApplication unavailable", ErrClassRegistration)
	}
	app.Send(selSetActivationPolicy, nsApplicationActivationPolicyRegular)
	app.Send(selFinishLaunching)

	pool := objc.ID(objc.GetClass("NSAutoreleasePool")).Send(selAlloc)
	application.pool = pool.Send(selInit)
	application.app = app
	application.refs = 1
	return app, nil
}

func releaseApplication() {
	application.Lock()
	defer application.Unlock()

	if application.refs == 0 {
		return
	}
	application.refs--
	if application.refs == 0 && application.pool != 0 {
		application.pool.Send(selRelease)
		application.pool = 0
	}
}

type cocoaWindow struct {
	lifecycle

	owner  *Window
	app    objc.ID
	window objc.ID
	view   objc.ID
	ctx    objc.ID
}

func newPlatformWindow(owner *Window) (NativeWindow, error) {
	runtime.LockOSThread()

	app, err := acquireApplication()
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	c := &cocoaWindow{owner: owner, app: app}
	if err := c.makeWindow(owner.desc); err != nil {
		releaseApplication()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: %w", ErrWindowCreation, err)
	}
	c.state = StateWindowCreated
	return c, nil
}

func (c *cocoaWindow) makeWindow(desc Description) error {
	frame := NSRect{
		Origin: NSPoint{X: 100, Y: 100},
		Size:   NSSize{W: float64(desc.Width), H: float64(desc.Height)},
	}

	style := uint(nsWindowStyleTitled | nsWindowStyleClosable | nsWindowStyleMiniaturize | nsWindowStyleResizable)
	backing := uint(nsBackingStoreBuffered)

	win := objc.ID(objc.GetClass("NSWindow")).Send(selAlloc)
	win = win.Send(selInitWithContentRect, frame, style, backing, false)
	if win == 0 {
		return errors.New("failed to create nswindow")
	}

	win.Send(selCenter)
	win.Send(selSetAcceptsMouseMoved, 1)
	win.Send(selSetReleasedWhenClosed, 0)
	win.Send(selSetTitle, nsString(desc.Title))
	win.Send(selMakeKeyAndOrderFront, objc.ID(0))

	c.window = win
	c.view = win.Send(selContentView)
	if c.view == 0 {
		win.Send(selRelease)
		c.window = 0
		return errors.New("window missing content view")
	}
	return nil
}

// cocoaProfile maps a requested version onto the profiles NSOpenGL offers.
func cocoaProfile(opts ContextOptions) uint32 {
	switch {
	case opts.Legacy:
		return nsOpenGLProfileVersionLegacy
	case opts.Major >= 4:
		return nsOpenGLProfileVersion41Core
	default:
		return nsOpenGLProfileVersion32Core
	}
}

func (c *cocoaWindow) CreateContext(opts ContextOptions) error {
	if c.state != StateWindowCreated {
		return fmt.Errorf("%w: create context in state %s", ErrInvalidState, c.state)
	}

	profile := cocoaProfile(opts)
	if !opts.Legacy && (opts.Major > 4 || (opts.Major == 4 && opts.Minor > 1)) {
		c.owner.log.Warn("requested context above what macOS provides, using 4.1 core",
			slog.String("requested", opts.String()))
	}

	attrs := []uint32{
		nsOpenGLPFAAccelerated,
		nsOpenGLPFADoubleBuffer,
		nsOpenGLPFAColorSize, 24,
		nsOpenGLPFADepthSize, 24,
		nsOpenGLPFAStencilSize, 8,
		nsOpenGLPFAOpenGLProfile, profile,
		0,
	}

	pf := objc.ID(objc.GetClass("NSOpenGLPixelFormat")).Send(selAlloc)
	pf = pf.Send(selInitWithAttributes, unsafe.Pointer(&attrs[0]))
	if pf == 0 {
		return fmt.Errorf("%w: no pixel format for %s", ErrContextCreation, opts)
	}
	defer pf.Send(selRelease)

	ctx := objc.ID(objc.GetClass("NSOpenGLContext")).Send(selAlloc)
	ctx = ctx.Send(selInitWithFormat, pf, objc.ID(0))
	if ctx == 0 {
		return fmt.Errorf("%w: NSOpenGLContext init failed", ErrContextCreation)
	}

	ctx.Send(selSetView, c.view)
	ctx.Send(selMakeCurrentContext)

	swap := int32(1)
	ctx.Send(selSetValuesForParameter, unsafe.Pointer(&swap), nsOpenGLCPSwapInterval)

	c.ctx = ctx
	c.state = StateContextCreated
	return nil
}

func (c *cocoaWindow) Destroy() {
	if !c.beginDestroy() {
		return
	}
	if c.ctx != 0 {
		objc.ID(objc.GetClass("NSOpenGLContext")).Send(selClearCurrentContext)
		c.ctx.Send(selRelease)
		c.ctx = 0
	}
	if c.window != 0 {
		c.window.Send(selRelease)
		c.window = 0
		c.view = 0
	}
	releaseApplication()
	runtime.UnlockOSThread()
}

func (c *cocoaWindow) PollEvents() {
	if !c.live() {
		return
	}
	c.markPolled()

	// Drain one slice of the run loop without blocking and pump pending NSEvents.
	cfRunLoopRunInMode(cfDefaultMode, 0, true)
	for {
		ev := objc.Send[objc.ID](c.app, selNextEventMatchingMask, nsEventMaskAny, objc.ID(0), objc.ID(cfDefaultMode), true)
		if ev == 0 {
			break
		}
		if objc.Send[objc.ID](ev, selWindow) == c.window {
			c.translate(ev)
		}
		c.app.Send(selSendEvent, ev)
	}

	if w, h := c.contentSize(); w != c.owner.desc.Width || h != c.owner.desc.Height {
		if c.ctx != 0 {
			c.ctx.Send(selUpdate)
		}
		c.owner.dispatch(ResizeEvent(w, h))
	}

	// The close button hides the window; a vetoed close brings it back.
	if !objc.Send[bool](c.window, selIsVisible) {
		c.owner.dispatch(CloseEvent())
		if c.owner.IsRunning() {
			c.window.Send(selMakeKeyAndOrderFront, objc.ID(0))
		}
	}
}

func (c *cocoaWindow) translate(ev objc.ID) {
	switch objc.Send[uint](ev, selType) {
	case nsEventKeyDown:
		code := objc.Send[uint16](ev, selKeyCode)
		c.owner.dispatch(KeyEvent(cocoaKeys.key(int(code)), true))
		for _, r := range eventCharacters(ev) {
			if r >= 0x20 && (r < 0xF700 || r > 0xF8FF) {
				c.owner.dispatch(CharacterEvent(r))
			}
		}
	case nsEventKeyUp:
		code := objc.Send[uint16](ev, selKeyCode)
		c.owner.dispatch(KeyEvent(cocoaKeys.key(int(code)), false))
	case nsEventLeftMouseDown:
		c.owner.dispatch(MouseButtonEvent(MouseButtonLeft, true))
	case nsEventLeftMouseUp:
		c.owner.dispatch(MouseButtonEvent(MouseButtonLeft, false))
	case nsEventRightMouseDown:
		c.owner.dispatch(MouseButtonEvent(MouseButtonRight, true))
	case nsEventRightMouseUp:
		c.owner.dispatch(MouseButtonEvent(MouseButtonRight, false))
	case nsEventOtherMouseDown:
		c.owner.dispatch(MouseButtonEvent(MouseButtonMiddle, true))
	case nsEventOtherMouseUp:
		c.owner.dispatch(MouseButtonEvent(MouseButtonMiddle, false))
	case nsEventMouseMoved, nsEventLeftMouseDragged, nsEventRightMouseDragged, nsEventOtherMouseDragged:
		pos := objc.Send[NSPoint](ev, selLocationInWindow)
		_, h := c.contentSize()
		c.owner.dispatch(MouseMoveEvent(int(pos.X), h-int(pos.Y)))
	}
}

func (c *cocoaWindow) contentSize() (int, int) {
	if c.view == 0 {
		return 0, 0
	}
	bounds := objc.Send[NSRect](c.view, selBounds)
	return int(bounds.Size.W), int(bounds.Size.H)
}

func (c *cocoaWindow) RefreshScreen() {
	if c.ctx != 0 {
		c.ctx.Send(selFlushBuffer)
	}
}

func (c *cocoaWindow) ConvertNativeKeyCode(code int) KeyCode { return cocoaKeys.key(code) }

func (c *cocoaWindow) NativeKeyCode(key KeyCode) int { return cocoaKeys.native(key) }

func (c *cocoaWindow) IsKeyDown(key KeyCode) bool {
	code := cocoaKeys.native(key)
	if code < 0 || cgEventSourceKeyState == nil {
		return false
	}
	return cgEventSourceKeyState(cgEventSourceStateCombined, uint16(code))
}

// GetProcAddress looks entry points up in the OpenGL framework, which exports
// every function the system implementation supports.
func (c *cocoaWindow) GetProcAddress(name string) uintptr {
	if openGLFramework == 0 {
		return 0
	}
	addr, err := purego.Dlsym(openGLFramework, name)
	if err != nil {
		return 0
	}
	return addr
}

func loadObjc() error {
	// Load libobjc and AppKit so the symbols are available.
	if _, err := purego.Dlopen("/usr/lib/libobjc.A.dylib", purego.RTLD_GLOBAL); err != nil {
		return err
	}
	if _, err := purego.Dlopen("/System/Library/Frameworks/AppKit.framework/AppKit", purego.RTLD_GLOBAL); err != nil {
		return err
	}
	cf, err := purego.Dlopen("/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation", purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}
	cg, err := purego.Dlopen("/System/Library/Frameworks/CoreGraphics.framework/CoreGraphics", purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}
	openGLFramework, err = purego.Dlopen("/System/Library/Frameworks/OpenGL.framework/OpenGL", purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}

	purego.RegisterLibFunc(&cfRunLoopRunInMode, cf, "CFRunLoopRunInMode")
	purego.RegisterLibFunc(&cgEventSourceKeyState, cg, "CGEventSourceKeyState")
	ptr, err := purego.Dlsym(cf, "kCFRunLoopDefaultMode")
	if err != nil {
		return err
	}
	// Dlsym returns the address of the CFStringRef variable; read its value.
	cfDefaultMode = *(*uintptr)(unsafe.Pointer(ptr))

	return nil
}

func loadSelectors() {
	selAlloc = objc.RegisterName("alloc")
	selInit = objc.RegisterName("init")
	selRelease = objc.RegisterName("release")
	selSharedApplication = objc.RegisterName("sharedApplication")
	selNextEventMatchingMask = objc.RegisterName("nextEventMatchingMask:untilDate:inMode:dequeue:")
	selSetActivationPolicy = objc.RegisterName("setActivationPolicy:")
	selFinishLaunching = objc.RegisterName("finishLaunching")
	selStringWithUTF8String = objc.RegisterName("stringWithUTF8String:")
	selUTF8String = objc.RegisterName("UTF8String")
	selInitWithContentRect = objc.RegisterName("initWithContentRect:styleMask:backing:defer:")
	selMakeKeyAndOrderFront = objc.RegisterName("makeKeyAndOrderFront:")
	selSetTitle = objc.RegisterName("setTitle:")
	selSetAcceptsMouseMoved = objc.RegisterName("setAcceptsMouseMovedEvents:")
	selSetReleasedWhenClosed = objc.RegisterName("setReleasedWhenClosed:")
	selCenter = objc.RegisterName("center")
	selContentView = objc.RegisterName("contentView")
	selBounds = objc.RegisterName("bounds")
	selIsVisible = objc.RegisterName("isVisible")
	selSendEvent = objc.RegisterName("sendEvent:")
	selFlushBuffer = objc.RegisterName("flushBuffer")
	selSetView = objc.RegisterName("setView:")
	selUpdate = objc.RegisterName("update")
	selMakeCurrentContext = objc.RegisterName("makeCurrentContext")
	selClearCurrentContext = objc.RegisterName("clearCurrentContext")
	selInitWithAttributes = objc.RegisterName("initWithAttributes:")
	selInitWithFormat = objc.RegisterName("initWithFormat:shareContext:")
	selSetValuesForParameter = objc.RegisterName("setValues:forParameter:")
	selType = objc.RegisterName("type")
	selKeyCode = objc.RegisterName("keyCode")
	selCharacters = objc.RegisterName("characters")
	selLocationInWindow = objc.RegisterName("locationInWindow")
	selWindow = objc.RegisterName("window")
}

func nsString(v string) objc.ID {
	return objc.ID(objc.GetClass("NSString")).Send(selStringWithUTF8String, v+"\x00")
}

// eventCharacters returns the text an NSEvent key-down produced.
func eventCharacters(ev objc.ID) []rune {
	str := objc.Send[objc.ID](ev, selCharacters)
	if str == 0 {
		return nil
	}
	p := objc.Send[uintptr](str, selUTF8String)
	if p == 0 {
		return nil
	}
	var b []byte
	for i := uintptr(0); ; i++ {
		c := *(*byte)(unsafe.Add(unsafe.Pointer(p), i))
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return []rune(string(b))
}
