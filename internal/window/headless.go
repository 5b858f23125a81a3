package window

// HeadlessWindow is a NativeWindow with no platform behind it. Events are
// queued with Inject and delivered on the next PollEvents, which makes it the
// driver for tests and display-less runs. It never has a GL context.
type HeadlessWindow struct {
	lifecycle

	owner  *Window
	queue  []Event
	keys   [KeyCount]bool
	swaps  int
	ctx    ContextOptions
	failGL error
}

// Headless is a Driver that creates a HeadlessWindow.
func Headless(owner *Window) (NativeWindow, error) {
	h := &HeadlessWindow{owner: owner}
	h.state = StateWindowCreated
	return h, nil
}

// FailContext makes the next CreateContext call return err.
func (h *HeadlessWindow) FailContext(err error) {
	h.failGL = err
}

// Inject queues ev for the next PollEvents. Key events also update the key
// state reported by IsKeyDown once they are polled.
func (h *HeadlessWindow) Inject(events ...Event) {
	h.queue = append(h.queue, events...)
}

// Swaps returns how many times RefreshScreen ran.
func (h *HeadlessWindow) Swaps() int {
	return h.swaps
}

// Context returns the options of the last successful CreateContext.
func (h *HeadlessWindow) Context() ContextOptions {
	return h.ctx
}

func (h *HeadlessWindow) CreateContext(opts ContextOptions) error {
	if err := h.failGL; err != nil {
		h.failGL = nil
		return err
	}
	if err := h.advance(StateContextCreated, StateWindowCreated); err != nil {
		return err
	}
	h.ctx = opts
	return nil
}

func (h *HeadlessWindow) Destroy() {
	if !h.beginDestroy() {
		return
	}
	h.queue = nil
}

func (h *HeadlessWindow) PollEvents() {
	if !h.live() {
		return
	}
	h.markPolled()

	queue := h.queue
	h.queue = nil
	for _, ev := range queue {
		if ev.Kind == EventKey && ev.Key.Valid() {
			h.keys[ev.Key] = ev.Pressed
		}
		h.owner.dispatch(ev)
	}
}

func (h *HeadlessWindow) RefreshScreen() {
	if h.live() {
		h.swaps++
	}
}

// Headless key codes are the KeyCode values themselves.
func (h *HeadlessWindow) ConvertNativeKeyCode(code int) KeyCode {
	if k := KeyCode(code); code >= 0 && code < int(KeyCount) && k.Valid() {
		return k
	}
	return KeyUnknown
}

func (h *HeadlessWindow) NativeKeyCode(key KeyCode) int {
	if !key.Valid() {
		return -1
	}
	return int(key)
}

func (h *HeadlessWindow) IsKeyDown(key KeyCode) bool {
	return key.Valid() && h.keys[key]
}

func (h *HeadlessWindow) GetProcAddress(string) uintptr {
	return 0
}
