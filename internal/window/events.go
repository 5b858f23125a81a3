package window

import "fmt"

// EventKind identifies a translated platform event.
type EventKind int

const (
	EventCharacter EventKind = iota
	EventResize
	EventKey
	EventMouseButton
	EventMouseMove
	EventClose
	EventDestroy
)

func (k EventKind) String() string {
	switch k {
	case EventCharacter:
		return "character"
	case EventResize:
		return "resize"
	case EventKey:
		return "key"
	case EventMouseButton:
		return "mouse-button"
	case EventMouseMove:
		return "mouse-move"
	case EventClose:
		return "close"
	case EventDestroy:
		return "destroy"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a platform event after translation into engine terms. Only the
// fields relevant to Kind are set.
type Event struct {
	Kind EventKind

	Char rune

	Width, Height int

	Key     KeyCode
	Button  MouseButton
	Pressed bool

	X, Y int
}

func CharacterEvent(r rune) Event { return Event{Kind: EventCharacter, Char: r} }

func ResizeEvent(width, height int) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}

func KeyEvent(key KeyCode, pressed bool) Event {
	return Event{Kind: EventKey, Key: key, Pressed: pressed}
}

func MouseButtonEvent(button MouseButton, pressed bool) Event {
	return Event{Kind: EventMouseButton, Button: button, Pressed: pressed}
}

func MouseMoveEvent(x, y int) Event { return Event{Kind: EventMouseMove, X: x, Y: y} }

func CloseEvent() Event { return Event{Kind: EventClose} }

func DestroyEvent() Event { return Event{Kind: EventDestroy} }
