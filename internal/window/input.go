package window

import "strconv"

// KeyCode is a platform-independent keyboard key. Values between KeyUnknown
// and KeyCount (exclusive) are valid keys.
type KeyCode uint8

const (
	KeyUnknown KeyCode = iota

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	KeyNum0
	KeyNum1
	KeyNum2
	KeyNum3
	KeyNum4
	KeyNum5
	KeyNum6
	KeyNum7
	KeyNum8
	KeyNum9

	KeyEscape
	KeyEnter
	KeySpace
	KeyBackspace
	KeyTab
	KeyShift
	KeyCtrl
	KeyAlt
	KeyLeft
	KeyRight
	KeyUp
	KeyDown

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// KeyCount is the number of key codes, not a key.
	KeyCount
)

var keyNames = [...]string{
	KeyEscape:    "Escape",
	KeyEnter:     "Enter",
	KeySpace:     "Space",
	KeyBackspace: "Backspace",
	KeyTab:       "Tab",
	KeyShift:     "Shift",
	KeyCtrl:      "Ctrl",
	KeyAlt:       "Alt",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyUp:        "Up",
	KeyDown:      "Down",
}

// Valid reports whether k names a real key.
func (k KeyCode) Valid() bool {
	return k > KeyUnknown && k < KeyCount
}

func (k KeyCode) String() string {
	switch {
	case k == KeyUnknown:
		return "Unknown"
	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + (k - KeyA)))
	case k >= KeyNum0 && k <= KeyNum9:
		return "Num" + strconv.Itoa(int(k-KeyNum0))
	case k >= KeyF1 && k <= KeyF12:
		return "F" + strconv.Itoa(int(k-KeyF1)+1)
	case int(k) < len(keyNames) && keyNames[k] != "":
		return keyNames[k]
	}
	return "KeyCode(" + strconv.Itoa(int(k)) + ")"
}

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseButtonUnknown MouseButton = iota
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle

	// MouseButtonCount is the number of mouse buttons, not a button.
	MouseButtonCount
)

func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "Left"
	case MouseButtonRight:
		return "Right"
	case MouseButtonMiddle:
		return "Middle"
	case MouseButtonUnknown:
		return "Unknown"
	}
	return "MouseButton(" + strconv.Itoa(int(b)) + ")"
}
