//go:build linux && !glfw

package window

import "testing"

func TestX11Keys(t *testing.T) {
	checkKeyTable(t, x11Keys,
		map[int]KeyCode{
			'a':        KeyA,
			'z':        KeyZ,
			'0':        KeyNum0,
			'9':        KeyNum9,
			xkEscape:   KeyEscape,
			xkReturn:   KeyEnter,
			xkSpace:    KeySpace,
			xkShiftR:   KeyShift,
			xkControlL: KeyCtrl,
			xkAltR:     KeyAlt,
			xkDown:     KeyDown,
			0xffbe:     KeyF1,
			0xffc9:     KeyF12,
		},
		// Upper-case keysyms are never produced by XLookupKeysym(ev, 0).
		[]int{'A', 'Z', 0xffff, 0},
	)
}
