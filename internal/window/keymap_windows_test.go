//go:build windows && !glfw

package window

import "testing"

func TestWin32Keys(t *testing.T) {
	checkKeyTable(t, win32Keys,
		map[int]KeyCode{
			'A':       KeyA,
			'Z':       KeyZ,
			'0':       KeyNum0,
			'9':       KeyNum9,
			vkEscape:  KeyEscape,
			vkReturn:  KeyEnter,
			vkBack:    KeyBackspace,
			vkMenu:    KeyAlt,
			vkLeft:    KeyLeft,
			vkF1:      KeyF1,
			vkF1 + 11: KeyF12,
		},
		[]int{'a', 0x60, 0xFF},
	)
}
