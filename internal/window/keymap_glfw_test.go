//go:build glfw

package window

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestGLFWKeys(t *testing.T) {
	checkKeyTable(t, glfwKeys,
		map[int]KeyCode{
			int(glfw.KeyA):          KeyA,
			int(glfw.KeyZ):          KeyZ,
			int(glfw.Key0):          KeyNum0,
			int(glfw.Key9):          KeyNum9,
			int(glfw.KeyEscape):     KeyEscape,
			int(glfw.KeyRightShift): KeyShift,
			int(glfw.KeyLeftAlt):    KeyAlt,
			int(glfw.KeyF1):         KeyF1,
			int(glfw.KeyF12):        KeyF12,
		},
		[]int{int(glfw.KeyUnknown), int(glfw.KeyF13), int(glfw.KeyKP0)},
	)
}
