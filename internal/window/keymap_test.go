package window

import (
	"strconv"
	"testing"
)

// checkKeyTable verifies a variant table against known codes and checks that
// every engine key survives a round trip through it.
func checkKeyTable(t *testing.T, tbl *keyTable, known map[int]KeyCode, unmapped []int) {
	t.Helper()

	for native, want := range known {
		if got := tbl.key(native); got != want {
			t.Errorf("key(%#x) = %s, want %s", native, got, want)
		}
	}
	for _, native := range unmapped {
		if got := tbl.key(native); got != KeyUnknown {
			t.Errorf("key(%#x) = %s, want Unknown", native, got)
		}
	}

	for k := KeyUnknown + 1; k < KeyCount; k++ {
		native := tbl.native(k)
		if native < 0 {
			t.Errorf("%s has no native code", k)
			continue
		}
		if got := tbl.key(native); got != k {
			t.Errorf("key(native(%s)) = %s", k, got)
		}
	}

	for native := range tbl.toKey {
		k := tbl.key(native)
		if got := tbl.key(tbl.native(k)); got != k {
			t.Errorf("round trip of %#x: %s became %s", native, k, got)
		}
	}

	if got := tbl.native(KeyUnknown); got != -1 {
		t.Errorf("native(Unknown) = %d, want -1", got)
	}
	if got := tbl.native(KeyCount); got != -1 {
		t.Errorf("native(KeyCount) = %d, want -1", got)
	}
}

func TestNewKeyTable(t *testing.T) {
	tbl := newKeyTable([]keyBinding{
		{10, KeyShift},
		{11, KeyShift},
		{20, KeyA},
	})

	tests := []struct {
		native int
		want   KeyCode
	}{
		{10, KeyShift},
		{11, KeyShift},
		{20, KeyA},
		{21, KeyUnknown},
		{-1, KeyUnknown},
	}
	for _, tt := range tests {
		if got := tbl.key(tt.native); got != tt.want {
			t.Errorf("key(%d) = %s, want %s", tt.native, got, tt.want)
		}
	}

	// The first binding wins the reverse direction.
	if got := tbl.native(KeyShift); got != 10 {
		t.Errorf("native(Shift) = %d, want 10", got)
	}
	if got := tbl.native(KeyB); got != -1 {
		t.Errorf("native(B) = %d, want -1", got)
	}
}

func TestAlphaNumericBindings(t *testing.T) {
	tbl := newKeyTable(append(alphaNumericBindings('A', '0'), functionKeyBindings(0x70)...))

	checks := map[int]KeyCode{
		'A': KeyA, 'M': KeyM, 'Z': KeyZ,
		'0': KeyNum0, '5': KeyNum5, '9': KeyNum9,
		0x70: KeyF1, 0x7B: KeyF12,
	}
	for native, want := range checks {
		if got := tbl.key(native); got != want {
			t.Errorf("key(%#x) = %s, want %s", native, got, want)
		}
	}
}

func TestHeadlessKeyCodes(t *testing.T) {
	h := &HeadlessWindow{}
	for k := KeyUnknown + 1; k < KeyCount; k++ {
		if got := h.ConvertNativeKeyCode(h.NativeKeyCode(k)); got != k {
			t.Errorf("round trip of %s = %s", k, got)
		}
	}
	for _, code := range []int{-1, 0, int(KeyCount), 1000} {
		if got := h.ConvertNativeKeyCode(code); got != KeyUnknown {
			t.Errorf("ConvertNativeKeyCode(%d) = %s, want Unknown", code, got)
		}
	}
}

func TestKeyCodeString(t *testing.T) {
	tests := []struct {
		key  KeyCode
		want string
	}{
		{KeyUnknown, "Unknown"},
		{KeyA, "A"},
		{KeyZ, "Z"},
		{KeyNum7, "Num7"},
		{KeyF1, "F1"},
		{KeyF12, "F12"},
		{KeyEscape, "Escape"},
		{KeyCount, "KeyCode(" + strconv.Itoa(int(KeyCount)) + ")"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}
