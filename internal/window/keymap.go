package window

// keyBinding pairs a platform key code with its engine KeyCode.
type keyBinding struct {
	native int
	key    KeyCode
}

// keyTable is a fixed bidirectional lookup between platform key codes and
// KeyCode values. Each variant builds one at package init.
type keyTable struct {
	toKey    map[int]KeyCode
	toNative [KeyCount]int
}

func newKeyTable(bindings []keyBinding) *keyTable {
	t := &keyTable{toKey: make(map[int]KeyCode, len(bindings))}
	for i := range t.toNative {
		t.toNative[i] = -1
	}
	for _, b := range bindings {
		t.toKey[b.native] = b.key
		if t.toNative[b.key] == -1 {
			t.toNative[b.key] = b.native
		}
	}
	return t
}

// key returns the KeyCode for a platform code, or KeyUnknown.
func (t *keyTable) key(native int) KeyCode {
	if k, ok := t.toKey[native]; ok {
		return k
	}
	return KeyUnknown
}

// native returns the platform code for k, or -1.
func (t *keyTable) native(k KeyCode) int {
	if !k.Valid() {
		return -1
	}
	return t.toNative[k]
}

// alphaNumericBindings maps A-Z and 0-9 onto consecutive platform codes
// starting at letterBase and digitBase.
func alphaNumericBindings(letterBase, digitBase int) []keyBinding {
	out := make([]keyBinding, 0, 36)
	for i := 0; i < 26; i++ {
		out = append(out, keyBinding{letterBase + i, KeyA + KeyCode(i)})
	}
	for i := 0; i < 10; i++ {
		out = append(out, keyBinding{digitBase + i, KeyNum0 + KeyCode(i)})
	}
	return out
}

// functionKeyBindings maps F1-F12 onto consecutive platform codes.
func functionKeyBindings(base int) []keyBinding {
	out := make([]keyBinding, 0, 12)
	for i := 0; i < 12; i++ {
		out = append(out, keyBinding{base + i, KeyF1 + KeyCode(i)})
	}
	return out
}
