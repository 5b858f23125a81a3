package gl

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		next := uintptr(0x1000)
		addrs, err := resolve(func(string) uintptr {
			next += 8
			return next
		})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if len(addrs) != len(entryPoints) {
			t.Fatalf("resolved %d entry points, want %d", len(addrs), len(entryPoints))
		}
	})

	t.Run("missing names reported together", func(t *testing.T) {
		_, err := resolve(func(name string) uintptr {
			if name == "glBegin" || name == "glReadPixels" {
				return 0
			}
			return 0x1000
		})
		if !errors.Is(err, ErrMissingProc) {
			t.Fatalf("err = %v, want ErrMissingProc", err)
		}
		for _, name := range []string{"glBegin", "glReadPixels"} {
			if !strings.Contains(err.Error(), name) {
				t.Errorf("error %q does not name %s", err, name)
			}
		}
	})

	t.Run("no context", func(t *testing.T) {
		_, err := Load(func(string) uintptr { return 0 })
		if !errors.Is(err, ErrMissingProc) {
			t.Fatalf("Load err = %v, want ErrMissingProc", err)
		}
	})
}

func TestGostring(t *testing.T) {
	b := []byte("4.6.0 NVIDIA\x00trailing")
	if got := gostring(&b[0]); got != "4.6.0 NVIDIA" {
		t.Fatalf("gostring = %q", got)
	}
	if got := gostring(nil); got != "" {
		t.Fatalf("gostring(nil) = %q", got)
	}
}
