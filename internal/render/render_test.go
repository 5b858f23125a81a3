package render

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/sengine/sengine/internal/assert"
)

func TestPass2D(t *testing.T) {
	tests := []struct {
		name    string
		steps   string // b=Begin d=Draw e=End
		wantErr []bool
	}{
		{name: "begin draw end", steps: "bde", wantErr: []bool{false, false, false}},
		{name: "several draws", steps: "bddde", wantErr: []bool{false, false, false, false, false}},
		{name: "draw without begin", steps: "d", wantErr: []bool{true}},
		{name: "draw after end", steps: "bded", wantErr: []bool{false, false, false, true}},
		{name: "double begin", steps: "bb", wantErr: []bool{false, true}},
		{name: "end at rest", steps: "eebde", wantErr: []bool{false, false, false, false, false}},
		{name: "end clears failed begin", steps: "bbebd", wantErr: []bool{false, true, false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Pass2D
			for i, step := range tt.steps {
				var err error
				switch step {
				case 'b':
					err = p.Begin()
				case 'd':
					err = p.Draw()
				case 'e':
					p.End()
				}
				if got := err != nil; got != tt.wantErr[i] {
					t.Fatalf("step %d (%c): err = %v, want error %v", i, step, err, tt.wantErr[i])
				}
				if err != nil && !errors.Is(err, ErrPassOrder) {
					t.Fatalf("step %d (%c): err = %v, want ErrPassOrder", i, step, err)
				}
			}
		})
	}
}

func captureAsserts(t *testing.T) (aborts *int, logPath string) {
	t.Helper()
	logPath = filepath.Join(t.TempDir(), "AssertLog.txt")
	prev := assert.LogPath()
	assert.SetLogPath(logPath)
	n := new(int)
	restore := assert.SetAbortFunc(func() { *n++ })
	t.Cleanup(func() {
		restore()
		assert.SetLogPath(prev)
	})
	return n, logPath
}

func TestRendererOrdering(t *testing.T) {
	t.Run("well ordered frame", func(t *testing.T) {
		aborts, _ := captureAsserts(t)
		r := NewRenderer(nil)

		for frame := 0; frame < 3; frame++ {
			r.BeginRender2D(Camera2D{})
			r.Draw2D()
			r.EndRender2D()
		}
		if *aborts != 0 {
			t.Fatalf("aborted %d times", *aborts)
		}
	})

	t.Run("draw without begin aborts", func(t *testing.T) {
		aborts, logPath := captureAsserts(t)
		r := NewRenderer(nil)

		r.Draw2D()

		if *aborts != 1 {
			t.Fatalf("aborted %d times, want 1", *aborts)
		}
		data, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "render_test.go") {
			t.Errorf("assert log does not point at the caller:\n%s", data)
		}
		if !strings.Contains(string(data), "draw outside a pass") {
			t.Errorf("assert log misses the reason:\n%s", data)
		}
	})

	t.Run("begin twice aborts", func(t *testing.T) {
		aborts, _ := captureAsserts(t)
		r := NewRenderer(nil)

		r.BeginRender2D(Camera2D{})
		r.BeginRender2D(Camera2D{})

		if *aborts != 1 {
			t.Fatalf("aborted %d times, want 1", *aborts)
		}
	})

	t.Run("3d pass is a no-op", func(t *testing.T) {
		aborts, _ := captureAsserts(t)
		r := NewRenderer(nil)

		r.BeginRender3D(Camera3D{})
		r.EndRender3D()
		r.Draw2D()

		if *aborts != 1 {
			t.Fatalf("aborted %d times, want 1", *aborts)
		}
	})
}

func TestDefaultRenderer(t *testing.T) {
	aborts, logPath := captureAsserts(t)
	prev := Default()
	SetDefault(NewRenderer(nil))
	t.Cleanup(func() { SetDefault(prev) })

	BeginRender2D(Camera2D{})
	Draw2D()
	EndRender2D()
	if *aborts != 0 {
		t.Fatalf("aborted %d times in an ordered frame", *aborts)
	}

	Draw2D()
	if *aborts != 1 {
		t.Fatalf("aborted %d times, want 1", *aborts)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "render_test.go") {
		t.Errorf("assert log does not point at the caller:\n%s", data)
	}
}

func TestContext(t *testing.T) {
	t.Run("setup enables blending", func(t *testing.T) {
		g := &recordingGL{}
		NewContext(g, true)
		want := []string{"Enable(0xbe2)", "BlendFunc(0x302,0x303)"}
		if !slices.Equal(g.calls, want) {
			t.Fatalf("calls = %v, want %v", g.calls, want)
		}
	})

	t.Run("viewport legacy", func(t *testing.T) {
		g := &recordingGL{}
		c := NewContext(g, true)
		g.reset()

		c.SetViewportSize(1270, 720)

		want := []string{
			"Viewport(0,0,1270,720)",
			"MatrixMode(0x1701)",
			"LoadIdentity",
			"Ortho(0,1270,720,0,-1,1)",
			"MatrixMode(0x1700)",
			"LoadIdentity",
		}
		if !slices.Equal(g.calls, want) {
			t.Fatalf("calls = %v, want %v", g.calls, want)
		}
	})

	t.Run("viewport core", func(t *testing.T) {
		g := &recordingGL{}
		c := NewContext(g, false)
		g.reset()

		c.SetViewportSize(800, 600)
		c.DrawQuad(1, 2, 3, Colour{1, 1, 1, 1})
		c.ApplyCamera(Camera2D{X: 4})

		want := []string{"Viewport(0,0,800,600)"}
		if !slices.Equal(g.calls, want) {
			t.Fatalf("calls = %v, want %v", g.calls, want)
		}
	})

	t.Run("clear", func(t *testing.T) {
		g := &recordingGL{}
		c := NewContext(g, false)
		g.reset()

		c.SetClearColor(Colour{0.25, 0.6, 0.75, 1})
		c.Clear()

		want := []string{"ClearColor(0.25,0.6,0.75,1)", "Clear(0x4100)"}
		if !slices.Equal(g.calls, want) {
			t.Fatalf("calls = %v, want %v", g.calls, want)
		}
	})

	t.Run("quad", func(t *testing.T) {
		g := &recordingGL{}
		c := NewContext(g, true)
		g.reset()

		c.DrawQuad(10, 20, 50, Colour{1, 0, 0, 1})

		want := []string{
			"PushMatrix",
			"Translatef(10,20,0)",
			"Scalef(50,50,1)",
			"Color4f(1,0,0,1)",
			"Begin(0x7)",
			"Vertex2f(-0.5,-0.5)",
			"Vertex2f(0.5,-0.5)",
			"Vertex2f(0.5,0.5)",
			"Vertex2f(-0.5,0.5)",
			"End",
			"PopMatrix",
		}
		if !slices.Equal(g.calls, want) {
			t.Fatalf("calls = %v, want %v", g.calls, want)
		}
	})

	t.Run("camera zoom defaults to one", func(t *testing.T) {
		g := &recordingGL{}
		c := NewContext(g, true)
		g.reset()

		c.ApplyCamera(Camera2D{X: 5, Y: -2})

		want := []string{"MatrixMode(0x1700)", "LoadIdentity", "Scalef(1,1,1)", "Translatef(-5,2,0)"}
		if !slices.Equal(g.calls, want) {
			t.Fatalf("calls = %v, want %v", g.calls, want)
		}
	})

	t.Run("renderer applies camera on begin", func(t *testing.T) {
		captureAsserts(t)
		g := &recordingGL{}
		r := NewRenderer(NewContext(g, true))
		g.reset()

		r.BeginRender2D(Camera2D{Zoom: 2})
		r.EndRender2D()

		if !slices.Contains(g.calls, "Scalef(2,2,1)") {
			t.Fatalf("camera not applied: %v", g.calls)
		}
	})

	t.Run("info", func(t *testing.T) {
		c := NewContext(&recordingGL{}, false)
		vendor, renderer, version := c.Info()
		if vendor != "string-0x1f00" || renderer != "string-0x1f01" || version != "string-0x1f02" {
			t.Fatalf("Info() = %q, %q, %q", vendor, renderer, version)
		}
	})
}

func TestScreenshot(t *testing.T) {
	t.Run("flips rows", func(t *testing.T) {
		g := &recordingGL{fill: func(row int) byte { return byte(row) }}
		c := NewContext(g, false)
		c.SetViewportSize(2, 3)

		img, err := c.Screenshot()
		if err != nil {
			t.Fatal(err)
		}
		rgba := img.(*image.RGBA)
		if got := rgba.Bounds(); got != image.Rect(0, 0, 2, 3) {
			t.Fatalf("bounds = %v", got)
		}
		// GL row 0 is the bottom of the image.
		for y := 0; y < 3; y++ {
			if got, want := rgba.RGBAAt(0, y).R, byte(2-y); got != want {
				t.Errorf("row %d red = %d, want %d", y, got, want)
			}
		}
	})

	t.Run("empty viewport", func(t *testing.T) {
		c := NewContext(&recordingGL{}, false)
		if _, err := c.Screenshot(); err == nil {
			t.Fatal("Screenshot of a 0x0 viewport succeeded")
		}
	})
}
