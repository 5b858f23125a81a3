package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/sengine/sengine/internal/app"
	"github.com/sengine/sengine/internal/window"
)

func TestEditorHeadless(t *testing.T) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name       string
		desc       window.Description
		screenshot string
		profile    string
		wantErr    bool
	}{
		{name: "runs frames", desc: window.Description{Title: "Editor", Width: 1270, Height: 720}},
		{name: "bad size", desc: window.Description{Title: "Editor"}, wantErr: true},
		{name: "screenshot needs a context", desc: window.Description{Title: "Editor", Width: 64, Height: 64}, screenshot: "out.png", wantErr: true},
		{name: "unknown profile", desc: window.Description{Title: "Editor", Width: 64, Height: 64}, profile: "block", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := &editor{desc: tt.desc, screenshot: tt.screenshot}
			cfg := app.Config{Driver: window.Headless, MaxFrames: 3}

			err := run(cfg, ed, tt.profile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("run err = %v, want error %v", err, tt.wantErr)
			}
			if tt.wantErr || ed.app == nil {
				return
			}
			if got := ed.app.Frames(); got != 3 {
				t.Fatalf("frames = %d, want 3", got)
			}
		})
	}
}
