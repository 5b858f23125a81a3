package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/pkg/profile"
	"github.com/sengine/sengine/internal/app"
	"github.com/sengine/sengine/internal/assert"
	"github.com/sengine/sengine/internal/render"
	"github.com/sengine/sengine/internal/window"
)

// editor is the engine's own client: it clears the screen and draws a quad
// under the cursor inside a 2D pass every tick.
type editor struct {
	desc       window.Description
	screenshot string

	app    *app.Application
	cursor [2]float32
	err    error
}

func (e *editor) WindowDescription() *window.Description { return &e.desc }

func (e *editor) OnEarlyInit() error {
	if e.desc.Width <= 0 || e.desc.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", e.desc.Width, e.desc.Height)
	}
	return nil
}

func (e *editor) OnInit(a *app.Application) error {
	e.app = a
	e.cursor = [2]float32{float32(e.desc.Width) / 2, float32(e.desc.Height) / 2}

	win := a.Window()
	win.SetMouseMoveCallback(func(x, y int) {
		e.cursor = [2]float32{float32(x), float32(y)}
	})
	win.SetResizeCallback(func(width, height int) {
		slog.Debug("resized", slog.Int("width", width), slog.Int("height", height))
	})

	if ctx := a.Renderer().Context(); ctx != nil {
		ctx.SetClearColor(render.Colour{R: 0.25, G: 0.6, B: 0.75, A: 1})
	}
	return nil
}

func (e *editor) OnTick() {
	ctx := e.app.Renderer().Context()
	if ctx != nil {
		ctx.Clear()
	}

	render.BeginRender2D(render.Camera2D{})
	render.Draw2D()
	if ctx != nil {
		ctx.DrawQuad(e.cursor[0], e.cursor[1], 100, render.Colour{R: 1, G: 0.8, B: 0.2, A: 1})
	}
	render.EndRender2D()

	if e.screenshot != "" {
		e.err = e.takeScreenshot(ctx)
		e.screenshot = ""
		e.app.Window().SetRunning(false)
	}
}

func (e *editor) takeScreenshot(ctx *render.Context) error {
	if ctx == nil {
		return errors.New("screenshot: no rendering context")
	}
	img, err := ctx.Screenshot()
	if err != nil {
		return err
	}

	file, err := os.Create(e.screenshot)
	if err != nil {
		return fmt.Errorf("create screenshot file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode screenshot: %w", err)
	}
	slog.Info("saved screenshot", slog.String("path", e.screenshot))
	return nil
}

func (e *editor) OnDestroy() {}

func (e *editor) OnLateDestroy() {
	slog.Info("editor closed", slog.Int("frames", e.app.Frames()))
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	title := fs.String("title", "Editor", "window title")
	width := fs.Int("width", 1270, "window width")
	height := fs.Int("height", 720, "window height")
	glMajor := fs.Int("gl-major", window.DefaultContext.Major, "OpenGL major version")
	glMinor := fs.Int("gl-minor", window.DefaultContext.Minor, "OpenGL minor version")
	legacy := fs.Bool("legacy", false, "request a legacy context (needed to draw the quad)")
	headless := fs.Bool("headless", false, "run without a platform window")
	frames := fs.Int("frames", 0, "stop after this many frames (0 runs until closed)")
	assertLog := fs.String("assert-log", assert.DefaultLogPath, "file assertion failures are appended to")
	screenshot := fs.String("screenshot", "", "save a PNG of the first frame to this path and exit")
	profileMode := fs.String("profile", "", "profile the run: cpu, mem or trace")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn or error")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("parse log level: %v", err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	assert.SetLogPath(*assertLog)

	cfg := app.Config{
		Context:   window.ContextOptions{Major: *glMajor, Minor: *glMinor, Legacy: *legacy},
		MaxFrames: *frames,
	}
	if *headless {
		cfg.Driver = window.Headless
	}

	ed := &editor{
		desc:       window.Description{Title: *title, Width: *width, Height: *height},
		screenshot: *screenshot,
	}
	if err := run(cfg, ed, *profileMode); err != nil {
		slog.Error("editor", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg app.Config, ed *editor, profileMode string) error {
	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "trace":
		defer profile.Start(profile.TraceProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", profileMode)
	}

	if err := app.New(cfg).Run(ed); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	return ed.err
}
