// Package app drives a Client through window creation, the tick loop and
// teardown.
package app

import (
	"fmt"
	"log/slog"

	"github.com/sengine/sengine/internal/gl"
	"github.com/sengine/sengine/internal/render"
	"github.com/sengine/sengine/internal/window"
)

// Client is the application embedded in the engine. The hooks run on the
// goroutine that called Run.
type Client interface {
	// WindowDescription returns the description the window is created from.
	// It is read after OnEarlyInit.
	WindowDescription() *window.Description

	OnEarlyInit() error
	OnInit(a *Application) error
	OnTick()
	OnDestroy()
	OnLateDestroy()
}

type Config struct {
	// Context is the rendering context requested from the window. The zero
	// value selects window.DefaultContext.
	Context window.ContextOptions

	// Driver selects the native window variant. nil selects window.Platform.
	Driver window.Driver

	Logger *slog.Logger

	// MaxFrames stops the tick loop after that many ticks. 0 runs until the
	// window stops.
	MaxFrames int
}

type Application struct {
	cfg      Config
	log      *slog.Logger
	win      *window.Window
	renderer *render.Renderer
	frames   int

	// previous is the render.Default replaced by setupRenderer.
	previous *render.Renderer
}

func New(cfg Config) *Application {
	if cfg.Context == (window.ContextOptions{}) {
		cfg.Context = window.DefaultContext
	}
	if cfg.Driver == nil {
		cfg.Driver = window.Platform
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Application{cfg: cfg, log: cfg.Logger}
}

// Window returns the application window. It is nil before Run creates it.
func (a *Application) Window() *window.Window { return a.win }

// Renderer returns the renderer installed as render.Default while Run has a
// live window.
func (a *Application) Renderer() *render.Renderer { return a.renderer }

// Frames returns the number of completed ticks.
func (a *Application) Frames() int { return a.frames }

// Run initialises the client and its window, ticks until the window stops
// and tears everything down. An initialisation failure is returned without
// running the tick loop or the client's destroy hooks.
func (a *Application) Run(c Client) error {
	if err := a.init(c); err != nil {
		return err
	}
	a.tick(c)
	a.destroy(c)
	return nil
}

func (a *Application) init(c Client) error {
	if err := c.OnEarlyInit(); err != nil {
		return fmt.Errorf("early init: %w", err)
	}

	desc := c.WindowDescription()
	if desc == nil {
		return fmt.Errorf("%w: client has no window description", window.ErrWindowCreation)
	}
	win, err := window.Create(*desc,
		window.WithDriver(a.cfg.Driver),
		window.WithLogger(a.log),
	)
	if err != nil {
		return err
	}
	a.win = win

	if err := win.CreateContext(a.cfg.Context); err != nil {
		a.abandonWindow()
		return err
	}
	a.setupRenderer()

	if err := c.OnInit(a); err != nil {
		a.abandonWindow()
		return fmt.Errorf("init: %w", err)
	}
	return nil
}

// setupRenderer installs a renderer for the new context. Without GL entry
// points only pass ordering is enforced.
func (a *Application) setupRenderer() {
	a.renderer = render.NewRenderer(nil)
	a.previous = render.Default()
	render.SetDefault(a.renderer)

	funcs, err := gl.Load(a.win.GetProcAddress)
	if err != nil {
		a.log.Warn("rendering disabled", slog.Any("err", err))
		return
	}
	ctx := render.NewContext(funcs, a.cfg.Context.Legacy)
	vendor, renderer, version := ctx.Info()
	a.log.Info("loaded OpenGL",
		slog.String("vendor", vendor),
		slog.String("renderer", renderer),
		slog.String("version", version),
	)
	desc := a.win.Description()
	ctx.SetViewportSize(desc.Width, desc.Height)
	a.renderer.SetContext(ctx)
}

// abandonWindow destroys a window whose initialisation failed.
func (a *Application) abandonWindow() {
	a.win.Destroy()
	a.win.SetRunning(false)
	a.restoreRenderer()
}

// restoreRenderer puts back the default renderer that was replaced for this
// window once its context is gone.
func (a *Application) restoreRenderer() {
	if a.renderer == nil {
		return
	}
	if render.Default() == a.renderer {
		render.SetDefault(a.previous)
	}
	a.previous = nil
}

func (a *Application) tick(c Client) {
	for a.win.IsRunning() {
		a.win.PollEvents()

		if a.win.IsKeyDown(window.KeyEscape) {
			a.log.Debug("escape pressed, stopping")
			a.win.SetRunning(false)
		}

		if ctx := a.renderer.Context(); ctx != nil {
			desc := a.win.Description()
			if w, h := ctx.ViewportSize(); w != desc.Width || h != desc.Height {
				ctx.SetViewportSize(desc.Width, desc.Height)
			}
		}

		c.OnTick()

		a.win.SwapBuffers()
		a.frames++

		if a.cfg.MaxFrames > 0 && a.frames >= a.cfg.MaxFrames {
			a.win.SetRunning(false)
		}
	}
}

func (a *Application) destroy(c Client) {
	c.OnDestroy()
	a.win.Destroy()
	c.OnLateDestroy()
	a.restoreRenderer()
}
