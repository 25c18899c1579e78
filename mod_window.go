package armviz

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the shared GLFW window.
type WindowState struct {
	window       *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string

	// FramebufferWidth/Height are in pixels and may differ from the window
	// size on HiDPI displays.
	FramebufferWidth  int
	FramebufferHeight int
	// Resized is set for the frame in which the framebuffer size changed.
	Resized bool
}

// NewWindowState initializes GLFW and opens a window without a client API.
// Must be called from the main goroutine.
func NewWindowState(width, height int, title string) (*WindowState, error) {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "armviz"
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	fbw, fbh := win.GetFramebufferSize()
	return &WindowState{
		window:            win,
		WindowWidth:       width,
		WindowHeight:      height,
		windowTitle:       title,
		FramebufferWidth:  fbw,
		FramebufferHeight: fbh,
	}, nil
}

func (s *WindowState) Window() *glfw.Window { return s.window }

// Aspect is width over height of the framebuffer, 1 when minimized.
func (s *WindowState) Aspect() float32 {
	if s.FramebufferWidth <= 0 || s.FramebufferHeight <= 0 {
		return 1
	}
	return float32(s.FramebufferWidth) / float32(s.FramebufferHeight)
}

func (s *WindowState) Destroy() {
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
	glfw.Terminate()
}

// WindowModule publishes an existing WindowState and quits the App when the
// window is closed.
type WindowModule struct {
	State *WindowState
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}
	app.addResources(m.State)
	app.Logger().Infof("Window %dx%d %q", m.State.WindowWidth, m.State.WindowHeight, m.State.windowTitle)
	app.UseSystem(
		System(windowSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func windowSystem(app *App, s *WindowState) {
	if s.window.ShouldClose() {
		app.Quit()
		return
	}
	s.WindowWidth, s.WindowHeight = s.window.GetSize()
	s.resize(s.window.GetFramebufferSize())
}

func (s *WindowState) resize(w, h int) {
	s.Resized = w != s.FramebufferWidth || h != s.FramebufferHeight
	s.FramebufferWidth, s.FramebufferHeight = w, h
}
