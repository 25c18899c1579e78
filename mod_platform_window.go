package armviz

// PlatformWindowModule opens the GLFW window and installs it through
// WindowModule. Install is a no-op when a WindowState already exists.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}
	ws, err := NewWindowState(m.Width, m.Height, m.Title)
	if err != nil {
		app.Logger().Errorf("Window: %v", err)
		panic(err)
	}
	WindowModule{State: ws}.Install(app, cmd)
}
