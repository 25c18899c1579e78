package armviz

import (
	"fmt"
)

// RendererTag marks that a renderer has been installed into the App.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer records name as the App's renderer. Installing a
// second, different renderer panics; reinstalling the same one is allowed.
func ensureSingleRenderer(app *App, name string) {
	tag, ok := Resource[RendererTag](app)
	if !ok {
		app.addResources(&RendererTag{Name: name})
		return
	}
	if tag.Name != name {
		app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
		panic(fmt.Sprintf("multiple renderers installed: %s and %s", tag.Name, name))
	}
}
