package armviz

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResource1 struct {
	name string
}
type mockResource2 struct {
	name string
}

type counterModule struct{}

type counter struct {
	calls int
}

func (counterModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&counter{})
	app.UseSystem(System(func(c *counter, a *App) {
		c.calls++
		if c.calls == 3 {
			a.Quit()
		}
	}).InStage(Update).RunAlways())
}

func TestApp_addResources(t *testing.T) {
	app := NewApp()

	r1 := &mockResource1{name: "Resource1"}
	app.addResources(r1)
	assert.Contains(t, app.resources, reflect.TypeOf(r1).Elem())

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(r1)), func() {
		app.addResources(r1)
	})

	r2 := &mockResource2{name: "Resource2"}
	app.addResources(r2)

	got, ok := Resource[mockResource2](app)
	require.True(t, ok)
	assert.Same(t, r2, got)

	_, ok = Resource[counter](app)
	assert.False(t, ok)
}

func TestApp_RunStopsOnQuit(t *testing.T) {
	app := NewApp().UseModules(counterModule{})
	app.Run()

	c, ok := Resource[counter](app)
	require.True(t, ok)
	assert.Equal(t, 3, c.calls)
	assert.Equal(t, uint64(3), app.Frame())
}

func TestApp_UnresolvedSystemDependencyPanics(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(*mockResource1) {}))
	assert.Panics(t, app.Step)
}

func TestApp_UseSystemUnknownStagePanics(t *testing.T) {
	app := NewApp()
	assert.Panics(t, func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Nowhere"}))
	})
}

func TestApp_UseStage(t *testing.T) {
	custom := Stage{Name: "Solve"}
	app := NewApp().UseStage(custom, AfterStage(Update))

	idx := -1
	for i, s := range app.stages {
		if s.Name == custom.Name {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	assert.Equal(t, Update.Name, app.stages[idx-1].Name)
	assert.NotPanics(t, func() { app.UseSystem(System(func() {}).InStage(custom)) })
}

func TestCommands_FlushOrdering(t *testing.T) {
	type tag struct{ n int }
	type extra struct{}

	app := NewApp()
	cmd := app.Commands()

	eid := cmd.AddEntity(tag{n: 1})
	assert.False(t, cmd.Exists(eid), "entities appear on flush")
	app.FlushCommands()
	assert.True(t, cmd.Exists(eid))

	cmd.AddComponents(eid, extra{})
	app.FlushCommands()
	assert.Len(t, cmd.GetAllComponents(eid), 2)

	cmd.RemoveComponents(eid, extra{})
	app.FlushCommands()
	assert.Len(t, cmd.GetAllComponents(eid), 1)

	cmd.RemoveEntity(eid)
	cmd.AddComponents(eid, extra{})
	app.FlushCommands()
	assert.False(t, cmd.Exists(eid))
	assert.Nil(t, cmd.GetAllComponents(eid))
}
