package armviz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockModule struct {
	installed int
	order     *[]string
	name      string
}

func (m *mockModule) Install(app *App, cmd *Commands) {
	m.installed++
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
}

func TestAppBuilder_Build_InstallsInOrder(t *testing.T) {
	var order []string
	m1 := &mockModule{order: &order, name: "scene"}
	m2 := &mockModule{order: &order, name: "robot"}

	builder := NewAppBuilder().UseModule(m1).UseModule(m2)
	assert.Len(t, builder.modules, 2)

	app := builder.Build()
	assert.NotNil(t, app)
	assert.Equal(t, 1, m1.installed)
	assert.Equal(t, 1, m2.installed)
	assert.Equal(t, []string{"scene", "robot"}, order)
}

func TestAppBuilder_DefaultStages(t *testing.T) {
	app := NewAppBuilder().Build()

	var names []string
	for _, s := range app.stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Prelude", "PreUpdate", "Update", "PostUpdate", "PreRender", "Render", "PostRender", "Finale"}, names)
}
