package armviz

import (
	"testing"

	"github.com/gekko3d/armviz/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hudText(t *testing.T, app *App, eid EntityId) string {
	t.Helper()
	text, ok := MakeQuery1[TextComponent](app.Commands()).Get(eid)
	require.True(t, ok)
	return text.Text
}

func TestHudModule(t *testing.T) {
	app, m := newArmApp(t, control.ModeInverse, HudModule{ShowJoints: true})
	hud, ok := Resource[Hud](app)
	require.True(t, ok)

	assert.Equal(t, "Inverse Control", hudText(t, app, hud.Mode))
	assert.Equal(t, "W: rotate  T: world controls on  G: reset target  R: reset robot", hudText(t, app, hud.Hint))
	assert.Empty(t, hudText(t, app, hud.Selected))

	m.ToggleControlMode()
	m.ToggleWorldControls()
	app.Step()
	assert.Contains(t, hudText(t, app, hud.Hint), "W: translate  T: world controls off")

	m.EnterMode(control.ModeSelect)
	m.SelectJoint("joint2")
	app.Step()
	assert.Equal(t, "Select", hudText(t, app, hud.Mode))
	assert.Empty(t, hudText(t, app, hud.Hint))
	assert.Equal(t, "Selected: joint2", hudText(t, app, hud.Selected))

	table, ok := MakeQuery1[UiTable](app.Commands()).Get(hud.Joints)
	require.True(t, ok)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "joint1", table.Rows[0][0])
	assert.Equal(t, "joint3", table.Rows[2][0])
}

func TestModeLabel(t *testing.T) {
	assert.Equal(t, "Forward Control", ModeLabel(control.ModeForward))
	assert.Equal(t, "View", ModeLabel(control.ModeView))
}

// monospace measures every rune as 10x20 pixels.
func monospace(text string, scale float32) (float32, float32) {
	return float32(len(text)) * 10 * scale, 20 * scale
}

func TestUiTable_Layout(t *testing.T) {
	table := &UiTable{
		Headers:  []string{"joint", "value"},
		Rows:     [][]string{{"j1", "0.500"}},
		Position: [2]float32{5, 7},
	}
	items := table.Layout(monospace)
	require.Len(t, items, 5)

	assert.Equal(t, "+-------+-------+", items[0].Text)
	assert.Equal(t, "| joint | value |", items[1].Text)
	assert.Equal(t, "|  j1   | 0.500 |", items[3].Text)
	assert.Equal(t, hudHighlightColor, items[1].Color)
	assert.Equal(t, [2]float32{5, 7}, items[0].Position)
	assert.Equal(t, [2]float32{5, 87}, items[4].Position)

	table.Hidden = true
	assert.Empty(t, table.Layout(monospace))
}

func TestHud_Notify(t *testing.T) {
	app, _ := newArmApp(t, control.ModeView, HudModule{})
	hud, _ := Resource[Hud](app)
	clock, _ := Resource[Time](app)

	hud.Notify("Pose saved to pose.json")
	app.Step()

	var notice EntityId
	MakeQuery2[TextComponent, LifetimeComponent](app.Commands()).Map(func(eid EntityId, text *TextComponent, lt *LifetimeComponent) bool {
		if text.Text == "Pose saved to pose.json" {
			notice = eid
		}
		return true
	})
	require.NotZero(t, notice)
	assert.Empty(t, hud.pending)

	clock.Dt = noticeDuration
	app.Step()
	assert.False(t, app.Commands().Exists(notice))
}
