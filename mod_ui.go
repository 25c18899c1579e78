package armviz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gekko3d/armviz/control"
	"github.com/gekko3d/armviz/render"
)

// HudModule shows the active mode, the inverse-mode key hint, the selected
// joint and, with ShowJoints, a table of joint values.
type HudModule struct {
	ShowJoints bool
}

// Hud holds the HUD entities.
type Hud struct {
	Mode     EntityId
	Hint     EntityId
	Selected EntityId
	Joints   EntityId

	pending []string
}

// noticeDuration is how long a Notify message stays on screen.
const noticeDuration = 3 * time.Second

// Notify shows a short-lived message above the key hint.
func (hud *Hud) Notify(text string) {
	hud.pending = append(hud.pending, text)
}

// UiTable is an ASCII table drawn as text lines. Position is the top-left
// corner in pixels.
type UiTable struct {
	Headers  []string
	Rows     [][]string
	Position [2]float32
	Scale    float32
	Hidden   bool
}

var (
	hudTextColor      = [4]float32{1, 1, 1, 1}
	hudHighlightColor = [4]float32{1, 1, 0, 1}
)

const inverseHint = "W: %s  T: world controls %s  G: reset target  R: reset robot"

func (mod HudModule) Install(app *App, cmd *Commands) {
	hud := &Hud{
		Mode:     cmd.AddEntity(TextComponent{Position: [2]float32{16, 16}, Scale: 1, Color: hudTextColor}),
		Hint:     cmd.AddEntity(TextComponent{Position: [2]float32{16, 16}, Scale: 0.7, Color: hudTextColor, Bottom: true}),
		Selected: cmd.AddEntity(TextComponent{Position: [2]float32{16, 48}, Scale: 0.8, Color: hudHighlightColor}),
	}
	if mod.ShowJoints {
		hud.Joints = cmd.AddEntity(UiTable{Headers: []string{"joint", "value"}, Position: [2]float32{16, 84}, Scale: 0.7})
	}
	app.addResources(hud)
	LifecycleModule{}.Install(app, cmd)
	app.UseSystem(
		System(hudSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// ModeLabel is the HUD caption for a mode.
func ModeLabel(m control.Mode) string {
	switch m {
	case control.ModeInverse:
		return "Inverse Control"
	case control.ModeForward:
		return "Forward Control"
	case control.ModeView:
		return "View"
	case control.ModeSelect:
		return "Select"
	}
	return m.String()
}

func hudSystem(cmd *Commands, hud *Hud, m *Manipulator) {
	for i, text := range hud.pending {
		cmd.AddEntity(
			TextComponent{Text: text, Position: [2]float32{16, 48 + 24*float32(i)}, Scale: 0.7, Color: hudHighlightColor, Bottom: true},
			LifetimeComponent{TimeLeft: noticeDuration, FadeOut: time.Second},
		)
	}
	hud.pending = hud.pending[:0]

	texts := MakeQuery1[TextComponent](cmd)
	if t, ok := texts.Get(hud.Mode); ok {
		t.Text = ModeLabel(m.Mode())
		if !m.Presenter().Loaded() {
			t.Text = "Loading..."
		}
	}
	if t, ok := texts.Get(hud.Hint); ok {
		t.Text = ""
		if m.Mode() == control.ModeInverse {
			onOff := "off"
			if m.WorldControlsEnabled() {
				onOff = "on"
			}
			t.Text = fmt.Sprintf(inverseHint, m.ControlMode().Toggle(), onOff)
		}
	}
	if t, ok := texts.Get(hud.Selected); ok {
		t.Text = ""
		if m.Selected() != "" {
			t.Text = "Selected: " + m.Selected()
		}
	}

	if hud.Joints == 0 {
		return
	}
	if table, ok := MakeQuery1[UiTable](cmd).Get(hud.Joints); ok {
		table.Rows = jointRows(m.Presenter().Configuration())
		table.Hidden = len(table.Rows) == 0
	}
}

func jointRows(cfg map[string]float64) [][]string {
	names := make([]string, 0, len(cfg))
	for n := range cfg {
		names = append(names, n)
	}
	sort.Strings(names)
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n, fmt.Sprintf("%.3f", cfg[n])})
	}
	return rows
}

// MeasureFunc returns the pixel size of text at a scale.
type MeasureFunc func(text string, scale float32) (float32, float32)

// Layout turns the table into text lines with columns padded to the widest
// cell. The header row is highlighted.
func (table *UiTable) Layout(measure MeasureFunc) []render.TextItem {
	if table.Hidden || len(table.Headers) == 0 {
		return nil
	}
	scale := table.Scale
	if scale <= 0 {
		scale = 1
	}
	_, lineH := measure("|", scale)
	spaceW, _ := measure(" ", scale)
	if spaceW <= 0 {
		spaceW = 1
	}

	// column widths in characters, padded to a whole number of spaces
	widths := make([]int, len(table.Headers))
	grow := func(i int, cell string) {
		w, _ := measure(cell, scale)
		n := int(w/spaceW+0.999) + 2
		if n > widths[i] {
			widths[i] = n
		}
	}
	for i, h := range table.Headers {
		grow(i, h)
	}
	for _, row := range table.Rows {
		for i, cell := range row {
			if i < len(widths) {
				grow(i, cell)
			}
		}
	}

	border := "+"
	for _, w := range widths {
		border += strings.Repeat("-", w) + "+"
	}
	row := func(cells []string) string {
		var b strings.Builder
		b.WriteString("|")
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			cw, _ := measure(cell, scale)
			pad := w - int(cw/spaceW+0.5)
			left := pad / 2
			b.WriteString(strings.Repeat(" ", left) + cell + strings.Repeat(" ", max(pad-left, 0)))
			b.WriteString("|")
		}
		return b.String()
	}

	x, y := table.Position[0], table.Position[1]
	line := func(text string, color [4]float32) render.TextItem {
		item := render.TextItem{Text: text, Position: [2]float32{x, y}, Scale: scale, Color: color}
		y += lineH
		return item
	}
	items := []render.TextItem{
		line(border, hudTextColor),
		line(row(table.Headers), hudHighlightColor),
		line(border, hudTextColor),
	}
	for _, r := range table.Rows {
		items = append(items, line(row(r), hudTextColor))
	}
	return append(items, line(border, hudTextColor))
}
