package armviz

import (
	"time"
)

// LifetimeComponent removes its entity once TimeLeft has run out. Text on
// the same entity fades out over the last FadeOut of its lifetime.
type LifetimeComponent struct {
	TimeLeft time.Duration
	FadeOut  time.Duration
}

// Alpha is 1 until the fade-out starts, then falls linearly to 0.
func (lt LifetimeComponent) Alpha() float32 {
	if lt.FadeOut <= 0 || lt.TimeLeft >= lt.FadeOut {
		return 1
	}
	if lt.TimeLeft <= 0 {
		return 0
	}
	return float32(lt.TimeLeft) / float32(lt.FadeOut)
}

type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(lifetimeSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func lifetimeSystem(t *Time, cmd *Commands) {
	if t.Dt <= 0 {
		return
	}
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= t.Dt
		if lt.TimeLeft <= 0 {
			cmd.RemoveEntity(eid)
		}
		return true
	})
	MakeQuery2[LifetimeComponent, TextComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent, text *TextComponent) bool {
		text.Color[3] = lt.Alpha()
		return true
	})
}
