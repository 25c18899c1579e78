package armviz

import (
	"time"
)

type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
	})
	app.UseSystem(System(timeSystem).InStage(Prelude).RunAlways())
}

func timeSystem(timeResource *Time) {
	timeResource.advance(time.Now())
}

func (t *Time) advance(now time.Time) {
	t.Dt = now.Sub(t.Time)
	t.Time = now
	t.Elapsed += t.Dt
}

// Ticker turns frame deltas into a whole number of fixed-interval ticks.
type Ticker struct {
	Interval time.Duration
	acc      time.Duration
}

// Advance adds dt and returns how many intervals have elapsed since the last
// call. Leftover time carries over.
func (tk *Ticker) Advance(dt time.Duration) int {
	if tk.Interval <= 0 {
		return 0
	}
	tk.acc += dt
	n := int(tk.acc / tk.Interval)
	tk.acc -= time.Duration(n) * tk.Interval
	return n
}

func (tk *Ticker) Reset() {
	tk.acc = 0
}
