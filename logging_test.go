package armviz

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut, "armviz", false)

	l.Debugf("hidden %d", 1)
	l.Infof("Mode: %s", "inverse")
	l.Warnf("The joint %q does not exist.", "joint9")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[armviz] INFO: Mode: inverse")
	assert.Contains(t, errOut.String(), `[armviz] WARN: The joint "joint9" does not exist.`)

	l.SetDebug(true)
	l.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown")
}

func TestApp_LoggerFallsBackToNop(t *testing.T) {
	app := NewApp()
	require.NotNil(t, app.Logger())
	assert.False(t, app.Logger().DebugEnabled())

	var nilApp *App
	assert.NotNil(t, nilApp.Logger())
}

func TestLoggingModule_UsesGivenLogger(t *testing.T) {
	var out bytes.Buffer
	l := NewWriterLogger(&out, &out, "", true)
	app := NewApp().UseModules(LoggingModule{Logger: l})

	app.Logger().Infof("hello")
	assert.Contains(t, out.String(), "INFO: hello")
}

func TestTicker_Advance(t *testing.T) {
	tk := Ticker{Interval: 10 * time.Millisecond}

	assert.Equal(t, 0, tk.Advance(4*time.Millisecond))
	assert.Equal(t, 1, tk.Advance(7*time.Millisecond))
	assert.Equal(t, 3, tk.Advance(29*time.Millisecond))
	tk.Reset()
	assert.Equal(t, 0, tk.Advance(9*time.Millisecond))

	var zero Ticker
	assert.Equal(t, 0, zero.Advance(time.Second))
}

func TestTime_Advance(t *testing.T) {
	start := time.Unix(100, 0)
	tr := &Time{Time: start}
	tr.advance(start.Add(16 * time.Millisecond))
	tr.advance(start.Add(40 * time.Millisecond))

	assert.Equal(t, 24*time.Millisecond, tr.Dt)
	assert.Equal(t, 40*time.Millisecond, tr.Elapsed)
}
