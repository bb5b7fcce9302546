package luctisity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversTypedEvents(t *testing.T) {
	h := NewHub()
	var got []string
	h.In.OnStart(func() { got = append(got, "start") })
	h.In.OnProcess(func(d float64) { got = append(got, "process"); assert.Equal(t, 0.5, d) })
	h.Out.OnSay(func(target, text string) { got = append(got, "say:"+target+":"+text) })
	h.Out.OnPlaySound(func(target, sound string, mode PlayMode) {
		assert.Equal(t, PlayLoop, mode)
		got = append(got, "play:"+sound)
	})

	h.In.EmitStart()
	h.In.EmitProcess(0.5)
	h.Out.EmitSay("man", "hello")
	h.Out.EmitPlaySound("man", "fart", PlayLoop)

	assert.Equal(t, []string{"start", "process", "say:man:hello", "play:fart"}, got)
	assert.Zero(t, h.Pending())
}

func TestHubEmitFromHandlerIsQueued(t *testing.T) {
	h := NewHub()
	var order []string
	h.Out.OnTaskScheduled(func(task Task) {
		order = append(order, "scheduled")
		h.In.EmitTaskFinished(task)
		order = append(order, "scheduled-done")
	})
	h.In.OnTaskFinished(func(task Task) {
		order = append(order, "finished")
	})

	h.Out.EmitTaskScheduled(h.NewTask("noop", "", nil))
	assert.Equal(t, []string{"scheduled", "scheduled-done", "finished"}, order)
}

func TestHubsAreIndependent(t *testing.T) {
	a, b := NewHub(), NewHub()
	var aCount, bCount int
	a.In.OnStart(func() { aCount++ })
	b.In.OnStart(func() { bCount++ })

	a.In.EmitStart()
	assert.Equal(t, 1, aCount)
	assert.Equal(t, 0, bCount)
}

func TestHubMultipleSubscribers(t *testing.T) {
	h := NewHub()
	var c1, c2 int
	h.Out.OnStopAllSounds(func(string) { c1++ })
	h.Out.OnStopAllSounds(func(string) { c2++ })
	h.Out.EmitStopAllSounds("x")
	assert.Equal(t, 1, c1)
	assert.Equal(t, 1, c2)
}

func TestNewTaskIDs(t *testing.T) {
	h := NewHub()
	a := h.NewTask("wait", "man", map[string]any{"duration": 1})
	b := h.NewTask("wait", "man", nil)
	assert.NotEqual(t, a.ID, b.ID)
	require.NotNil(t, b.Data)
}

func TestTaskAccessors(t *testing.T) {
	task := Task{Data: map[string]any{
		"f":   1.5,
		"i":   2,
		"i64": int64(3),
		"s":   "troll",
	}}
	assert.Equal(t, 1.5, task.Float("f", 0))
	assert.Equal(t, 2.0, task.Float("i", 0))
	assert.Equal(t, 3.0, task.Float("i64", 0))
	assert.Equal(t, 9.0, task.Float("s", 9))
	assert.Equal(t, 9.0, task.Float("missing", 9))
	assert.Equal(t, "troll", task.String("s", ""))
	assert.Equal(t, "def", task.String("f", "def"))
	assert.True(t, task.Has("i"))
	assert.False(t, task.Has("nope"))
}
