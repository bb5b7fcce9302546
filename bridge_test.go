package luctisity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPrompter struct {
	says, asks []string
}

func (p *recordingPrompter) Say(target, text string) { p.says = append(p.says, target+": "+text) }
func (p *recordingPrompter) Ask(target, text string) { p.asks = append(p.asks, target+": "+text) }
func (p *recordingPrompter) Blocking() bool          { return false }

type bridgeFixture struct {
	bridge   *TaskBridge
	clock    *ManualClock
	audio    *AudioManager
	render   *RenderManager
	prompter *recordingPrompter
	finished []Task
}

func newBridgeFixture(t *testing.T) *bridgeFixture {
	t.Helper()
	f := &bridgeFixture{clock: NewManualClock(epoch), prompter: &recordingPrompter{}}
	f.audio, _ = newTestAudio(t)
	f.render = NewRenderManager()
	require.True(t, f.render.Init(newRecordingDevice(640, 360)))
	f.bridge = NewTaskBridge(BridgeConfig{
		Render:   f.render,
		Audio:    f.audio,
		Timers:   NewTimers(f.clock),
		Prompter: f.prompter,
	})
	f.bridge.Hub().In.OnTaskFinished(func(task Task) { f.finished = append(f.finished, task) })
	return f
}

func (f *bridgeFixture) schedule(typ, target string, data map[string]any) Task {
	task := f.bridge.Hub().NewTask(typ, target, data)
	f.bridge.Hub().Out.EmitTaskScheduled(task)
	return task
}

func TestBridgeWaitTaskFinishesOnce(t *testing.T) {
	f := newBridgeFixture(t)
	task := f.schedule(TaskWait, "man", map[string]any{"duration": 1.0})

	f.bridge.Timers().Fire()
	assert.Empty(t, f.finished)
	f.clock.Advance(999 * time.Millisecond)
	f.bridge.Timers().Fire()
	assert.Empty(t, f.finished)

	f.clock.Advance(time.Millisecond)
	f.bridge.Timers().Fire()
	f.clock.Advance(time.Second)
	f.bridge.Timers().Fire()

	require.Len(t, f.finished, 1)
	assert.Equal(t, task.ID, f.finished[0].ID)
	assert.Zero(t, f.bridge.Pending())
}

func TestBridgeAbandonCancelsWait(t *testing.T) {
	f := newBridgeFixture(t)
	task := f.schedule(TaskWait, "", map[string]any{"duration": 0.5})
	assert.Equal(t, 1, f.bridge.Pending())

	assert.True(t, f.bridge.Abandon(task.ID))
	assert.False(t, f.bridge.Abandon(task.ID))
	f.clock.Advance(time.Second)
	f.bridge.Timers().Fire()
	assert.Empty(t, f.finished)
}

func TestBridgeWaitsWithoutIDsKeepSeparateTimers(t *testing.T) {
	f := newBridgeFixture(t)
	short := Task{Type: TaskWait, Data: map[string]any{"duration": 0.5}}
	long := Task{Type: TaskWait, Data: map[string]any{"duration": 1.0}}
	f.bridge.Hub().Out.EmitTaskScheduled(short)
	f.bridge.Hub().Out.EmitTaskScheduled(long)
	assert.Equal(t, 2, f.bridge.Pending())
	assert.Equal(t, 2, f.bridge.Timers().Pending())

	f.clock.Advance(500 * time.Millisecond)
	f.bridge.Timers().Fire()
	assert.Len(t, f.finished, 1)
	assert.Equal(t, 1, f.bridge.Pending())

	assert.True(t, f.bridge.Abandon(0))
	assert.Zero(t, f.bridge.Pending())
	f.clock.Advance(time.Second)
	f.bridge.Timers().Fire()
	assert.Len(t, f.finished, 1)
}

func TestBridgeUnknownTaskCompletesImmediately(t *testing.T) {
	f := newBridgeFixture(t)
	task := f.schedule("dance", "troll", nil)
	require.Len(t, f.finished, 1)
	assert.Equal(t, task.ID, f.finished[0].ID)
}

func TestBridgeCustomHandler(t *testing.T) {
	f := newBridgeFixture(t)
	var held Task
	f.bridge.Handle("dance", func(b *TaskBridge, task Task) { held = task })

	f.schedule("dance", "troll", nil)
	assert.Empty(t, f.finished)
	f.bridge.Complete(held)
	assert.Len(t, f.finished, 1)
}

func TestBridgePlaySoundModes(t *testing.T) {
	f := newBridgeFixture(t)
	out := f.bridge.Hub().Out

	out.EmitPlaySound("man", "fart", PlayDefault)
	st, _ := f.audio.Track("fart")
	assert.True(t, st.Playing)
	assert.False(t, st.Looping)

	out.EmitPlaySound("man", "quandale", PlayLoop)
	st, _ = f.audio.Track("quandale")
	assert.True(t, st.Playing)
	assert.True(t, st.Looping)

	out.EmitPlaySound("man", "fart", PlayStop)
	st, _ = f.audio.Track("fart")
	assert.False(t, st.Playing)

	out.EmitStopAllSounds("man")
	st, _ = f.audio.Track("quandale")
	assert.False(t, st.Playing)
}

func TestBridgeSayAndAskReachPrompter(t *testing.T) {
	f := newBridgeFixture(t)
	f.bridge.Hub().Out.EmitSay("man", "hello")
	f.bridge.Hub().Out.EmitAsk("troll", "name?")
	assert.Equal(t, []string{"man: hello"}, f.prompter.says)
	assert.Equal(t, []string{"troll: name?"}, f.prompter.asks)
}

func TestBridgeTweenTask(t *testing.T) {
	f := newBridgeFixture(t)
	d := NewDrawable("man", "man", f.render.Device(), testTextures())
	f.render.AddDrawable(d)

	f.schedule(TaskTween, "man", map[string]any{"x": 100.0, "opacity": 0, "duration": 1.0})
	assert.Empty(t, f.finished)

	f.bridge.Animator().Update(0.5)
	assert.Empty(t, f.finished)
	f.bridge.Animator().Update(0.5)
	require.Len(t, f.finished, 1)
	assert.InDelta(t, 100, d.X, 0.5)
	assert.InDelta(t, 0, d.Opacity, 0.5)
}

func TestBridgeTweenWithoutDurationOnFirstFrame(t *testing.T) {
	f := newBridgeFixture(t)
	d := NewDrawable("hero", "man", f.render.Device(), testTextures())
	f.render.AddDrawable(d)

	f.schedule(TaskTween, "hero", map[string]any{"x": 300})
	f.bridge.Animator().Update(0)

	require.Len(t, f.finished, 1)
	assert.Equal(t, 300.0, d.X)
}

func TestBridgeTweenMissingDrawableCompletes(t *testing.T) {
	f := newBridgeFixture(t)
	f.schedule(TaskTween, "ghost", map[string]any{"x": 1.0})
	assert.Len(t, f.finished, 1)
	assert.Zero(t, f.bridge.Animator().Len())
}

func TestBridgeTextureTask(t *testing.T) {
	f := newBridgeFixture(t)
	d := NewDrawable("man", "man", f.render.Device(), testTextures())
	f.render.AddDrawable(d)

	f.schedule(TaskTexture, "man", map[string]any{"texture": "troll"})
	assert.Equal(t, "troll", d.TextureKey())
	assert.Len(t, f.finished, 1)
}

func TestBridgeAudioTasks(t *testing.T) {
	f := newBridgeFixture(t)
	f.audio.CreateChannel("man")

	f.schedule(TaskRoute, "man", map[string]any{"sound": "fart"})
	assert.Equal(t, []string{"fart"}, f.audio.ChannelTracks("man"))

	f.schedule(TaskEffects, "", map[string]any{"channel": "man", "speed": 2.0, "pan": -1})
	fx, ok := f.audio.ChannelEffects("man")
	require.True(t, ok)
	assert.Equal(t, 2.0, fx.Speed)
	assert.Equal(t, -1.0, fx.Pan)
	assert.Equal(t, DefaultEffects.Pitch, fx.Pitch)

	f.schedule(TaskVolume, "man", map[string]any{"volume": 0.5})
	params, _ := f.audio.ChannelParams("man")
	assert.InDelta(t, 0.5, params.Volume, 1e-9)

	assert.Len(t, f.finished, 3)
}

func TestBridgeWithoutEngines(t *testing.T) {
	b := NewTaskBridge(BridgeConfig{})
	var n int
	b.Hub().In.OnTaskFinished(func(Task) { n++ })
	for _, typ := range []string{TaskTween, TaskTexture, TaskEffects, TaskVolume, TaskRoute} {
		b.Hub().Out.EmitTaskScheduled(b.Hub().NewTask(typ, "x", nil))
	}
	b.Hub().Out.EmitPlaySound("x", "fart", PlayOnce)
	b.Hub().Out.EmitStopAllSounds("x")
	assert.Equal(t, 5, n)
}
