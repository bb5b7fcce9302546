package luctisity

import "time"

// TaskHandler carries out a scheduled task. It must eventually call
// b.Complete(task), synchronously or later.
type TaskHandler func(b *TaskBridge, task Task)

// BridgeConfig wires a TaskBridge. Nil fields get defaults: a new Hub,
// Timers on the system clock, an empty Animator and a LogPrompter. Render and
// Audio may be nil; tasks and events aimed at them are then dropped.
type BridgeConfig struct {
	Hub      *Hub
	Render   *RenderManager
	Audio    *AudioManager
	Timers   *Timers
	Animator *Animator
	Prompter Prompter
}

// TaskBridge connects the decision core's hub to the engine. Scheduled
// tasks are dispatched by type to registered handlers, unknown types
// complete at once, and output events become render, audio and prompt side
// effects.
type TaskBridge struct {
	hub      *Hub
	render   *RenderManager
	audio    *AudioManager
	timers   *Timers
	animator *Animator
	prompter Prompter

	handlers map[string]TaskHandler
	pending  map[TimerToken]Task
}

// NewTaskBridge creates a bridge with the built-in task handlers and
// subscribes it to the hub's outbound events.
func NewTaskBridge(cfg BridgeConfig) *TaskBridge {
	if cfg.Hub == nil {
		cfg.Hub = NewHub()
	}
	if cfg.Timers == nil {
		cfg.Timers = NewTimers(nil)
	}
	if cfg.Animator == nil {
		cfg.Animator = NewAnimator()
	}
	if cfg.Prompter == nil {
		cfg.Prompter = LogPrompter{}
	}
	b := &TaskBridge{
		hub:      cfg.Hub,
		render:   cfg.Render,
		audio:    cfg.Audio,
		timers:   cfg.Timers,
		animator: cfg.Animator,
		prompter: cfg.Prompter,
		handlers: make(map[string]TaskHandler),
		pending:  make(map[TimerToken]Task),
	}
	registerBuiltinTasks(b)
	b.subscribe()
	return b
}

func (b *TaskBridge) Hub() *Hub              { return b.hub }
func (b *TaskBridge) Timers() *Timers        { return b.timers }
func (b *TaskBridge) Animator() *Animator    { return b.animator }
func (b *TaskBridge) Render() *RenderManager { return b.render }
func (b *TaskBridge) Audio() *AudioManager   { return b.audio }
func (b *TaskBridge) Prompter() Prompter     { return b.prompter }

// Handle registers h for taskType, replacing any previous handler.
func (b *TaskBridge) Handle(taskType string, h TaskHandler) {
	b.handlers[taskType] = h
}

// Start emits the start event into the core.
func (b *TaskBridge) Start() {
	b.hub.In.EmitStart()
}

// Process emits one process tick carrying delta seconds into the core.
func (b *TaskBridge) Process(delta float64) {
	b.hub.In.EmitProcess(delta)
}

// Complete signals the core that task finished.
func (b *TaskBridge) Complete(task Task) {
	b.hub.In.EmitTaskFinished(task)
}

// CompleteAfter arms a timer that completes task after d and returns its
// token. The timer can be withdrawn with Abandon.
func (b *TaskBridge) CompleteAfter(task Task, d time.Duration) TimerToken {
	var tok TimerToken
	tok = b.timers.After(d, func() {
		delete(b.pending, tok)
		b.Complete(task)
	})
	b.pending[tok] = task
	return tok
}

// Abandon cancels every pending completion timer of tasks with taskID, which
// then never finish. It reports whether any timer was pending.
func (b *TaskBridge) Abandon(taskID uint64) bool {
	found := false
	for tok, task := range b.pending {
		if task.ID != taskID {
			continue
		}
		delete(b.pending, tok)
		b.timers.Cancel(tok)
		found = true
	}
	return found
}

// Pending returns the number of completion timers still armed.
func (b *TaskBridge) Pending() int { return len(b.pending) }

func (b *TaskBridge) dispatch(task Task) {
	Logger().Debug("task scheduled", "type", task.Type, "id", task.ID, "target", task.Target)
	h, ok := b.handlers[task.Type]
	if !ok {
		b.Complete(task)
		return
	}
	h(b, task)
}

func (b *TaskBridge) subscribe() {
	out := b.hub.Out
	out.OnTaskScheduled(b.dispatch)

	out.OnSay(func(target, text string) {
		Logger().Debug("say", "target", target)
		b.prompter.Say(target, text)
	})

	out.OnAsk(func(target, text string) {
		Logger().Debug("ask", "target", target)
		b.prompter.Ask(target, text)
	})

	out.OnPlaySound(func(target, sound string, mode PlayMode) {
		Logger().Debug("play-sound", "target", target, "sound", sound, "mode", int(mode))
		if b.audio == nil {
			return
		}
		switch mode {
		case PlayDefault, PlayOnce:
			b.audio.PlaySound(sound)
		case PlayLoop:
			b.audio.PlaySoundLoop(sound)
		case PlayStop:
			b.audio.StopSound(sound)
		default:
			Logger().Warn("unknown play mode", "sound", sound, "mode", int(mode))
		}
	})

	out.OnStopAllSounds(func(target string) {
		Logger().Debug("stop-all-sounds", "target", target)
		if b.audio != nil {
			b.audio.StopAllSounds()
		}
	})
}
