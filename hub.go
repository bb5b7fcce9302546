package luctisity

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Task is a unit of work scheduled by the decision core. Data carries
// type-specific parameters, such as "duration" for a wait.
type Task struct {
	ID     uint64
	Type   string
	Target string
	Data   map[string]any
}

// Float returns Data[key] as a float64, or def if absent or not numeric.
func (t Task) Float(key string, def float64) float64 {
	switch v := t.Data[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return def
	}
}

// String returns Data[key] as a string, or def if absent or not a string.
func (t Task) String(key, def string) string {
	if v, ok := t.Data[key].(string); ok {
		return v
	}
	return def
}

// Has reports whether Data contains key.
func (t Task) Has(key string) bool {
	_, ok := t.Data[key]
	return ok
}

// PlayMode selects what a play-sound event does.
type PlayMode int

const (
	PlayDefault PlayMode = iota // play once
	PlayOnce                    // play once
	PlayLoop                    // play looping
	PlayStop                    // stop
)

// Inbound events, raised by the engine into the core.
type (
	StartEvent        struct{}
	ProcessEvent      struct{ Delta float64 }
	TaskFinishedEvent struct{ Task Task }
)

// Outbound events, raised by the core for the engine.
type (
	TaskScheduledEvent struct{ Task Task }
	SayEvent           struct{ Target, Text string }
	AskEvent           struct{ Target, Text string }
	PlaySoundEvent     struct {
		Target, Sound string
		Mode          PlayMode
	}
	StopAllSoundsEvent struct{ Target string }
)

var (
	startEvent         = events.NewEventType[StartEvent]()
	processEvent       = events.NewEventType[ProcessEvent]()
	taskFinishedEvent  = events.NewEventType[TaskFinishedEvent]()
	taskScheduledEvent = events.NewEventType[TaskScheduledEvent]()
	sayEvent           = events.NewEventType[SayEvent]()
	askEvent           = events.NewEventType[AskEvent]()
	playSoundEvent     = events.NewEventType[PlaySoundEvent]()
	stopAllSoundsEvent = events.NewEventType[StopAllSoundsEvent]()
)

// Hub carries events between the engine and the decision core over a donburi
// world. Emits are queued and delivered in order; the outermost emit drains
// the queue, so a subscriber that emits never re-enters another subscriber.
type Hub struct {
	In  *InBus
	Out *OutBus

	world    donburi.World
	queue    []func()
	draining bool
	nextID   uint64
}

// NewHub creates a hub with its own world.
func NewHub() *Hub {
	h := &Hub{world: donburi.NewWorld()}
	h.In = &InBus{h: h}
	h.Out = &OutBus{h: h}
	return h
}

// NewTask returns a task with a fresh id.
func (h *Hub) NewTask(typ, target string, data map[string]any) Task {
	h.nextID++
	if data == nil {
		data = map[string]any{}
	}
	return Task{ID: h.nextID, Type: typ, Target: target, Data: data}
}

// Pending returns the number of queued, undelivered events.
func (h *Hub) Pending() int { return len(h.queue) }

func emit[T any](h *Hub, et *events.EventType[T], ev T) {
	h.queue = append(h.queue, func() {
		et.Publish(h.world, ev)
		et.ProcessEvents(h.world)
	})
	h.drain()
}

func (h *Hub) drain() {
	if h.draining {
		return
	}
	h.draining = true
	defer func() { h.draining = false }()
	for len(h.queue) > 0 {
		next := h.queue[0]
		h.queue = h.queue[1:]
		next()
	}
}

func subscribe[T any](h *Hub, et *events.EventType[T], fn func(T)) {
	et.Subscribe(h.world, func(_ donburi.World, ev T) { fn(ev) })
}

// InBus carries events from the engine into the core.
type InBus struct{ h *Hub }

func (b *InBus) EmitStart()                { emit(b.h, startEvent, StartEvent{}) }
func (b *InBus) EmitProcess(delta float64) { emit(b.h, processEvent, ProcessEvent{Delta: delta}) }
func (b *InBus) EmitTaskFinished(task Task) {
	emit(b.h, taskFinishedEvent, TaskFinishedEvent{Task: task})
}

func (b *InBus) OnStart(fn func()) {
	subscribe(b.h, startEvent, func(StartEvent) { fn() })
}

func (b *InBus) OnProcess(fn func(delta float64)) {
	subscribe(b.h, processEvent, func(ev ProcessEvent) { fn(ev.Delta) })
}

func (b *InBus) OnTaskFinished(fn func(Task)) {
	subscribe(b.h, taskFinishedEvent, func(ev TaskFinishedEvent) { fn(ev.Task) })
}

// OutBus carries events from the core to the engine.
type OutBus struct{ h *Hub }

func (b *OutBus) EmitTaskScheduled(task Task) {
	emit(b.h, taskScheduledEvent, TaskScheduledEvent{Task: task})
}

func (b *OutBus) EmitSay(target, text string) {
	emit(b.h, sayEvent, SayEvent{Target: target, Text: text})
}

func (b *OutBus) EmitAsk(target, text string) {
	emit(b.h, askEvent, AskEvent{Target: target, Text: text})
}

func (b *OutBus) EmitPlaySound(target, sound string, mode PlayMode) {
	emit(b.h, playSoundEvent, PlaySoundEvent{Target: target, Sound: sound, Mode: mode})
}

func (b *OutBus) EmitStopAllSounds(target string) {
	emit(b.h, stopAllSoundsEvent, StopAllSoundsEvent{Target: target})
}

func (b *OutBus) OnTaskScheduled(fn func(Task)) {
	subscribe(b.h, taskScheduledEvent, func(ev TaskScheduledEvent) { fn(ev.Task) })
}

func (b *OutBus) OnSay(fn func(target, text string)) {
	subscribe(b.h, sayEvent, func(ev SayEvent) { fn(ev.Target, ev.Text) })
}

func (b *OutBus) OnAsk(fn func(target, text string)) {
	subscribe(b.h, askEvent, func(ev AskEvent) { fn(ev.Target, ev.Text) })
}

func (b *OutBus) OnPlaySound(fn func(target, sound string, mode PlayMode)) {
	subscribe(b.h, playSoundEvent, func(ev PlaySoundEvent) { fn(ev.Target, ev.Sound, ev.Mode) })
}

func (b *OutBus) OnStopAllSounds(fn func(target string)) {
	subscribe(b.h, stopAllSoundsEvent, func(ev StopAllSoundsEvent) { fn(ev.Target) })
}
