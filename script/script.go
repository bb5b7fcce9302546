// Package script is a minimal decision core for luctisity. It runs a list of
// actions in order against a Hub: task actions are scheduled on the engine
// and block the script until the matching task finishes, instant actions
// emit their output event and move on.
//
//	[[actions]]
//	type = "wait"
//	data = { duration = 2 }
//
//	[[actions]]
//	type = "play"
//	target = "man"
//	data = { sound = "fart" }
package script

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/phanxgames/luctisity"
	"github.com/pkg/errors"
)

// Action modes.
const (
	ModeTask    = "task"
	ModeInstant = "instant"
)

// Instant action types.
const (
	ActionSay     = "say"
	ActionAsk     = "ask"
	ActionPlay    = "play"
	ActionLoop    = "loop"
	ActionStop    = "stop"
	ActionStopAll = "stop-all"
)

var instantTypes = map[string]bool{
	ActionSay: true, ActionAsk: true, ActionPlay: true,
	ActionLoop: true, ActionStop: true, ActionStopAll: true,
}

// Action is one step of a script.
type Action struct {
	Type   string `toml:"type"`
	Target string `toml:"target"`
	// Mode is "task" or "instant". Empty picks instant for the instant
	// types and task for everything else.
	Mode string         `toml:"mode"`
	Data map[string]any `toml:"data"`
}

// Script is a parsed action list.
type Script struct {
	Actions []Action `toml:"actions"`
}

// Parse decodes and validates a TOML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode script")
	}
	for i := range s.Actions {
		a := &s.Actions[i]
		if a.Type == "" {
			return nil, errors.Errorf("action %d has no type", i)
		}
		switch a.Mode {
		case "":
			a.Mode = ModeTask
			if instantTypes[a.Type] {
				a.Mode = ModeInstant
			}
		case ModeTask:
		case ModeInstant:
			if !instantTypes[a.Type] {
				return nil, errors.Errorf("action %d: %q has no instant form", i, a.Type)
			}
		default:
			return nil, errors.Errorf("action %d: unknown mode %q", i, a.Mode)
		}
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read script %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "script %s", path)
	}
	return s, nil
}

// Runner plays a Script on a Hub. It starts on the hub's start event.
type Runner struct {
	hub     *luctisity.Hub
	actions []Action
	next    int
	waiting bool
	taskID  uint64
	started bool
	done    bool
	elapsed float64
}

// NewRunner subscribes a runner for s to hub's inbound events.
func NewRunner(hub *luctisity.Hub, s *Script) *Runner {
	r := &Runner{hub: hub, actions: s.Actions}
	hub.In.OnStart(r.start)
	hub.In.OnProcess(func(delta float64) {
		if r.started && !r.done {
			r.elapsed += delta
		}
	})
	hub.In.OnTaskFinished(func(task luctisity.Task) {
		if r.waiting && task.ID == r.taskID {
			r.waiting = false
			r.advance()
		}
	})
	return r
}

// Done reports whether every action has run.
func (r *Runner) Done() bool { return r.done }

// Position returns the index of the next action to run.
func (r *Runner) Position() int { return r.next }

// Elapsed returns the seconds of process ticks seen while running.
func (r *Runner) Elapsed() float64 { return r.elapsed }

func (r *Runner) start() {
	if r.started {
		return
	}
	r.started = true
	r.advance()
}

func (r *Runner) advance() {
	for r.next < len(r.actions) {
		a := r.actions[r.next]
		r.next++
		if a.Mode == ModeTask {
			task := r.hub.NewTask(a.Type, a.Target, a.Data)
			r.waiting, r.taskID = true, task.ID
			r.hub.Out.EmitTaskScheduled(task)
			return
		}
		r.instant(a)
	}
	r.done = true
	luctisity.Logger().Info("script finished", "actions", len(r.actions), "elapsed", r.elapsed)
}

func (r *Runner) instant(a Action) {
	task := luctisity.Task{Type: a.Type, Target: a.Target, Data: a.Data}
	out := r.hub.Out
	switch a.Type {
	case ActionSay:
		out.EmitSay(a.Target, text(task))
	case ActionAsk:
		out.EmitAsk(a.Target, text(task))
	case ActionPlay:
		out.EmitPlaySound(a.Target, task.String("sound", ""), luctisity.PlayMode(task.Float("mode", 0)))
	case ActionLoop:
		out.EmitPlaySound(a.Target, task.String("sound", ""), luctisity.PlayLoop)
	case ActionStop:
		out.EmitPlaySound(a.Target, task.String("sound", ""), luctisity.PlayStop)
	case ActionStopAll:
		out.EmitStopAllSounds(a.Target)
	}
}

// text reads data.text, falling back to data.content.
func text(t luctisity.Task) string {
	return t.String("text", t.String("content", ""))
}
