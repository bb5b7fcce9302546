package luctisity

import "time"

// Built-in task types.
const (
	TaskWait    = "wait"
	TaskTween   = "tween"
	TaskTexture = "texture"
	TaskEffects = "effects"
	TaskVolume  = "volume"
	TaskRoute   = "route"
)

func registerBuiltinTasks(b *TaskBridge) {
	b.Handle(TaskWait, waitTask)
	b.Handle(TaskTween, tweenTask)
	b.Handle(TaskTexture, textureTask)
	b.Handle(TaskEffects, effectsTask)
	b.Handle(TaskVolume, volumeTask)
	b.Handle(TaskRoute, routeTask)
}

// seconds converts a duration in seconds, clamping negatives to zero.
func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

// waitTask completes after data.duration seconds.
func waitTask(b *TaskBridge, task Task) {
	b.CompleteAfter(task, seconds(task.Float("duration", 0)))
}

// targetDrawable resolves data.drawable, falling back to the task target.
func targetDrawable(b *TaskBridge, task Task) *Drawable {
	if b.render == nil {
		return nil
	}
	name := task.String("drawable", task.Target)
	d := b.render.Find(name)
	if d == nil {
		Logger().Warn("drawable not found", "drawable", name, "task", task.Type)
	}
	return d
}

// tweenTask animates the target drawable toward the numeric fields in data
// over data.duration seconds with the data.ease easing, completing when the
// animation ends.
func tweenTask(b *TaskBridge, task Task) {
	d := targetDrawable(b, task)
	if d == nil {
		b.Complete(task)
		return
	}
	to := make(map[string]float64)
	for _, name := range TweenFieldNames {
		if task.Has(name) {
			to[name] = task.Float(name, 0)
		}
	}
	if len(to) == 0 {
		b.Complete(task)
		return
	}
	fn, ok := Easing(task.String("ease", "linear"))
	if !ok {
		Logger().Warn("unknown easing, using linear", "ease", task.String("ease", ""))
	}
	g, err := TweenFields(d, to, float32(task.Float("duration", 0)), fn)
	if err != nil {
		Logger().Warn("tween rejected", "err", err)
		b.Complete(task)
		return
	}
	b.animator.Add(g.OnDone(func() { b.Complete(task) }))
}

// textureTask binds data.texture on the target drawable.
func textureTask(b *TaskBridge, task Task) {
	if d := targetDrawable(b, task); d != nil {
		d.SetTexture(task.String("texture", ""))
	}
	b.Complete(task)
}

func floatField(task Task, key string) *float64 {
	if !task.Has(key) {
		return nil
	}
	v := task.Float(key, 0)
	return &v
}

// effectsTask applies the pitch, speed, pan and reverb fields present in
// data to data.channel, or the task target.
func effectsTask(b *TaskBridge, task Task) {
	if b.audio != nil {
		b.audio.SetChannelEffects(task.String("channel", task.Target), EffectsPatch{
			Pitch:  floatField(task, "pitch"),
			Speed:  floatField(task, "speed"),
			Pan:    floatField(task, "pan"),
			Reverb: floatField(task, "reverb"),
		})
	}
	b.Complete(task)
}

// volumeTask sets data.volume, default 1, on the channel.
func volumeTask(b *TaskBridge, task Task) {
	if b.audio != nil {
		b.audio.SetChannelVolume(task.String("channel", task.Target), task.Float("volume", 1))
	}
	b.Complete(task)
}

// routeTask connects data.sound to the channel.
func routeTask(b *TaskBridge, task Task) {
	if b.audio != nil {
		b.audio.ConnectSoundToChannel(task.String("sound", ""), task.String("channel", task.Target))
	}
	b.Complete(task)
}
