// Package luctisity is a small real-time presentation engine for [Ebitengine].
//
// Luctisity drives a per-frame 2D render pipeline and a multi-channel audio
// mixing graph. Both are steered by tasks and output events coming from an
// external decision core (a scripted task/dialogue state machine) through a
// [Hub] of typed events.
//
// # Quick start
//
// Build the pieces leaf-first and hand them to a [Game]:
//
//	catalog, _ := luctisity.LoadCatalog(os.DirFS("assets"), cfg.Assets, 48000)
//	device := luctisity.NewEbitenDevice(640, 360)
//
//	rm := luctisity.NewRenderManager()
//	if !rm.Init(device) {
//		// show a fallback screen; never retry
//	}
//	hero := luctisity.NewDrawable("hero", "man", device, catalog)
//	rm.AddDrawable(hero)
//
//	am := luctisity.NewAudioManager(luctisity.NewEbitenOutput(48000, 100*time.Millisecond), catalog)
//	am.InitAudio()
//	am.CreateChannel("voice")
//	am.ConnectSoundToChannel("quandale", "voice")
//
//	hub := luctisity.NewHub()
//	bridge := luctisity.NewTaskBridge(luctisity.BridgeConfig{Hub: hub, Render: rm, Audio: am})
//	game := luctisity.NewGame(luctisity.GameConfig{Device: device, Render: rm, Bridge: bridge})
//	luctisity.Run(game, "Luctisity")
//
// # Render pipeline
//
// A [Drawable] carries authoring-space transform state: position in pixels,
// rotation in degrees, scale in percent, 0-255 tint and 0-100 opacity. Each
// frame it composes a single 3x3 matrix from those values (see [Drawable.Transform])
// and draws a shared unit quad through the [Device] boundary. The
// [RenderManager] keeps an insertion-ordered set of drawables, so draw order is
// the order in which drawables were added.
//
// # Audio graph
//
// The [AudioManager] owns one [Track] per catalog sound and one [Channel] per
// caller-assigned id. A channel is a fixed series of stages
// (volume, pan, pitch, reverb) feeding the output. Effect settings are merged
// per channel: [AudioManager.SetChannelEffects] only touches the stages named in
// the [EffectsPatch].
//
// # Task bridge
//
// The [TaskBridge] turns scheduled tasks into completions (a "wait" task arms
// a timer, unknown types complete at once) and output events into side effects
// on the render and audio managers. The script sub-package provides a
// reference sequential core.
//
// [Ebitengine]: https://ebitengine.org
package luctisity
