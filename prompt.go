package luctisity

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Prompter surfaces say and ask events to the user.
type Prompter interface {
	Say(target, text string)
	// Ask shows a prompt. The answer is collected and discarded.
	Ask(target, text string)
	// Blocking reports whether a prompt is waiting on the user. Frame
	// processing pauses while it is.
	Blocking() bool
}

// LogPrompter writes prompts to the logger and never blocks. It is the
// prompter for headless hosts.
type LogPrompter struct{}

func (LogPrompter) Say(target, text string) {
	Logger().Info("say", "target", target, "text", text)
}

func (LogPrompter) Ask(target, text string) {
	Logger().Info("ask", "target", target, "text", text)
}

func (LogPrompter) Blocking() bool { return false }

type promptKind uint8

const (
	promptSay promptKind = iota
	promptAsk
)

type prompt struct {
	kind   promptKind
	target string
	text   string
}

// OverlayPrompter shows prompts one at a time in a box over the canvas.
// Enter or a click dismisses the current prompt; ask prompts collect typed
// text first.
type OverlayPrompter struct {
	queue  []prompt
	answer []rune

	// Width in characters before text wraps.
	Wrap int
}

// NewOverlayPrompter returns an empty overlay.
func NewOverlayPrompter() *OverlayPrompter {
	return &OverlayPrompter{Wrap: 48}
}

func (o *OverlayPrompter) Say(target, text string) {
	o.queue = append(o.queue, prompt{kind: promptSay, target: target, text: text})
}

func (o *OverlayPrompter) Ask(target, text string) {
	o.queue = append(o.queue, prompt{kind: promptAsk, target: target, text: text})
}

func (o *OverlayPrompter) Blocking() bool { return len(o.queue) > 0 }

// Type appends runes to the answer of an open ask prompt.
func (o *OverlayPrompter) Type(rs ...rune) {
	if len(o.queue) == 0 || o.queue[0].kind != promptAsk {
		return
	}
	o.answer = append(o.answer, rs...)
}

// Backspace removes the last typed rune.
func (o *OverlayPrompter) Backspace() {
	if n := len(o.answer); n > 0 {
		o.answer = o.answer[:n-1]
	}
}

// Dismiss closes the current prompt and returns the typed answer, which the
// engine discards.
func (o *OverlayPrompter) Dismiss() string {
	if len(o.queue) == 0 {
		return ""
	}
	p := o.queue[0]
	o.queue = o.queue[1:]
	answer := string(o.answer)
	o.answer = o.answer[:0]
	Logger().Debug("prompt dismissed", "target", p.target, "answer", answer)
	return answer
}

// Update polls keyboard and mouse input for the open prompt.
func (o *OverlayPrompter) Update() {
	if !o.Blocking() {
		return
	}
	o.Type(ebiten.AppendInputChars(nil)...)
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		o.Backspace()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		o.Dismiss()
	}
}

var overlayBackground = color.RGBA{R: 16, G: 16, B: 24, A: 230}

// Draw renders the open prompt along the bottom of screen.
func (o *OverlayPrompter) Draw(screen *ebiten.Image) {
	if !o.Blocking() {
		return
	}
	text := o.text()
	lines := strings.Count(text, "\n") + 1

	b := screen.Bounds()
	const lineHeight, pad = 16, 8
	h := lines*lineHeight + 2*pad
	box := image.Rect(b.Min.X+pad, b.Max.Y-pad-h, b.Max.X-pad, b.Max.Y-pad)
	screen.SubImage(box).(*ebiten.Image).Fill(overlayBackground)
	ebitenutil.DebugPrintAt(screen, text, box.Min.X+pad, box.Min.Y+pad)
}

// text returns the open prompt's display text.
func (o *OverlayPrompter) text() string {
	if len(o.queue) == 0 {
		return ""
	}
	p := o.queue[0]
	s := wrapText(p.text, o.Wrap)
	if p.target != "" {
		s = fmt.Sprintf("%s:\n%s", p.target, s)
	}
	if p.kind == promptAsk {
		s += "\n> " + string(o.answer) + "_"
	}
	return s
}

// wrapText breaks s on spaces so no line exceeds width runes where possible.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out strings.Builder
	n := 0
	for i, w := range strings.Fields(s) {
		l := len([]rune(w))
		if i > 0 {
			if n+1+l > width {
				out.WriteByte('\n')
				n = 0
			} else {
				out.WriteByte(' ')
				n++
			}
		}
		out.WriteString(w)
		n += l
	}
	return out.String()
}
