package luctisity

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
)

func TestOverlayPrompterQueue(t *testing.T) {
	o := NewOverlayPrompter()
	assert.False(t, o.Blocking())

	o.Say("man", "hello")
	o.Ask("troll", "name?")
	assert.True(t, o.Blocking())
	assert.Equal(t, "man:\nhello", o.text())

	o.Type('x')
	assert.Equal(t, "", o.Dismiss(), "say prompts take no input")

	o.Type('b', 'o', 'b', 'x')
	o.Backspace()
	assert.Equal(t, "troll:\nname?\n> bob_", o.text())
	assert.Equal(t, "bob", o.Dismiss())
	assert.False(t, o.Blocking())
	assert.Equal(t, "", o.Dismiss())
}

func TestOverlayPrompterDraw(t *testing.T) {
	o := NewOverlayPrompter()
	screen := ebiten.NewImage(320, 180)
	assert.NotPanics(t, func() { o.Draw(screen) })
	o.Say("", "a fairly long line of text that needs wrapping to fit")
	assert.NotPanics(t, func() { o.Draw(screen) })
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, "aaa bb\ncc", wrapText("aaa bb cc", 6))
	assert.Equal(t, "toolongword\nx", wrapText("toolongword x", 4))
	assert.Equal(t, "a  b", wrapText("a  b", 0))
}

func TestLogPrompter(t *testing.T) {
	logs := captureLogs(t)
	var p Prompter = LogPrompter{}
	p.Say("man", "hi")
	p.Ask("man", "why?")
	assert.False(t, p.Blocking())
	assert.Contains(t, logs.String(), "text=hi")
	assert.Contains(t, logs.String(), "msg=ask")
}
