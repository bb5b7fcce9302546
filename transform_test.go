package luctisity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

func assertPoint(t *testing.T, m Mat3, x, y, wantX, wantY float64) {
	t.Helper()
	gx, gy := m.Apply(x, y)
	assert.InDelta(t, wantX, gx, epsilon, "x")
	assert.InDelta(t, wantY, gy, epsilon, "y")
}

func TestIdentity(t *testing.T) {
	assertPoint(t, Identity, 3, -4, 3, -4)
	assert.Equal(t, Identity, Identity.Mul(Identity))
}

func TestTranslateScaleRotate(t *testing.T) {
	assertPoint(t, Identity.Translate(10, 20), 1, 1, 11, 21)
	assertPoint(t, Identity.Scale(2, 3), 1, 1, 2, 3)
	assertPoint(t, Identity.Rotate(math.Pi/2), 1, 0, 0, 1)
}

func TestCompositionOrder(t *testing.T) {
	// Post-multiplication: the last operation applies first to the point.
	tr := Identity.Translate(10, 0).Rotate(math.Pi / 2)
	assertPoint(t, tr, 1, 0, 10, 1)

	rt := Identity.Rotate(math.Pi/2).Translate(10, 0)
	assertPoint(t, rt, 1, 0, 0, 11)
}

func TestMulAssociative(t *testing.T) {
	a := Translation(3, 4)
	b := Rotation(0.7)
	c := Scaling(2, 0.5)
	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))
	for i := range left {
		assert.InDelta(t, left[i], right[i], epsilon)
	}
}

func TestFloat32ColumnMajor(t *testing.T) {
	f := Translation(5, 6).Float32()
	assert.Len(t, f, 9)
	assert.Equal(t, float32(5), f[6])
	assert.Equal(t, float32(6), f[7])
	assert.Equal(t, float32(1), f[8])
}
