package wireless

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing(t *testing.T) {
	r := NewRing(3)
	assert.Nil(t, r.Values())
	assert.Zero(t, r.Last())

	r.Push(-50)
	r.Push(-51)
	assert.Equal(t, []float64{-50, -51}, r.Values())
	assert.Equal(t, -51.0, r.Last())

	r.Push(-52)
	r.Push(-53)
	assert.Equal(t, []float64{-51, -52, -53}, r.Values())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, -53.0, r.Last())

	r.Clear()
	assert.Zero(t, r.Len())
	assert.Nil(t, r.Values())
}
