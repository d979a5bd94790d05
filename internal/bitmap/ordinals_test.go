package bitmap

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrdinals(t *testing.T) {
	o := New()
	for _, v := range []uint32{0, 2, 3, 7, 100} {
		o.Add(v)
	}

	assert.Equal(t, 5, o.Len())
	assert.True(t, o.Contains(7))
	assert.False(t, o.Contains(1))

	o.Remove(7)
	assert.False(t, o.Contains(7))
	assert.Equal(t, []uint32{0, 2, 3, 100}, slices.Collect(o.All()))
}

func TestOrdinals_Rank(t *testing.T) {
	o := New()
	for _, v := range []uint32{1, 2, 5, 9} {
		o.Add(v)
	}
	o.Optimize()

	assert.Equal(t, 0, o.Rank(0))
	assert.Equal(t, 2, o.Rank(4))
	assert.Equal(t, 4, o.Rank(9))

	assert.Equal(t, 3, o.CountRange(0, 6))
	assert.Equal(t, 1, o.CountRange(3, 9))
	assert.Equal(t, 0, o.CountRange(6, 6))
	assert.Equal(t, 0, o.CountRange(6, 3))
}

func TestOrdinals_AllEarlyStop(t *testing.T) {
	o := New()
	for i := range uint32(10) {
		o.Add(i)
	}

	var seen []uint32
	for v := range o.All() {
		seen = append(seen, v)
		if len(seen) == 3 {
			break
		}
	}
	assert.Equal(t, []uint32{0, 1, 2}, seen)
	assert.NotZero(t, o.SizeInBytes())
}
