package junction

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_InsertKeepsOrder(t *testing.T) {
	w := NewWindow(0)
	assert.Equal(t, DefaultWindowSize, w.Capacity())

	rng := rand.New(rand.NewSource(7))
	seen := make(map[[2]int]bool)
	for len(seen) < 200 {
		start := rng.Intn(500)
		end := start + rng.Intn(500)
		k := [2]int{start, end}
		if seen[k] {
			continue
		}
		seen[k] = true
		require.NoError(t, w.Insert(newJunction(start, end, StrandUnknown)))
	}

	js := w.Junctions()
	require.Len(t, js, 200)
	for i := 1; i < len(js); i++ {
		assert.True(t, js[i-1].Less(js[i].Start, js[i].End), "window out of order at %d", i)
	}
	for k := range seen {
		j := w.Find(k[0], k[1])
		require.NotNil(t, j)
		assert.Equal(t, k[0], j.Start)
		assert.Equal(t, k[1], j.End)
	}
}

func TestWindow_InsertDuplicate(t *testing.T) {
	w := NewWindow(10)
	require.NoError(t, w.Insert(newJunction(10, 20, StrandForward)))
	assert.Error(t, w.Insert(newJunction(10, 20, StrandForward)))
	assert.Equal(t, 1, w.Len())
}

func TestWindow_Find(t *testing.T) {
	w := NewWindow(10)
	for _, se := range [][2]int{{10, 20}, {10, 30}, {15, 16}} {
		require.NoError(t, w.Insert(newJunction(se[0], se[1], StrandUnknown)))
	}
	assert.NotNil(t, w.Find(10, 30))
	assert.Nil(t, w.Find(10, 25))
	assert.Nil(t, w.Find(16, 16))
	assert.Nil(t, w.Find(1, 2))
	assert.Equal(t, 10, w.Head().Start)
	assert.Equal(t, 20, w.Head().End)
}

func TestWindow_Prune(t *testing.T) {
	build := func() *Window {
		w := NewWindow(10)
		for _, se := range [][2]int{{10, 20}, {12, 50}, {14, 18}, {30, 40}} {
			require.NoError(t, w.Insert(newJunction(se[0], se[1], StrandUnknown)))
		}
		return w
	}

	t.Run("stops at first open end", func(t *testing.T) {
		w := build()
		closed := w.Prune(25, nil)
		require.Len(t, closed, 1)
		assert.Equal(t, 10, closed[0].Start)
		assert.Equal(t, 3, w.Len())
		assert.Equal(t, 12, w.Head().Start)
	})

	t.Run("end equal to threshold stays", func(t *testing.T) {
		w := build()
		assert.Empty(t, w.Prune(20, nil))
		assert.Equal(t, 4, w.Len())
	})

	t.Run("keep is never removed", func(t *testing.T) {
		w := build()
		keep := w.Find(10, 20)
		assert.Empty(t, w.Prune(100, keep))
		assert.Equal(t, 4, w.Len())
	})

	t.Run("everything past", func(t *testing.T) {
		w := build()
		closed := w.Prune(100, nil)
		assert.Len(t, closed, 4)
		assert.Equal(t, 0, w.Len())
		assert.Nil(t, w.Head())
	})
}

func TestWindow_Overflow(t *testing.T) {
	w := NewWindow(2)
	require.NoError(t, w.Insert(newJunction(5, 10, StrandUnknown)))
	require.NoError(t, w.Insert(newJunction(6, 10, StrandUnknown)))

	err := w.Insert(newJunction(7, 10, StrandUnknown))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWindowFull))
	assert.Contains(t, err.Error(), "7-10")
	assert.Equal(t, 2, w.Len())
}

func TestWindow_Drain(t *testing.T) {
	w := NewWindow(10)
	require.NoError(t, w.Insert(newJunction(30, 40, StrandUnknown)))
	require.NoError(t, w.Insert(newJunction(10, 40, StrandUnknown)))

	all := w.Drain()
	require.Len(t, all, 2)
	assert.Equal(t, 10, all[0].Start)
	assert.Equal(t, 30, all[1].Start)
	assert.Equal(t, 0, w.Len())
}
