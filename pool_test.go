package bytepipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRentRecycle(t *testing.T) {
	pool := NewBlockPool(16)
	require.Equal(t, 16, pool.BlockSize())

	b := pool.rent(16)
	require.Len(t, b.buf, 16)
	require.Equal(t, 0, b.n)

	b.n = 7
	pool.recycle(b)
	require.EqualValues(t, 1, b.gen)

	b2 := pool.rent(1)
	require.Same(t, b, b2)
	require.Equal(t, 0, b2.n)
	require.Nil(t, b2.next)

	st := pool.Stats()
	assert.Equal(t, int64(2), st.Rents)
	assert.Equal(t, int64(1), st.Reuses)
	assert.Equal(t, int64(1), st.News)
	assert.Equal(t, int64(0), st.Frees)
}

func TestPoolIdleCap(t *testing.T) {
	pool := NewBlockPool(8)

	blocks := make([]*block, 0, poolIdleCap+8)
	for i := 0; i < poolIdleCap+8; i++ {
		blocks = append(blocks, pool.rent(8))
	}
	for _, b := range blocks {
		pool.recycle(b)
	}

	st := pool.Stats()
	assert.Equal(t, int64(poolIdleCap+8), st.News)
	assert.Equal(t, int64(8), st.Frees)
}
