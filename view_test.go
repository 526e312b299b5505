package bytepipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewSliceAndChunks(t *testing.T) {
	p := NewPipe(WithBlockSize(8))
	w, r := p.Writer(), p.Reader()

	data := seqBytes(0, 20) // spans three blocks: 8 + 8 + 4
	_, err := w.WriteBytes(data)
	require.NoError(t, err)
	_, err = w.Flush()
	require.NoError(t, err)

	res, err := r.Read()
	require.NoError(t, err)
	v := res.View
	require.Equal(t, 20, v.Len())
	require.False(t, v.IsEmpty())
	require.Equal(t, data, v.Bytes())

	assert.Equal(t, data[5:15], v.Slice(5, 10).Bytes())
	assert.Equal(t, data[6:8], v.Slice(6, 2).Bytes())
	assert.Equal(t, data[7:9], v.Slice(7, 2).Bytes()) // crosses a block seam
	assert.True(t, v.Slice(3, 0).IsEmpty())
	assert.Equal(t, data[16:20], v.Slice(16, 4).Bytes())

	var chunks int
	var joined []byte
	it := v.Chunks()
	for {
		ch, ok := it.Next()
		if !ok {
			break
		}
		chunks++
		joined = append(joined, ch...)
	}
	assert.Equal(t, 3, chunks)
	assert.Equal(t, data, joined)

	dst := make([]byte, 7)
	assert.Equal(t, 7, v.CopyTo(dst))
	assert.Equal(t, data[:7], dst)
	big := make([]byte, 64)
	assert.Equal(t, 20, v.CopyTo(big))
	assert.Equal(t, data, big[:20])

	require.Panics(t, func() { v.Slice(15, 10) })
	require.Panics(t, func() { v.Position(21) })

	r.AdvanceTo(v.Position(12))
	res, err = r.Read()
	require.NoError(t, err)
	require.Equal(t, data[12:], res.View.Bytes())
}

func TestViewSingleBlockFastPath(t *testing.T) {
	p := NewPipe(WithBlockSize(32))
	w, r := p.Writer(), p.Reader()

	_, err := w.WriteString("fast path")
	require.NoError(t, err)
	_, err = w.Flush()
	require.NoError(t, err)

	res, err := r.Read()
	require.NoError(t, err)
	v := res.View

	// A single-block view exposes the block storage directly.
	a, b := v.Bytes(), v.Bytes()
	require.Equal(t, "fast path", string(a))
	assert.Same(t, &a[0], &b[0])

	sub := v.Slice(5, 4)
	require.Equal(t, "path", string(sub.Bytes()))
	assert.Same(t, &a[5], &sub.Bytes()[0])
}

func TestEmptyView(t *testing.T) {
	var v BufferView
	assert.Equal(t, 0, v.Len())
	assert.True(t, v.IsEmpty())
	assert.Nil(t, v.Bytes())
	assert.Equal(t, 0, v.CopyTo(make([]byte, 4)))
	it := v.Chunks()
	_, ok := it.Next()
	assert.False(t, ok)
	assert.Equal(t, Position{}, v.Start())
	assert.Equal(t, Position{}, v.End())
	assert.True(t, v.Slice(0, 0).IsEmpty())
}
