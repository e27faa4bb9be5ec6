package segment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGSE(t *testing.T) {
	seg, err := NewGSE()
	require.NoError(t, err)
	require.NotNil(t, seg)
}

func TestCut(t *testing.T) {
	seg, err := NewGSE()
	require.NoError(t, err)

	tokens := seg.Cut("我喜欢看电影")
	require.NotEmpty(t, tokens)
	assert.Contains(t, tokens, "电影")
}

func TestCut_EmptyText(t *testing.T) {
	seg, err := NewGSE()
	require.NoError(t, err)
	assert.Empty(t, seg.Cut(""))
}

func TestCut_ConcurrentUse(t *testing.T) {
	seg, err := NewGSE()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				seg.Cut("这部电影的特效非常精彩")
			}
		}()
	}
	wg.Wait()
}
