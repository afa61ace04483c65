package chunker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestNewFixedWindowChunker(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *FixedWindowChunkerConfig
		wantErr bool
	}{
		{name: "nil config uses defaults", cfg: nil},
		{name: "valid", cfg: &FixedWindowChunkerConfig{WindowSize: 10, Stride: 3}},
		{name: "zero stride", cfg: &FixedWindowChunkerConfig{WindowSize: 10, Stride: 0}},
		{name: "zero window", cfg: &FixedWindowChunkerConfig{WindowSize: 0, Stride: 0}, wantErr: true},
		{name: "negative stride", cfg: &FixedWindowChunkerConfig{WindowSize: 10, Stride: -1}, wantErr: true},
		{name: "stride equals window", cfg: &FixedWindowChunkerConfig{WindowSize: 10, Stride: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewFixedWindowChunker(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}

	c, err := NewFixedWindowChunker(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultWindowSize, c.WindowSize())
	assert.Equal(t, DefaultStride, c.Stride())
}

func TestFixedWindowChunker_TwoThousandWords(t *testing.T) {
	c, err := NewFixedWindowChunker(nil)
	require.NoError(t, err)

	words := makeWords(2000)
	units, err := c.Chunk(context.Background(), strings.Join(words, " "))
	require.NoError(t, err)
	require.Len(t, units, 3)

	assert.Equal(t, strings.Join(words[0:1020], " "), units[0].Content)
	assert.Equal(t, strings.Join(words[764:1784], " "), units[1].Content)
	assert.Equal(t, strings.Join(words[1528:2000], " "), units[2].Content)
	assert.Equal(t, 472, units[2].WordCount)

	for i, u := range units {
		assert.Equal(t, i, u.Index)
	}
}

func TestFixedWindowChunker_ShortText(t *testing.T) {
	c, err := NewFixedWindowChunker(&FixedWindowChunkerConfig{WindowSize: 5, Stride: 2})
	require.NoError(t, err)

	units, err := c.Chunk(context.Background(), "  one\ntwo   three\tfour five ")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "one two three four five", units[0].Content)
	assert.Equal(t, 5, units[0].WordCount)
}

func TestFixedWindowChunker_Empty(t *testing.T) {
	c, err := NewFixedWindowChunker(nil)
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t\n"} {
		units, err := c.Chunk(context.Background(), text)
		require.NoError(t, err)
		assert.Empty(t, units)
	}
}

// 去掉重叠部分后，各窗口拼接应还原完整的词序列
func TestFixedWindowChunker_Reconstructs(t *testing.T) {
	for _, n := range []int{1, 7, 10, 11, 23, 57, 100} {
		for _, cfg := range []FixedWindowChunkerConfig{
			{WindowSize: 10, Stride: 3},
			{WindowSize: 10, Stride: 0},
			{WindowSize: 4, Stride: 3},
			{WindowSize: 1, Stride: 0},
		} {
			t.Run(fmt.Sprintf("n=%d/w=%d/s=%d", n, cfg.WindowSize, cfg.Stride), func(t *testing.T) {
				c, err := NewFixedWindowChunker(&cfg)
				require.NoError(t, err)

				words := makeWords(n)
				units, err := c.Chunk(context.Background(), strings.Join(words, " "))
				require.NoError(t, err)
				require.NotEmpty(t, units)

				rebuilt := strings.Fields(units[0].Content)
				for _, u := range units[1:] {
					fields := strings.Fields(u.Content)
					require.Greater(t, len(fields), cfg.Stride)
					assert.Equal(t, rebuilt[len(rebuilt)-cfg.Stride:], fields[:cfg.Stride])
					rebuilt = append(rebuilt, fields[cfg.Stride:]...)
				}
				assert.Equal(t, words, rebuilt)

				for _, u := range units {
					assert.LessOrEqual(t, u.WordCount, cfg.WindowSize)
				}
			})
		}
	}
}
