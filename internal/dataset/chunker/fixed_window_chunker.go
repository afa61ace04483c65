package chunker

import (
	"context"
	"fmt"
	"strings"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

const (
	DefaultWindowSize = 1020
	DefaultStride     = 256
)

// FixedWindowChunker 按词数滑动窗口分块，相邻窗口共享 stride 个词
type FixedWindowChunker struct {
	windowSize int
	stride     int
}

// FixedWindowChunkerConfig 滑动窗口分块器配置
type FixedWindowChunkerConfig struct {
	WindowSize int // 每块的词数
	Stride     int // 相邻块重叠的词数
}

// Validate 校验配置
func (c *FixedWindowChunkerConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	if c.Stride < 0 {
		return fmt.Errorf("stride cannot be negative")
	}
	if c.Stride >= c.WindowSize {
		return fmt.Errorf("stride must be less than window size")
	}
	return nil
}

// NewFixedWindowChunker 创建滑动窗口分块器
func NewFixedWindowChunker(cfg *FixedWindowChunkerConfig) (*FixedWindowChunker, error) {
	if cfg == nil {
		cfg = &FixedWindowChunkerConfig{
			WindowSize: DefaultWindowSize,
			Stride:     DefaultStride,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &FixedWindowChunker{
		windowSize: cfg.WindowSize,
		stride:     cfg.Stride,
	}, nil
}

// Chunk 将文本分块
func (c *FixedWindowChunker) Chunk(ctx context.Context, text string) ([]*dstypes.Unit, error) {
	words := strings.Fields(text)
	total := len(words)
	if total == 0 {
		return []*dstypes.Unit{}, nil
	}

	step := c.windowSize - c.stride
	units := make([]*dstypes.Unit, 0, total/step+1)

	for start := 0; start < total; start += step {
		end := start + c.windowSize
		if end > total {
			end = total
		}

		units = append(units, newUnit(len(units), strings.Join(words[start:end], " ")))

		// 已覆盖到末尾，不再产生只包含重叠部分的窗口
		if start+c.windowSize >= total {
			break
		}
	}

	return units, nil
}

// Strategy 返回分块策略
func (c *FixedWindowChunker) Strategy() dstypes.ChunkStrategy {
	return dstypes.ChunkStrategyFixedWindow
}

// WindowSize 返回窗口词数
func (c *FixedWindowChunker) WindowSize() int {
	return c.windowSize
}

// Stride 返回重叠词数
func (c *FixedWindowChunker) Stride() int {
	return c.stride
}
