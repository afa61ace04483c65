package chunker

import (
	"fmt"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

// Factory Chunker 工厂
type Factory struct{}

// NewFactory 创建 Chunker 工厂
func NewFactory() *Factory {
	return &Factory{}
}

// CreateChunkerConfig 创建 Chunker 配置
type CreateChunkerConfig struct {
	Strategy dstypes.ChunkStrategy

	// fixed_window
	WindowSize int
	Stride     int

	// paragraph
	Separator string

	// sentence_budget
	MaxChars int
	MinChars int
}

// DefaultCreateChunkerConfig 返回各策略的默认参数
func DefaultCreateChunkerConfig(strategy dstypes.ChunkStrategy) *CreateChunkerConfig {
	return &CreateChunkerConfig{
		Strategy:   strategy,
		WindowSize: DefaultWindowSize,
		Stride:     DefaultStride,
		Separator:  DefaultSeparator,
		MaxChars:   DefaultMaxChars,
		MinChars:   DefaultMinChars,
	}
}

// CreateChunker 创建 Chunker
func (f *Factory) CreateChunker(cfg *CreateChunkerConfig) (Chunker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	switch cfg.Strategy {
	case dstypes.ChunkStrategyFixedWindow:
		return NewFixedWindowChunker(&FixedWindowChunkerConfig{
			WindowSize: cfg.WindowSize,
			Stride:     cfg.Stride,
		})

	case dstypes.ChunkStrategyParagraph:
		return NewParagraphChunker(&ParagraphChunkerConfig{
			Separator: cfg.Separator,
		})

	case dstypes.ChunkStrategySentenceBudget:
		return NewSentenceBudgetChunker(&SentenceBudgetChunkerConfig{
			MaxChars: cfg.MaxChars,
			MinChars: cfg.MinChars,
		})

	default:
		return nil, fmt.Errorf("unsupported chunk strategy: %s", cfg.Strategy)
	}
}
