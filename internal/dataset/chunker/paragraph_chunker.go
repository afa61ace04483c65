package chunker

import (
	"context"
	"fmt"
	"strings"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

const DefaultSeparator = "\n\n"

// ParagraphChunker 按段落分隔符分块，不限制单块长度
type ParagraphChunker struct {
	separator string
}

// ParagraphChunkerConfig 段落分块器配置
type ParagraphChunkerConfig struct {
	Separator string
}

// Validate 校验配置
func (c *ParagraphChunkerConfig) Validate() error {
	if c.Separator == "" {
		return fmt.Errorf("paragraph separator cannot be empty")
	}
	return nil
}

// NewParagraphChunker 创建段落分块器
func NewParagraphChunker(cfg *ParagraphChunkerConfig) (*ParagraphChunker, error) {
	if cfg == nil {
		cfg = &ParagraphChunkerConfig{Separator: DefaultSeparator}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &ParagraphChunker{separator: cfg.Separator}, nil
}

// Chunk 将文本分块
func (c *ParagraphChunker) Chunk(ctx context.Context, text string) ([]*dstypes.Unit, error) {
	if text == "" {
		return []*dstypes.Unit{}, nil
	}

	parts := strings.Split(text, c.separator)
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		paragraphs = append(paragraphs, part)
	}

	return toUnits(paragraphs), nil
}

// Strategy 返回分块策略
func (c *ParagraphChunker) Strategy() dstypes.ChunkStrategy {
	return dstypes.ChunkStrategyParagraph
}

// Separator 返回段落分隔符
func (c *ParagraphChunker) Separator() string {
	return c.separator
}
