package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

// Chunker 文本分块接口
type Chunker interface {
	// Chunk 将已规范化的文本切分为有序的输出单元
	Chunk(ctx context.Context, text string) ([]*dstypes.Unit, error)

	// Strategy 返回分块策略
	Strategy() dstypes.ChunkStrategy
}

// newUnit 构造输出单元并填充统计字段
func newUnit(index int, content string) *dstypes.Unit {
	return &dstypes.Unit{
		Index:     index,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		CharCount: utf8.RuneCountInString(content),
	}
}

// toUnits 将字符串序列转换为带序号的输出单元
func toUnits(pieces []string) []*dstypes.Unit {
	units := make([]*dstypes.Unit, 0, len(pieces))
	for i, piece := range pieces {
		units = append(units, newUnit(i, piece))
	}
	return units
}
