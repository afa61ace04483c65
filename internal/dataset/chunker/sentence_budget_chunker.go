package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

const (
	DefaultMaxChars = 2048
	DefaultMinChars = 50
)

// SentenceBudgetChunker 按字符预算分块，优先在句末切分，并合并过短的片段
//
// 长度均以字符（rune）计算。句末判断只看 '.', '!', '?' 后是否跟空格或换行，
// 不排除 "Mr." 之类的缩写。
type SentenceBudgetChunker struct {
	maxChars int
	minChars int
}

// SentenceBudgetChunkerConfig 句子预算分块器配置
type SentenceBudgetChunkerConfig struct {
	MaxChars int // 每块最大字符数
	MinChars int // 小于该长度的片段会尝试合并到上一块
}

// Validate 校验配置
func (c *SentenceBudgetChunkerConfig) Validate() error {
	if c.MaxChars <= 0 {
		return fmt.Errorf("max chars must be positive")
	}
	if c.MinChars < 0 {
		return fmt.Errorf("min chars cannot be negative")
	}
	if c.MinChars > c.MaxChars {
		return fmt.Errorf("min chars must not exceed max chars")
	}
	return nil
}

// NewSentenceBudgetChunker 创建句子预算分块器
func NewSentenceBudgetChunker(cfg *SentenceBudgetChunkerConfig) (*SentenceBudgetChunker, error) {
	if cfg == nil {
		cfg = &SentenceBudgetChunkerConfig{
			MaxChars: DefaultMaxChars,
			MinChars: DefaultMinChars,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &SentenceBudgetChunker{
		maxChars: cfg.MaxChars,
		minChars: cfg.MinChars,
	}, nil
}

// Chunk 将文本分块
func (c *SentenceBudgetChunker) Chunk(ctx context.Context, text string) ([]*dstypes.Unit, error) {
	runes := []rune(text)
	total := len(runes)

	var pieces []string
	cursor := 0

	for cursor < total {
		if total-cursor <= c.maxChars {
			if tail := strings.TrimSpace(string(runes[cursor:])); tail != "" {
				pieces = append(pieces, tail)
			}
			break
		}

		end := c.findSplit(runes, cursor)

		if piece := strings.TrimSpace(string(runes[cursor:end])); piece != "" {
			pieces = c.appendOrMerge(pieces, piece)
		}

		cursor = end
		for cursor < total && unicode.IsSpace(runes[cursor]) {
			cursor++
		}
	}

	// 末尾过短的片段并入上一块
	if n := len(pieces); n >= 2 {
		last := pieces[n-1]
		if utf8.RuneCountInString(last) < c.minChars && c.fits(pieces[n-2], last) {
			pieces[n-2] = pieces[n-2] + " " + last
			pieces = pieces[:n-1]
		}
	}

	return toUnits(pieces), nil
}

// findSplit 在 [cursor, cursor+maxChars) 窗口内从右向左寻找句末，最多回退到窗口中点
func (c *SentenceBudgetChunker) findSplit(runes []rune, cursor int) int {
	window := runes[cursor : cursor+c.maxChars]
	last := len(window) - 1

	for i := last; i >= c.maxChars/2; i-- {
		if !isTerminator(window[i]) {
			continue
		}
		if i == last {
			return cursor + i + 1
		}
		if next := window[i+1]; next == ' ' || next == '\n' {
			return cursor + i + 2
		}
	}

	return cursor + c.maxChars
}

// appendOrMerge 过短的片段在不超出预算时追加到上一块
func (c *SentenceBudgetChunker) appendOrMerge(pieces []string, piece string) []string {
	n := len(pieces)
	if n > 0 && utf8.RuneCountInString(piece) < c.minChars && c.fits(pieces[n-1], piece) {
		pieces[n-1] = pieces[n-1] + " " + piece
		return pieces
	}
	return append(pieces, piece)
}

func (c *SentenceBudgetChunker) fits(prev, piece string) bool {
	return utf8.RuneCountInString(prev)+1+utf8.RuneCountInString(piece) <= c.maxChars
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Strategy 返回分块策略
func (c *SentenceBudgetChunker) Strategy() dstypes.ChunkStrategy {
	return dstypes.ChunkStrategySentenceBudget
}

// MaxChars 返回每块最大字符数
func (c *SentenceBudgetChunker) MaxChars() int {
	return c.maxChars
}

// MinChars 返回最小片段长度
func (c *SentenceBudgetChunker) MinChars() int {
	return c.minChars
}
