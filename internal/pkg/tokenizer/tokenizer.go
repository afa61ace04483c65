package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultEncoding = "cl100k_base"

// Counter 统计文本的 token 数量
type Counter interface {
	Count(text string) int
	Name() string
}

// TiktokenCounter 基于 tiktoken 的计数器
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTiktokenCounter 创建 tiktoken 计数器（默认 cl100k_base）
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding %s: %w", encoding, err)
	}

	return &TiktokenCounter{encoding: enc, name: encoding}, nil
}

// Count 返回 token 数量
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// Name 返回编码名称
func (c *TiktokenCounter) Name() string {
	return c.name
}

// WordCounter 按空白分词计数，用于不需要 BPE 编码的场景
type WordCounter struct{}

// Count 返回词数
func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// Name 返回计数器名称
func (WordCounter) Name() string {
	return "words"
}
