package normalizer

import (
	"regexp"
	"strings"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

// Mode 规范化模式
type Mode int

const (
	// ModeBasic 统一换行、制表符和空格，保留所有换行（滑动窗口策略）
	ModeBasic Mode = iota
	// ModeParagraph 合并软换行，空行统一为一个段落分隔符
	ModeParagraph
	// ModeSentence 合并软换行，空行也折叠为空格
	ModeSentence
)

var (
	reMultiNewline = regexp.MustCompile(`\n{2,}`)
	reMultiSpace   = regexp.MustCompile(` {2,}`)
	crlfReplacer   = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// ModeFor 返回分块策略对应的规范化模式
func ModeFor(strategy dstypes.ChunkStrategy) Mode {
	switch strategy {
	case dstypes.ChunkStrategyParagraph:
		return ModeParagraph
	case dstypes.ChunkStrategySentenceBudget:
		return ModeSentence
	default:
		return ModeBasic
	}
}

// Normalize 规范化原始文本
func Normalize(raw string, mode Mode) string {
	if raw == "" {
		return ""
	}

	text := crlfReplacer.Replace(raw)
	text = strings.ReplaceAll(text, "\t", " ")

	switch mode {
	case ModeParagraph:
		text = joinSoftWraps(text)
		text = reMultiNewline.ReplaceAllString(text, "\n\n")
	case ModeSentence:
		text = joinSoftWraps(text)
		text = reMultiNewline.ReplaceAllString(text, " ")
	}

	text = reMultiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// joinSoftWraps 将不与其他换行相邻的单个换行替换为空格
func joinSoftWraps(text string) string {
	if !strings.Contains(text, "\n") {
		return text
	}

	b := []byte(text)
	out := make([]byte, len(b))
	for i, c := range b {
		if c == '\n' &&
			(i == 0 || b[i-1] != '\n') &&
			(i == len(b)-1 || b[i+1] != '\n') {
			out[i] = ' '
			continue
		}
		out[i] = c
	}
	return string(out)
}
