package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextLoader 纯文本加载器，只接受 UTF-8
type TextLoader struct{}

// NewTextLoader 创建纯文本加载器
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load 加载纯文本内容
func (l *TextLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := readUTF8(reader)
	if err != nil {
		return nil, err
	}

	return &Document{
		Content: string(content),
		Metadata: map[string]interface{}{
			"loader": "text",
		},
	}, nil
}

// SupportedTypes 返回支持的文件类型
func (l *TextLoader) SupportedTypes() []dstypes.FileType {
	return []dstypes.FileType{
		dstypes.FileTypeTxt,
	}
}

// readUTF8 读取全部内容并校验编码，去掉开头的 BOM
func readUTF8(reader io.Reader) ([]byte, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	if !utf8.Valid(content) {
		return nil, ErrInvalidUTF8
	}

	return bytes.TrimPrefix(content, utf8BOM), nil
}
