package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

// DefaultJSONTextField 默认取值的字段
const DefaultJSONTextField = "text"

// JSONLoader JSON / JSON Lines 加载器
//
// 每条记录取 Field 指定路径的字符串值，记录之间以空行分隔；
// 整个文件不是合法 JSON 时按 JSON Lines 逐行解析。
type JSONLoader struct {
	Field string
}

// NewJSONLoader 创建 JSON 加载器
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{Field: DefaultJSONTextField}
}

// Load 加载 JSON 内容
func (l *JSONLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := readUTF8(reader)
	if err != nil {
		return nil, err
	}

	var records []gjson.Result
	if gjson.ValidBytes(content) {
		result := gjson.ParseBytes(content)
		if result.IsArray() {
			records = result.Array()
		} else {
			records = []gjson.Result{result}
		}
	} else {
		for i, line := range bytes.Split(content, []byte("\n")) {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			if !gjson.ValidBytes(line) {
				return nil, fmt.Errorf("invalid JSON at line %d", i+1)
			}
			records = append(records, gjson.ParseBytes(line))
		}
	}

	texts := make([]string, 0, len(records))
	for _, record := range records {
		if text := l.extract(record); text != "" {
			texts = append(texts, text)
		}
	}

	return &Document{
		Content: strings.Join(texts, "\n\n"),
		Metadata: map[string]interface{}{
			"loader":  "json",
			"records": len(records),
		},
	}, nil
}

// extract 取记录中的文本；记录本身是字符串时直接使用
func (l *JSONLoader) extract(record gjson.Result) string {
	if record.Type == gjson.String {
		return strings.TrimSpace(record.String())
	}

	field := l.Field
	if field == "" {
		field = DefaultJSONTextField
	}

	value := record.Get(field)
	if value.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(value.String())
}

// SupportedTypes 返回支持的文件类型
func (l *JSONLoader) SupportedTypes() []dstypes.FileType {
	return []dstypes.FileType{
		dstypes.FileTypeJSON,
	}
}
