package loader

import (
	"context"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

var (
	reScript     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	reStyle      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	reLineBreak  = regexp.MustCompile(`(?i)<br\s*/?>|</li>`)
	reBlockEnd   = regexp.MustCompile(`(?i)</(p|h[1-6]|blockquote|pre|ul|ol|table)>`)
	reTag        = regexp.MustCompile(`<[^>]+>`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// MarkdownLoader Markdown 加载器，输出保留段落空行的纯文本
type MarkdownLoader struct{}

// NewMarkdownLoader 创建 Markdown 加载器
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

// Load 加载 Markdown 内容
func (l *MarkdownLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := readUTF8(reader)
	if err != nil {
		return nil, err
	}

	rendered := blackfriday.Run(content)

	return &Document{
		Content: l.htmlToPlainText(string(rendered)),
		Metadata: map[string]interface{}{
			"loader":          "markdown",
			"original_format": "markdown",
		},
	}, nil
}

// htmlToPlainText 将 HTML 转换为纯文本，块级元素之间保留空行
func (l *MarkdownLoader) htmlToPlainText(s string) string {
	s = reScript.ReplaceAllString(s, "")
	s = reStyle.ReplaceAllString(s, "")

	s = reLineBreak.ReplaceAllString(s, "\n")
	s = reBlockEnd.ReplaceAllString(s, "\n\n")
	s = reTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// SupportedTypes 返回支持的文件类型
func (l *MarkdownLoader) SupportedTypes() []dstypes.FileType {
	return []dstypes.FileType{
		dstypes.FileTypeMd,
	}
}
