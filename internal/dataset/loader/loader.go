package loader

import (
	"context"
	"errors"
	"io"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

// ErrInvalidUTF8 文件内容不是合法的 UTF-8 文本
var ErrInvalidUTF8 = errors.New("content is not valid utf-8")

// Loader 文档加载器接口
type Loader interface {
	// Load 加载文档内容
	Load(ctx context.Context, reader io.Reader) (*Document, error)

	// SupportedTypes 返回支持的文件类型
	SupportedTypes() []dstypes.FileType
}

// Document 加载后的文档
type Document struct {
	Content  string                 // 文档文本内容
	Metadata map[string]interface{} // 文档元数据
}

// LoaderFactory Loader 工厂接口
type LoaderFactory interface {
	// CreateLoader 根据文件类型创建 Loader
	CreateLoader(fileType dstypes.FileType) (Loader, error)

	// SupportedTypes 返回所有支持的文件类型
	SupportedTypes() []dstypes.FileType
}
