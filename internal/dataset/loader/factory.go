package loader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
)

// Factory Loader 工厂
type Factory struct {
	loaders map[dstypes.FileType]Loader
}

// NewFactory 创建 Loader 工厂
func NewFactory() *Factory {
	factory := &Factory{
		loaders: make(map[dstypes.FileType]Loader),
	}

	factory.registerLoader(NewTextLoader())
	factory.registerLoader(NewMarkdownLoader())
	factory.registerLoader(NewJSONLoader())

	return factory
}

// registerLoader 注册 Loader
func (f *Factory) registerLoader(loader Loader) {
	for _, fileType := range loader.SupportedTypes() {
		f.loaders[fileType] = loader
	}
}

// CreateLoader 根据文件类型创建 Loader
func (f *Factory) CreateLoader(fileType dstypes.FileType) (Loader, error) {
	loader, ok := f.loaders[fileType]
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
	return loader, nil
}

// SupportedTypes 返回所有支持的文件类型
func (f *Factory) SupportedTypes() []dstypes.FileType {
	types := make([]dstypes.FileType, 0, len(f.loaders))
	for fileType := range f.loaders {
		types = append(types, fileType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// FileTypeOf 根据扩展名判断文件类型
func FileTypeOf(filename string) dstypes.FileType {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "markdown":
		return dstypes.FileTypeMd
	case "jsonl", "ndjson":
		return dstypes.FileTypeJSON
	default:
		return dstypes.FileType(ext)
	}
}
