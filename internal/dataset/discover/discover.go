package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns 默认只匹配输入目录顶层的 .txt 文件
var DefaultPatterns = []string{"*.txt"}

// File 待处理的输入文件
type File struct {
	Path    string // 完整路径
	RelPath string // 相对输入目录的路径（斜杠分隔）
	Size    int64
}

// Discoverer 按 glob 模式枚举输入目录中的文件
type Discoverer struct {
	root     string
	patterns []string
	excludes []string
}

// New 创建 Discoverer，patterns 为空时使用 DefaultPatterns
func New(root string, patterns, excludes []string) (*Discoverer, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	for _, p := range append(append([]string{}, patterns...), excludes...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern: %s", p)
		}
	}

	return &Discoverer{
		root:     root,
		patterns: patterns,
		excludes: excludes,
	}, nil
}

// Discover 返回按相对路径排序的匹配文件，目录和被排除的文件会被跳过
func (d *Discoverer) Discover() ([]File, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", d.root)
	}

	fsys := os.DirFS(d.root)
	seen := make(map[string]struct{})
	var files []File

	for _, pattern := range d.patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
		}

		for _, rel := range matches {
			if _, ok := seen[rel]; ok {
				continue
			}
			seen[rel] = struct{}{}

			if d.excluded(rel) {
				continue
			}

			fi, err := fs.Stat(fsys, rel)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}

			files = append(files, File{
				Path:    filepath.Join(d.root, filepath.FromSlash(rel)),
				RelPath: rel,
				Size:    fi.Size(),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})

	return files, nil
}

func (d *Discoverer) excluded(rel string) bool {
	for _, pattern := range d.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
