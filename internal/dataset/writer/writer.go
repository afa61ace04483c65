package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
	"github.com/lk2023060901/dataset-builder/internal/pkg/errors"
)

// Writer 输出表写入器，首行为表头，之后每个 Unit 一行
type Writer struct {
	mu     sync.Mutex
	csv    *csv.Writer
	closer io.Closer
	shape  dstypes.RowShape
	path   string
	rows   int
}

// Option 写入器选项
type Option func(*csv.Writer)

// WithCRLF 行尾使用 \r\n
func WithCRLF(enabled bool) Option {
	return func(cw *csv.Writer) {
		cw.UseCRLF = enabled
	}
}

// New 基于 io.Writer 创建写入器并立即写出表头
func New(w io.Writer, shape dstypes.RowShape, opts ...Option) (*Writer, error) {
	cw := csv.NewWriter(w)
	for _, opt := range opts {
		opt(cw)
	}
	if err := cw.Write(shape.Header()); err != nil {
		return nil, errors.Wrap(err, errors.ErrOutput, "write header")
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, errors.Wrap(err, errors.ErrOutput, "write header")
	}

	return &Writer{
		csv:   cw,
		shape: shape,
	}, nil
}

// Create 创建输出文件（必要时创建父目录）并写出表头，已有文件会被覆盖
func Create(path string, shape dstypes.RowShape, opts ...Option) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrOutput, "create output dir %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrOutput, "create %s", path)
	}

	w, err := New(f, shape, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	w.path = path
	return w, nil
}

// WriteDocument 按顺序写出一个文档的全部 Unit，同一文档的行保持连续
func (w *Writer) WriteDocument(title string, units []*dstypes.Unit) error {
	if len(units) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, unit := range units {
		if err := w.csv.Write(unit.Row(w.shape, title)); err != nil {
			return errors.Wrap(err, errors.ErrOutput, "write row")
		}
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return errors.Wrap(err, errors.ErrOutput, "flush rows")
	}

	w.rows += len(units)
	return nil
}

// Rows 已写出的数据行数（不含表头）
func (w *Writer) Rows() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Path 输出文件路径，New 创建的写入器为空
func (w *Writer) Path() string {
	return w.path
}

// Shape 行结构
func (w *Writer) Shape() dstypes.RowShape {
	return w.shape
}

// Close 刷新缓冲并关闭底层文件
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return errors.Wrap(err, errors.ErrOutput, "flush")
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", w.path, err)
		}
		w.closer = nil
	}
	return nil
}
