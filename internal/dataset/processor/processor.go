package processor

import (
	"bytes"
	"context"
	goerrors "errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lk2023060901/dataset-builder/internal/dataset/chunker"
	"github.com/lk2023060901/dataset-builder/internal/dataset/loader"
	"github.com/lk2023060901/dataset-builder/internal/dataset/normalizer"
	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
	"github.com/lk2023060901/dataset-builder/internal/pkg/errors"
	"github.com/lk2023060901/dataset-builder/internal/pkg/logger"
	"github.com/lk2023060901/dataset-builder/internal/pkg/tokenizer"
)

// Result 单个文件的处理结果
type Result struct {
	Document *dstypes.Document
	Units    []*dstypes.Unit
	Words    int
	Tokens   int
}

// Processor 单文档流水线：读取 -> 解码 -> 规范化 -> 分块
type Processor struct {
	chunker chunker.Chunker
	loaders loader.LoaderFactory
	counter tokenizer.Counter
	mode    normalizer.Mode
}

// New 创建处理器，counter 为 nil 时不统计 token
func New(chk chunker.Chunker, loaders loader.LoaderFactory, counter tokenizer.Counter) *Processor {
	if loaders == nil {
		loaders = loader.NewFactory()
	}
	return &Processor{
		chunker: chk,
		loaders: loaders,
		counter: counter,
		mode:    normalizer.ModeFor(chk.Strategy()),
	}
}

// Strategy 返回分块策略
func (p *Processor) Strategy() dstypes.ChunkStrategy {
	return p.chunker.Strategy()
}

// Process 处理一个文件
//
// 返回的错误都是 *errors.AppError：ErrUnsupportedFile、ErrIO、ErrDecode 或 ErrProcessing，
// Details 为文件名。
func (p *Processor) Process(ctx context.Context, path string) (*Result, error) {
	filename := filepath.Base(path)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrProcessing, filename)
	}

	fileType := loader.FileTypeOf(filename)
	ldr, err := p.loaders.CreateLoader(fileType)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUnsupportedFile, filename)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, filename)
	}

	loaded, err := ldr.Load(ctx, bytes.NewReader(data))
	if err != nil {
		if goerrors.Is(err, loader.ErrInvalidUTF8) {
			return nil, errors.Wrap(err, errors.ErrDecode, filename)
		}
		return nil, errors.Wrap(err, errors.ErrProcessing, filename)
	}

	doc := &dstypes.Document{
		Path:     path,
		Filename: filename,
		Title:    loader.DeriveTitle(filename),
		FileType: fileType,
		Content:  normalizer.Normalize(loaded.Content, p.mode),
		FileSize: int64(len(data)),
	}

	units, err := p.chunker.Chunk(ctx, doc.Content)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProcessing, filename)
	}

	result := &Result{
		Document: doc,
		Units:    units,
	}
	for _, unit := range units {
		if p.counter != nil {
			unit.TokenCount = p.counter.Count(unit.Content)
		}
		result.Words += unit.WordCount
		result.Tokens += unit.TokenCount
	}

	logger.DebugContext(ctx, "document processed",
		zap.String("title", doc.Title),
		zap.Int64("size", doc.FileSize),
		zap.Int("units", len(units)),
		zap.Int("words", result.Words),
	)

	return result, nil
}
