package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lk2023060901/dataset-builder/internal/conf"
	"github.com/lk2023060901/dataset-builder/internal/dataset/chunker"
	"github.com/lk2023060901/dataset-builder/internal/dataset/discover"
	"github.com/lk2023060901/dataset-builder/internal/dataset/loader"
	"github.com/lk2023060901/dataset-builder/internal/dataset/processor"
	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
	"github.com/lk2023060901/dataset-builder/internal/dataset/writer"
	"github.com/lk2023060901/dataset-builder/internal/pkg/errors"
	"github.com/lk2023060901/dataset-builder/internal/pkg/logger"
	"github.com/lk2023060901/dataset-builder/internal/pkg/minio"
	"github.com/lk2023060901/dataset-builder/internal/pkg/tokenizer"
	"github.com/lk2023060901/dataset-builder/internal/pkg/workerpool"
)

// Uploader 发布生成的输出表
type Uploader interface {
	Publish(ctx context.Context, path string) (string, error)
}

// FileFailure 单个文件的失败记录
type FileFailure struct {
	File string
	Code int
	Err  error
}

// Report 单个任务的运行报告
type Report struct {
	Job      string
	Strategy dstypes.ChunkStrategy
	Output   string // 输出表路径
	Object   string // 上传后的对象 key

	Files     int
	Processed int
	Failures  []FileFailure

	Units  int
	Words  int
	Tokens int

	Duration time.Duration
}

// Failed 失败文件数
func (r *Report) Failed() int {
	return len(r.Failures)
}

// Builder 按配置执行所有任务：枚举文件、并行处理、按文件顺序写出、可选上传
type Builder struct {
	cfg      *conf.Config
	pool     *workerpool.Pool
	loaders  loader.LoaderFactory
	chunkers *chunker.Factory
	counter  tokenizer.Counter
	uploader Uploader
	logger   *logger.Logger
	out      io.Writer
}

// Option Builder 选项
type Option func(*Builder)

// WithUploader 任务完成后上传输出表
func WithUploader(u Uploader) Option {
	return func(b *Builder) {
		b.uploader = u
	}
}

// WithCounter 统计每个输出单元的 token 数
func WithCounter(c tokenizer.Counter) Option {
	return func(b *Builder) {
		b.counter = c
	}
}

// WithLogger 设置日志
func WithLogger(l *logger.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithOutput 设置完成提示的输出位置，默认 stdout
func WithOutput(w io.Writer) Option {
	return func(b *Builder) {
		b.out = w
	}
}

// New 创建 Builder
func New(cfg *conf.Config, pool *workerpool.Pool, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		pool:     pool,
		loaders:  loader.NewFactory(),
		chunkers: chunker.NewFactory(),
		logger:   logger.L(),
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run 依次执行所有任务
//
// 致命错误（配置、输入目录、输出、上传）立即返回；单个文件的失败只记录在报告中，
// 除非开启 fail_on_error，此时所有任务结束后返回 ErrProcessing。
func (b *Builder) Run(ctx context.Context) ([]*Report, error) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	ctx = logger.ToContext(ctx, b.logger)

	log := b.logger.WithContext(ctx)
	log.Info("run started", zap.Int("jobs", len(b.cfg.Jobs)), zap.Int("workers", b.pool.Cap()))

	reports := make([]*Report, 0, len(b.cfg.Jobs))
	failed := 0
	for i := range b.cfg.Jobs {
		report, err := b.RunJob(ctx, &b.cfg.Jobs[i])
		if report != nil {
			reports = append(reports, report)
			failed += report.Failed()
		}
		if err != nil {
			return reports, err
		}
	}

	log.Info("run finished", zap.Int("failed_files", failed))

	if b.cfg.FailOnError && failed > 0 {
		return reports, errors.Newf(errors.ErrProcessing, "%d file(s) failed", failed)
	}
	return reports, nil
}

// RunJob 执行单个任务
func (b *Builder) RunJob(ctx context.Context, job *conf.JobConfig) (*Report, error) {
	start := time.Now()
	ctx = logger.WithJob(ctx, job.Name)
	if logger.GetRunID(ctx) == "" {
		ctx = logger.WithRunID(ctx, uuid.NewString())
	}
	ctx = logger.ToContext(ctx, b.logger)
	log := b.logger.WithContext(ctx)

	d, err := discover.New(job.InputDir, job.Patterns, job.Exclude)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidConfig, job.Name)
	}
	files, err := d.Discover()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInputDir, job.InputDir)
	}

	chk, err := b.chunkers.CreateChunker(b.cfg.Chunk.ChunkerConfig(job.Strategy))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidConfig, job.Name)
	}
	proc := processor.New(chk, b.loaders, b.counter)

	outPath := b.cfg.OutputPath(job)
	w, err := writer.Create(outPath, job.Strategy.RowShape(), writer.WithCRLF(b.cfg.Output.CRLF))
	if err != nil {
		return nil, err
	}

	report := &Report{
		Job:      job.Name,
		Strategy: job.Strategy,
		Output:   outPath,
		Files:    len(files),
	}

	log.Info("job started",
		zap.String("input_dir", job.InputDir),
		zap.String("strategy", job.Strategy.String()),
		zap.Int("files", len(files)),
	)

	if err := b.process(ctx, proc, files, w, report); err != nil {
		w.Close()
		return report, err
	}
	if err := w.Close(); err != nil {
		return report, errors.Wrap(err, errors.ErrOutput, outPath)
	}

	fmt.Fprintf(b.out, "Successfully created '%s' with chunked data.\n", job.Output)

	if b.uploader != nil {
		key, err := b.uploader.Publish(ctx, outPath)
		if err != nil {
			if minio.IsAccessDenied(err) {
				log.Error("upload rejected, check upload credentials", zap.Error(err))
			}
			return report, errors.Wrap(err, errors.ErrUpload, outPath)
		}
		report.Object = key
	}

	report.Duration = time.Since(start)
	log.Info("job finished",
		zap.String("output", outPath),
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed()),
		zap.Int("units", report.Units),
		zap.Int("words", report.Words),
		zap.Int("tokens", report.Tokens),
		zap.Duration("duration", report.Duration),
	)

	return report, nil
}

// process 把文件交给 worker pool 处理，按文件顺序取回结果并写出
func (b *Builder) process(ctx context.Context, proc *processor.Processor, files []discover.File, w *writer.Writer, report *Report) error {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make(chan (<-chan workerpool.TaskResult), b.pool.Cap())
	go func() {
		defer close(pending)
		for _, file := range files {
			file := file
			if jobCtx.Err() != nil {
				return
			}
			fctx := logger.WithFile(jobCtx, file.RelPath)
			pending <- b.pool.SubmitWithResult(func() (interface{}, error) {
				return proc.Process(fctx, file.Path)
			})
		}
	}()

	var fatal error
	i := 0
	for resultCh := range pending {
		file := files[i]
		i++

		result := <-resultCh
		if fatal != nil {
			continue
		}

		if result.Error != nil {
			// 致命错误码（例如 worker pool 已关闭）终止任务，其余只跳过该文件
			if code := errors.ExtractCode(result.Error); errors.IsFatal(code) {
				fatal = errors.Wrap(result.Error, code, file.RelPath)
				cancel()
				continue
			}
			b.recordFailure(ctx, file, result.Error, report)
			continue
		}

		res := result.Data.(*processor.Result)
		if err := w.WriteDocument(res.Document.Title, res.Units); err != nil {
			fatal = err
			cancel()
			continue
		}

		report.Processed++
		report.Units += len(res.Units)
		report.Words += res.Words
		report.Tokens += res.Tokens
	}

	if fatal == nil && ctx.Err() != nil {
		fatal = errors.Wrap(ctx.Err(), errors.ErrInternal, "run canceled")
	}
	return fatal
}

func (b *Builder) recordFailure(ctx context.Context, file discover.File, err error, report *Report) {
	code := errors.ExtractCode(err)
	report.Failures = append(report.Failures, FileFailure{
		File: file.RelPath,
		Code: code,
		Err:  err,
	})

	ctx = logger.WithFile(ctx, file.RelPath)
	if code == errors.ErrDecode {
		logger.WarnContext(ctx, "skipping file, check encoding", zap.Error(err))
		return
	}
	logger.WarnContext(ctx, "skipping file", zap.Int("code", code), zap.Error(err))
}
