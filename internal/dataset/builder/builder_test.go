package builder

import (
	"bytes"
	"context"
	"encoding/csv"
	goerrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/dataset-builder/internal/conf"
	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
	"github.com/lk2023060901/dataset-builder/internal/pkg/errors"
	"github.com/lk2023060901/dataset-builder/internal/pkg/logger"
	"github.com/lk2023060901/dataset-builder/internal/pkg/tokenizer"
	"github.com/lk2023060901/dataset-builder/internal/pkg/workerpool"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeUploader struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (u *fakeUploader) Publish(ctx context.Context, path string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return "", u.err
	}
	u.paths = append(u.paths, path)
	return "runs/" + filepath.Base(path), nil
}

func writeFile(t *testing.T, dir, name string, data string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func newConfig(outDir string, jobs ...conf.JobConfig) *conf.Config {
	for i := range jobs {
		if jobs[i].Output == "" {
			jobs[i].Output = jobs[i].Name + ".csv"
		}
	}
	return &conf.Config{
		Chunk: conf.ChunkConfig{
			WindowSize: 1020,
			Stride:     256,
			Separator:  "\n\n",
			MaxChars:   2048,
			MinChars:   50,
		},
		Jobs:   jobs,
		Output: conf.OutputConfig{Dir: outDir},
	}
}

func newPool(t *testing.T, workers int) *workerpool.Pool {
	t.Helper()
	pool, err := workerpool.New(&workerpool.Config{Workers: workers}, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Shutdown)
	return pool
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun_SkipsUndecodableFiles(t *testing.T) {
	root := t.TempDir()
	books := filepath.Join(root, "books")
	writeFile(t, books, "moby-dick.txt", "Call me Ishmael.\tSome  years ago.\n")
	writeFile(t, books, "broken.txt", "bad \xff bytes")
	writeFile(t, books, "zeta-notes.txt", "Line one\nline two")
	writeFile(t, books, "readme.md", "# not picked up")

	outDir := filepath.Join(root, "output")
	cfg := newConfig(outDir, conf.JobConfig{
		Name:     "books",
		InputDir: books,
		Strategy: dstypes.ChunkStrategyFixedWindow,
	})

	var stdout bytes.Buffer
	logs := &syncBuffer{}
	logCfg := logger.DefaultConfig()
	logCfg.Format = "json"
	log, err := logger.NewWithWriter(logCfg, logs)
	require.NoError(t, err)

	b := New(cfg, newPool(t, 2), WithOutput(&stdout), WithLogger(log))
	reports, err := b.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)

	report := reports[0]
	assert.Equal(t, "books", report.Job)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, "broken.txt", report.Failures[0].File)
	assert.Equal(t, errors.ErrDecode, report.Failures[0].Code)
	assert.Equal(t, 2, report.Units)
	assert.Equal(t, 10, report.Words)
	assert.Equal(t, 0, report.Tokens)

	assert.Equal(t, [][]string{
		{"title", "text"},
		{"Moby Dick", "Call me Ishmael. Some years ago."},
		{"Zeta Notes", "Line one line two"},
	}, readCSV(t, filepath.Join(outDir, "books.csv")))

	assert.Equal(t, "Successfully created 'books.csv' with chunked data.\n", stdout.String())

	out := logs.String()
	assert.Contains(t, out, `"msg":"skipping file, check encoding"`)
	assert.Contains(t, out, `"file":"broken.txt"`)
	assert.Contains(t, out, `"job":"books"`)
	assert.Contains(t, out, `"run_id":"`)
}

func TestRun_Strategies(t *testing.T) {
	root := t.TempDir()
	essays := filepath.Join(root, "essays")
	transcripts := filepath.Join(root, "transcripts")
	writeFile(t, essays, "on-walking.txt", "First para\ncontinues.\n\n\nSecond para.")
	writeFile(t, transcripts, "ep-1.txt", "First sentence. Second one.")
	writeFile(t, transcripts, "season-2/ep-2.md", "# Heading\n\nBody *text*.")

	outDir := filepath.Join(root, "out")
	cfg := newConfig(outDir,
		conf.JobConfig{Name: "essays", InputDir: essays, Strategy: dstypes.ChunkStrategyParagraph},
		conf.JobConfig{
			Name:     "transcripts",
			InputDir: transcripts,
			Patterns: []string{"**/*.txt", "**/*.md"},
			Strategy: dstypes.ChunkStrategySentenceBudget,
		},
	)

	b := New(cfg, newPool(t, 2), WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()))
	reports, err := b.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, [][]string{
		{"title", "text"},
		{"On Walking", "First para continues."},
		{"On Walking", "Second para."},
	}, readCSV(t, filepath.Join(outDir, "essays.csv")))

	assert.Equal(t, [][]string{
		{"text"},
		{"First sentence. Second one."},
		{"Heading Body text."},
	}, readCSV(t, filepath.Join(outDir, "transcripts.csv")))
}

func TestRun_PreservesFileOrder(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in")
	const n = 30
	for i := n - 1; i >= 0; i-- {
		writeFile(t, input, fmt.Sprintf("doc-%02d.txt", i), fmt.Sprintf("body %d", i))
	}

	outDir := filepath.Join(root, "out")
	cfg := newConfig(outDir, conf.JobConfig{Name: "docs", InputDir: input, Strategy: dstypes.ChunkStrategyFixedWindow})

	b := New(cfg, newPool(t, 4), WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()))
	_, err := b.Run(context.Background())
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(outDir, "docs.csv"))
	require.Len(t, records, n+1)
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("Doc %02d", i), records[i+1][0])
		assert.Equal(t, fmt.Sprintf("body %d", i), records[i+1][1])
	}
}

func TestRun_FailOnError(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in")
	writeFile(t, input, "good.txt", "fine")
	writeFile(t, input, "bad.txt", "\xfe\xfe")

	outDir := filepath.Join(root, "out")
	cfg := newConfig(outDir, conf.JobConfig{Name: "docs", InputDir: input, Strategy: dstypes.ChunkStrategyFixedWindow})
	cfg.FailOnError = true

	b := New(cfg, newPool(t, 2), WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()))
	reports, err := b.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrProcessing))
	require.Len(t, reports, 1)

	assert.Equal(t, [][]string{{"title", "text"}, {"Good", "fine"}}, readCSV(t, filepath.Join(outDir, "docs.csv")))
}

func TestRun_MissingInputDir(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "out")
	cfg := newConfig(outDir,
		conf.JobConfig{Name: "ghost", InputDir: filepath.Join(root, "nope"), Strategy: dstypes.ChunkStrategyFixedWindow},
	)

	b := New(cfg, newPool(t, 1), WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()))
	reports, err := b.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInputDir))
	assert.Empty(t, reports)

	_, statErr := os.Stat(filepath.Join(outDir, "ghost.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_EmptyInputDir(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "empty")
	require.NoError(t, os.MkdirAll(input, 0o755))

	outDir := filepath.Join(root, "out")
	cfg := newConfig(outDir, conf.JobConfig{Name: "empty", InputDir: input, Strategy: dstypes.ChunkStrategySentenceBudget})

	b := New(cfg, newPool(t, 1), WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()))
	reports, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, reports[0].Files)

	data, err := os.ReadFile(filepath.Join(outDir, "empty.csv"))
	require.NoError(t, err)
	assert.Equal(t, "text\n", string(data))
}

func TestRun_UploadAndTokens(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in")
	writeFile(t, input, "a.txt", "one two three")

	outDir := filepath.Join(root, "out")
	cfg := newConfig(outDir, conf.JobConfig{Name: "docs", InputDir: input, Strategy: dstypes.ChunkStrategyFixedWindow})

	uploader := &fakeUploader{}
	b := New(cfg, newPool(t, 1),
		WithOutput(&bytes.Buffer{}),
		WithLogger(logger.Nop()),
		WithUploader(uploader),
		WithCounter(tokenizer.WordCounter{}),
	)
	reports, err := b.Run(context.Background())
	require.NoError(t, err)

	report := reports[0]
	assert.Equal(t, "runs/docs.csv", report.Object)
	assert.Equal(t, []string{filepath.Join(outDir, "docs.csv")}, uploader.paths)
	assert.Equal(t, 3, report.Words)
	assert.Equal(t, 3, report.Tokens)
}

func TestRun_UploadFailure(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in")
	writeFile(t, input, "a.txt", "text")

	cfg := newConfig(filepath.Join(root, "out"),
		conf.JobConfig{Name: "first", InputDir: input, Strategy: dstypes.ChunkStrategyFixedWindow},
		conf.JobConfig{Name: "second", InputDir: input, Strategy: dstypes.ChunkStrategyFixedWindow},
	)

	uploader := &fakeUploader{err: goerrors.New("connection refused")}
	b := New(cfg, newPool(t, 1), WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()), WithUploader(uploader))
	reports, err := b.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpload))
	assert.True(t, strings.Contains(err.Error(), "connection refused"))
	require.Len(t, reports, 1)
	assert.Equal(t, "first", reports[0].Job)
}

func TestRun_Canceled(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in")
	writeFile(t, input, "a.txt", "text")

	cfg := newConfig(filepath.Join(root, "out"), conf.JobConfig{Name: "docs", InputDir: input, Strategy: dstypes.ChunkStrategyFixedWindow})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New(cfg, newPool(t, 1), WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()))
	_, err := b.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestRun_FatalTaskErrorStopsRun(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in")
	writeFile(t, input, "a.txt", "alpha")
	writeFile(t, input, "b.txt", "beta")

	cfg := newConfig(filepath.Join(root, "out"),
		conf.JobConfig{Name: "first", InputDir: input, Strategy: dstypes.ChunkStrategyFixedWindow},
		conf.JobConfig{Name: "second", InputDir: input, Strategy: dstypes.ChunkStrategyFixedWindow},
	)

	// 已关闭的 pool 返回 ErrPoolClosed，按内部错误处理而不是跳过文件
	pool := newPool(t, 1)
	pool.Shutdown()

	var stdout bytes.Buffer
	b := New(cfg, pool, WithOutput(&stdout), WithLogger(logger.Nop()))
	reports, err := b.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternal))
	assert.True(t, goerrors.Is(err, workerpool.ErrPoolClosed))

	require.Len(t, reports, 1)
	assert.Equal(t, "first", reports[0].Job)
	assert.Equal(t, 0, reports[0].Processed)
	assert.Equal(t, 0, reports[0].Failed())
	assert.Empty(t, stdout.String())
}
