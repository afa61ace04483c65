package conf

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/lk2023060901/dataset-builder/internal/dataset/chunker"
	dstypes "github.com/lk2023060901/dataset-builder/internal/dataset/types"
	"github.com/lk2023060901/dataset-builder/internal/pkg/errors"
	"github.com/lk2023060901/dataset-builder/internal/pkg/logger"
	"github.com/lk2023060901/dataset-builder/internal/pkg/minio"
	"github.com/lk2023060901/dataset-builder/internal/pkg/tokenizer"
	"github.com/lk2023060901/dataset-builder/internal/pkg/workerpool"
)

// EnvPrefix 环境变量前缀，例如 DSB_OUTPUT_DIR 覆盖 output.dir
const EnvPrefix = "DSB"

type Config struct {
	Log         logger.Config     `mapstructure:"log"`
	Chunk       ChunkConfig       `mapstructure:"chunk"`
	Jobs        []JobConfig       `mapstructure:"jobs"`
	Output      OutputConfig      `mapstructure:"output"`
	Worker      workerpool.Config `mapstructure:"worker"`
	Tokens      TokensConfig      `mapstructure:"tokens"`
	Upload      UploadConfig      `mapstructure:"upload"`
	FailOnError bool              `mapstructure:"fail_on_error"`
}

// ChunkConfig 各分块策略的参数，所有任务共用
type ChunkConfig struct {
	WindowSize int    `mapstructure:"window_size"`
	Stride     int    `mapstructure:"stride"`
	Separator  string `mapstructure:"separator"`
	MaxChars   int    `mapstructure:"max_chars"`
	MinChars   int    `mapstructure:"min_chars"`
}

// JobConfig 一个输入目录对应一张输出表
type JobConfig struct {
	Name     string                `mapstructure:"name"`
	InputDir string                `mapstructure:"input_dir"`
	Patterns []string              `mapstructure:"patterns"`
	Exclude  []string              `mapstructure:"exclude"`
	Strategy dstypes.ChunkStrategy `mapstructure:"strategy"`
	Output   string                `mapstructure:"output"` // 相对 output.dir 的文件名，默认 <name>.csv
}

type OutputConfig struct {
	Dir  string `mapstructure:"dir"`
	CRLF bool   `mapstructure:"crlf"` // 行尾使用 \r\n
}

type TokensConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Encoding string `mapstructure:"encoding"`
}

type UploadConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	minio.Config `mapstructure:",squash"`
}

// ChunkerConfig 组装某个策略的 Chunker 配置
func (c *ChunkConfig) ChunkerConfig(strategy dstypes.ChunkStrategy) *chunker.CreateChunkerConfig {
	return &chunker.CreateChunkerConfig{
		Strategy:   strategy,
		WindowSize: c.WindowSize,
		Stride:     c.Stride,
		Separator:  c.Separator,
		MaxChars:   c.MaxChars,
		MinChars:   c.MinChars,
	}
}

// OutputPath 返回任务输出表的完整路径
func (c *Config) OutputPath(job *JobConfig) string {
	return filepath.Join(c.Output.Dir, job.Output)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file.filename", "logs/dsbuilder.log")
	v.SetDefault("log.file.maxsize", 100)
	v.SetDefault("log.file.maxage", 30)
	v.SetDefault("log.file.maxbackups", 10)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("chunk.window_size", chunker.DefaultWindowSize)
	v.SetDefault("chunk.stride", chunker.DefaultStride)
	v.SetDefault("chunk.separator", chunker.DefaultSeparator)
	v.SetDefault("chunk.max_chars", chunker.DefaultMaxChars)
	v.SetDefault("chunk.min_chars", chunker.DefaultMinChars)

	v.SetDefault("jobs", []map[string]interface{}{
		{"name": "books", "input_dir": "books", "strategy": string(dstypes.ChunkStrategyFixedWindow)},
		{"name": "movies-tv", "input_dir": "movies-tv", "strategy": string(dstypes.ChunkStrategyFixedWindow)},
	})

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.crlf", false)

	v.SetDefault("worker.workers", 0)

	v.SetDefault("tokens.enabled", false)
	v.SetDefault("tokens.encoding", tokenizer.DefaultEncoding)

	v.SetDefault("upload.enabled", false)
	v.SetDefault("upload.endpoint", "")
	v.SetDefault("upload.access_key_id", "")
	v.SetDefault("upload.secret_access_key", "")
	v.SetDefault("upload.use_ssl", true)
	v.SetDefault("upload.bucket", "datasets")
	v.SetDefault("upload.prefix", "")

	v.SetDefault("fail_on_error", false)
}

// LoadConfig 读取配置；path 为空时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidConfig, "failed to read config")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidConfig, "failed to unmarshal config")
	}

	config.fillJobDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) fillJobDefaults() {
	for i := range c.Jobs {
		job := &c.Jobs[i]
		if job.InputDir == "" {
			job.InputDir = job.Name
		}
		if job.Strategy == "" {
			job.Strategy = dstypes.ChunkStrategyFixedWindow
		}
		if job.Output == "" {
			job.Output = job.Name + ".csv"
		}
	}
}

// Validate 在处理任何文件之前检查整个配置
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return errors.NewConfigError("log: %v", err)
	}

	if len(c.Jobs) == 0 {
		return errors.NewConfigError("at least one job is required")
	}

	used := make(map[dstypes.ChunkStrategy]bool)
	names := make(map[string]bool)
	outputs := make(map[string]bool)
	for i := range c.Jobs {
		job := &c.Jobs[i]
		if job.Name == "" {
			return errors.NewConfigError("jobs[%d]: name is required", i)
		}
		if names[job.Name] {
			return errors.NewConfigError("jobs[%d]: duplicate job name %q", i, job.Name)
		}
		names[job.Name] = true

		if job.InputDir == "" {
			return errors.NewConfigError("job %s: input_dir is required", job.Name)
		}
		if !job.Strategy.Valid() {
			return errors.NewConfigError("job %s: unknown strategy %q", job.Name, job.Strategy)
		}
		if job.Output == "" {
			return errors.NewConfigError("job %s: output is required", job.Name)
		}
		out := c.OutputPath(job)
		if outputs[out] {
			return errors.NewConfigError("job %s: output %s already used by another job", job.Name, out)
		}
		outputs[out] = true

		used[job.Strategy] = true
	}

	// 只校验被任务使用的策略参数
	for strategy := range used {
		if err := c.Chunk.validate(strategy); err != nil {
			return errors.NewConfigError("chunk (%s): %v", strategy, err)
		}
	}

	if c.Output.Dir == "" {
		return errors.NewConfigError("output.dir is required")
	}

	if c.Tokens.Enabled && c.Tokens.Encoding == "" {
		return errors.NewConfigError("tokens.encoding is required when tokens are enabled")
	}

	if c.Upload.Enabled {
		if err := c.Upload.Config.Validate(); err != nil {
			return errors.NewConfigError("upload: %v", err)
		}
	}

	return nil
}

func (c *ChunkConfig) validate(strategy dstypes.ChunkStrategy) error {
	switch strategy {
	case dstypes.ChunkStrategyFixedWindow:
		cfg := &chunker.FixedWindowChunkerConfig{WindowSize: c.WindowSize, Stride: c.Stride}
		return cfg.Validate()
	case dstypes.ChunkStrategyParagraph:
		cfg := &chunker.ParagraphChunkerConfig{Separator: c.Separator}
		return cfg.Validate()
	case dstypes.ChunkStrategySentenceBudget:
		cfg := &chunker.SentenceBudgetChunkerConfig{MaxChars: c.MaxChars, MinChars: c.MinChars}
		return cfg.Validate()
	}
	return fmt.Errorf("unknown strategy %q", strategy)
}
