package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("worker pool is closed")
)

// TaskResult 任务结果
type TaskResult struct {
	Data  interface{}
	Error error
}

// ============= 配置 =============

// Config Worker Pool 配置
type Config struct {
	Workers int `mapstructure:"workers"` // worker 数量，<=0 时取 CPU 核数
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
	}
}

// ============= 统计信息 =============

// Statistics 统计信息
type Statistics struct {
	mu sync.RWMutex

	Submitted int64 // 已提交
	Completed int64 // 已完成
	Failed    int64 // 失败（返回错误或 panic）
	Running   int64 // 运行中
}

func (s *Statistics) incSubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Submitted++
}

func (s *Statistics) incRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Running++
}

func (s *Statistics) finish(failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Running--
	s.Completed++
	if failed {
		s.Failed++
	}
}

// Snapshot 返回统计信息副本
func (s *Statistics) Snapshot() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Statistics{
		Submitted: s.Submitted,
		Completed: s.Completed,
		Failed:    s.Failed,
		Running:   s.Running,
	}
}

// ============= Worker Pool =============

// Pool 基于 ants 的 Worker Pool
type Pool struct {
	pool   *ants.Pool
	config *Config
	stats  *Statistics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *zap.Logger
}

// New 创建 Worker Pool
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	size := config.Workers
	if size <= 0 {
		size = runtime.NumCPU()
	}

	antsPool, err := ants.NewPool(size,
		ants.WithPanicHandler(func(err interface{}) {
			logger.Error("worker panic", zap.Any("error", err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		pool:   antsPool,
		config: config,
		stats:  &Statistics{},
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}, nil
}

// Submit 提交任务，阻塞直到有空闲 worker
func (p *Pool) Submit(task func()) error {
	return p.submit(func() error {
		task()
		return nil
	})
}

// SubmitWithResult 提交任务并获取结果，task 中的 panic 会转换为错误
func (p *Pool) SubmitWithResult(task func() (interface{}, error)) <-chan TaskResult {
	resultCh := make(chan TaskResult, 1)

	err := p.submit(func() (err error) {
		var data interface{}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panic: %v", r)
				p.logger.Error("task panic recovered", zap.Any("panic", r), zap.Stack("stacktrace"))
			}
			resultCh <- TaskResult{Data: data, Error: err}
			close(resultCh)
		}()

		data, err = task()
		return err
	})
	if err != nil {
		resultCh <- TaskResult{Error: err}
		close(resultCh)
	}

	return resultCh
}

func (p *Pool) submit(task func() error) error {
	select {
	case <-p.ctx.Done():
		return ErrPoolClosed
	default:
	}

	p.stats.incSubmitted()
	p.wg.Add(1)

	err := p.pool.Submit(func() {
		defer p.wg.Done()

		p.stats.incRunning()
		failed := true
		defer func() {
			p.stats.finish(failed)
		}()

		failed = task() != nil
	})
	if err != nil {
		p.wg.Done()
		p.stats.incRunning()
		p.stats.finish(true)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	return nil
}

// ============= 公共方法 =============

// Wait 等待所有已提交任务完成
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Running 获取运行中的 worker 数量
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Cap 获取 worker 容量
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Stats 获取统计信息
func (p *Pool) Stats() Statistics {
	return p.stats.Snapshot()
}

// Shutdown 等待任务结束后关闭
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.pool.Release()
}
