package organizer

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/moyu-x/sort-folder/internal"
	"github.com/moyu-x/sort-folder/pkg/logger"
	"github.com/moyu-x/sort-folder/pkg/mover"
	"github.com/moyu-x/sort-folder/pkg/scanner"
)

type MoveTask struct {
	Entry scanner.FileEntry
}

type MoveResult struct {
	mover.Result
	Error error
}

// MovePool 每个文件一个任务，由固定大小的 goroutine 池执行
type MovePool struct {
	workers int
	handle  func(MoveTask) MoveResult
	results chan MoveResult
	wg      sync.WaitGroup
	pool    *ants.Pool
}

func NewMovePool(workers int, handle func(MoveTask) MoveResult) *MovePool {
	return &MovePool{
		workers: workers,
		handle:  handle,
		results: make(chan MoveResult, internal.DefaultBufferSize),
	}
}

func (p *MovePool) Start() error {
	logger.Get().Debug().Msgf("启动移动任务池，工作线程数: %d", p.workers)

	pool, err := ants.NewPool(p.workers, ants.WithLogger(logger.Get()))
	if err != nil {
		return fmt.Errorf("创建 goroutine 池失败: %w", err)
	}
	p.pool = pool
	return nil
}

// AddTask 提交一个任务，池满时阻塞。
// 提交失败时该文件记为失败结果，不影响其他任务。
func (p *MovePool) AddTask(task MoveTask) error {
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		p.results <- p.run(task)
	})
	if err != nil {
		p.wg.Done()
		p.results <- MoveResult{
			Result: mover.Result{Source: task.Entry.Path},
			Error:  fmt.Errorf("提交任务失败: %w", err),
		}
	}
	return err
}

func (p *MovePool) run(task MoveTask) (result MoveResult) {
	defer func() {
		if r := recover(); r != nil {
			result = MoveResult{
				Result: mover.Result{Source: task.Entry.Path},
				Error:  fmt.Errorf("任务异常: %v", r),
			}
		}
	}()
	return p.handle(task)
}

func (p *MovePool) Results() <-chan MoveResult {
	return p.results
}

// Close 等待所有已提交的任务结束后关闭结果通道
func (p *MovePool) Close() {
	p.wg.Wait()

	if p.pool != nil {
		p.pool.Release()
	}

	close(p.results)
	logger.Get().Debug().Msg("移动任务池已关闭")
}
