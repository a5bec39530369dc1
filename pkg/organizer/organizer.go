package organizer

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/afero"

	"github.com/moyu-x/sort-folder/internal"
	"github.com/moyu-x/sort-folder/pkg/categorizer"
	"github.com/moyu-x/sort-folder/pkg/logger"
	"github.com/moyu-x/sort-folder/pkg/mover"
	"github.com/moyu-x/sort-folder/pkg/progress"
	"github.com/moyu-x/sort-folder/pkg/scanner"
)

// Options 整理阶段的配置
type Options struct {
	// Workers 工作池大小，小于等于 0 时使用 runtime.NumCPU()
	Workers int

	// Collision 目标文件已存在时的处理方式
	Collision mover.CollisionPolicy

	// ProgressEvery 每处理多少个文件输出一次进度
	ProgressEvery int
}

// DefaultOptions 返回默认配置
func DefaultOptions() *Options {
	return &Options{
		Workers:       runtime.NumCPU(),
		Collision:     mover.CollisionOverwrite,
		ProgressEvery: internal.DefaultProgressEvery,
	}
}

// WithWorkers 设置工作线程数
func (o *Options) WithWorkers(n int) *Options {
	o.Workers = n
	return o
}

// WithCollision 设置冲突策略
func (o *Options) WithCollision(policy mover.CollisionPolicy) *Options {
	o.Collision = policy
	return o
}

// Move 一次计划中的移动
type Move struct {
	Source   string
	Dest     string
	Category categorizer.Category
}

// Organizer 把 root 下的每个普通文件移动到 root/<分类> 中
type Organizer struct {
	fs     afero.Fs
	root   string
	opts   *Options
	walker *scanner.FileWalker
	mover  *mover.Mover

	// beforeMove 在工作线程中移动前调用，仅测试使用
	beforeMove func(path string)
}

// New 创建 root 的整理器
func New(fs afero.Fs, root string, opts *Options) *Organizer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Organizer{
		fs:     fs,
		root:   root,
		opts:   opts,
		walker: scanner.NewFileWalker(fs),
		mover:  mover.New(fs, root, opts.Collision),
	}
}

// Plan 返回 Organize 将要执行的移动，不修改文件系统。
// 计划中不处理文件名冲突。
func (o *Organizer) Plan() ([]Move, error) {
	entries, err := o.walker.Collect(o.root)
	if err != nil {
		return nil, err
	}

	var moves []Move
	for _, e := range entries {
		if !e.IsRegular {
			continue
		}
		category := categorizer.ForExtension(e.Ext)
		dest := o.mover.Target(e.Path, category)
		if dest == e.Path {
			continue
		}
		moves = append(moves, Move{Source: e.Path, Dest: dest, Category: category})
	}
	return moves, nil
}

// Organize 先一次性列出目录树，再并发地分类并移动每个普通文件。
// 单个文件失败只记入统计，不会中断整批任务；
// 只有无法遍历 root 或无法启动工作池时返回错误。
func (o *Organizer) Organize() (*internal.OrganizeStats, error) {
	stats := &internal.OrganizeStats{
		StartTime:   time.Now(),
		PerCategory: make(map[string]int),
	}

	entries, err := o.walker.Collect(o.root)
	if err != nil {
		return nil, err
	}

	files := make([]scanner.FileEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsRegular {
			files = append(files, e)
		}
	}
	stats.TotalEntries = len(entries)
	stats.TotalFiles = len(files)

	logger.Get().Info().
		Int("entries", len(entries)).
		Int("files", len(files)).
		Int("workers", o.opts.Workers).
		Msg("开始整理文件")

	pool := NewMovePool(o.opts.Workers, o.process)
	if err := pool.Start(); err != nil {
		return nil, fmt.Errorf("启动工作池: %w", err)
	}

	tracker := progress.NewTracker(len(files), o.opts.ProgressEvery, "整理进度")
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range pool.Results() {
			tracker.MarkProcessed(result.Error)
			record(stats, result)
		}
	}()

	for _, f := range files {
		if err := pool.AddTask(MoveTask{Entry: f}); err != nil {
			logger.Get().Error().Err(err).Str("file", f.Path).Msg("提交任务失败")
		}
	}

	pool.Close()
	<-collected

	stats.EndTime = time.Now()
	logger.Get().Info().
		Int("processed", tracker.GetProcessedCount()).
		Int("moved", stats.Moved).
		Int("unchanged", stats.Unchanged).
		Int("failed", tracker.GetFailedCount()).
		Dur("duration", stats.EndTime.Sub(stats.StartTime)).
		Msg("整理完成")

	return stats, nil
}

func (o *Organizer) process(task MoveTask) MoveResult {
	category := categorizer.ForExtension(task.Entry.Ext)
	if o.beforeMove != nil {
		o.beforeMove(task.Entry.Path)
	}
	result, err := o.mover.Move(task.Entry.Path, category)
	return MoveResult{Result: result, Error: err}
}

func record(stats *internal.OrganizeStats, result MoveResult) {
	switch {
	case result.Error != nil:
		stats.Failed++
		stats.Failures = append(stats.Failures, internal.FileError{
			Path: result.Source,
			Op:   "move",
			Err:  result.Error,
		})
		logger.Get().Error().Err(result.Error).Str("file", result.Source).Msg("移动文件失败")
	case result.Unchanged:
		stats.Unchanged++
	default:
		stats.Moved++
		stats.MovedBytes += result.Size
		stats.PerCategory[string(result.Category)]++
	}
}
