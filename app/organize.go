package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/moyu-x/sort-folder/internal"
	"github.com/moyu-x/sort-folder/pkg/archive"
	"github.com/moyu-x/sort-folder/pkg/logger"
	"github.com/moyu-x/sort-folder/pkg/mover"
	"github.com/moyu-x/sort-folder/pkg/organizer"
	"github.com/moyu-x/sort-folder/pkg/pruner"
)

// ErrInvalidRoot 根目录不存在或不是目录
var ErrInvalidRoot = errors.New("无效的根目录")

type OrganizeOptions struct {
	Root      string
	Workers   int
	Collision string
	KeepRoot  bool
	Extract   bool
	DryRun    bool
	Archive   *archive.Options

	Verbose  bool
	LogLevel string
	LogFile  string

	// Fs 为空时使用真实文件系统
	Fs afero.Fs
}

// RunOrganize 依次执行整理、清理空目录、解压三个阶段。
// 演练模式只生成移动计划，不做任何修改。
func RunOrganize(opts *OrganizeOptions) (*internal.Report, error) {
	logLevel := opts.LogLevel
	if opts.Verbose {
		logLevel = "debug"
	}
	if err := logger.Init(logLevel, opts.LogFile); err != nil {
		return nil, fmt.Errorf("初始化日志: %w", err)
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	root, err := validateRoot(fs, opts.Root)
	if err != nil {
		return nil, err
	}

	policy, err := mover.ParseCollisionPolicy(opts.Collision)
	if err != nil {
		return nil, err
	}

	report := &internal.Report{
		RunID:  uuid.NewString(),
		Root:   root,
		DryRun: opts.DryRun,
	}
	logger.Attach("run_id", report.RunID)

	logger.Get().Info().Msgf("根目录: %s", root)
	logger.Get().Info().Msgf("冲突策略: %s", policy)
	if opts.DryRun {
		logger.Get().Info().Msg("演练模式，不会修改任何文件")
	}

	orgOpts := organizer.DefaultOptions().WithCollision(policy)
	if opts.Workers > 0 {
		orgOpts.WithWorkers(opts.Workers)
	}
	org := organizer.New(fs, root, orgOpts)

	if opts.DryRun {
		moves, err := org.Plan()
		if err != nil {
			return nil, fmt.Errorf("生成移动计划: %w", err)
		}
		for _, m := range moves {
			report.Planned = append(report.Planned, internal.PlannedMove{
				Source:   m.Source,
				Dest:     m.Dest,
				Category: string(m.Category),
			})
		}
		return report, nil
	}

	report.Organize, err = org.Organize()
	if err != nil {
		return nil, fmt.Errorf("整理文件失败: %w", err)
	}

	report.Prune, err = pruner.New(fs, opts.KeepRoot).Prune(root)
	if err != nil {
		return nil, fmt.Errorf("清理空目录失败: %w", err)
	}

	if opts.Extract {
		report.Expand = archive.NewExpander(fs, opts.Archive).Expand(root)
	}

	if !report.OK() {
		logger.Get().Warn().Int("failures", len(report.Failures())).Msg("部分文件处理失败")
	}
	return report, nil
}

func validateRoot(fs afero.Fs, root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: 未指定", ErrInvalidRoot)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}

	info, err := fs.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s 不是目录", ErrInvalidRoot, abs)
	}
	return abs, nil
}
