// Package pruner 删除整理后留下的空目录
package pruner

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/moyu-x/sort-folder/internal"
	"github.com/moyu-x/sort-folder/pkg/logger"
)

type Pruner struct {
	fs       afero.Fs
	keepRoot bool
}

// New 创建空目录清理器。keepRoot 为 true 时根目录即使为空也会保留。
func New(fs afero.Fs, keepRoot bool) *Pruner {
	return &Pruner{fs: fs, keepRoot: keepRoot}
}

// Prune 自底向上删除 dir 下所有不含文件的目录。
// 文件、符号链接等非目录条目都会让所在目录保留。
// 单个目录无法读取或删除时记入失败并视为非空，只有 dir 本身无法读取时返回错误。
func (p *Pruner) Prune(dir string) (*internal.PruneStats, error) {
	info, err := p.fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("读取目录 %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s 不是目录", dir)
	}

	stats := &internal.PruneStats{}
	dirs, err := p.collectDirs(dir, stats)
	if err != nil {
		return nil, err
	}

	// 逆序访问保证子目录先于父目录处理
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		entries, err := afero.ReadDir(p.fs, d)
		if err != nil {
			stats.Failures = append(stats.Failures, internal.FileError{Path: d, Op: "readdir", Err: err})
			continue
		}
		if len(entries) > 0 {
			continue
		}

		if d == dir {
			stats.Empty = true
			if p.keepRoot {
				continue
			}
		}

		if err := p.fs.Remove(d); err != nil {
			logger.Get().Warn().Err(err).Str("dir", d).Msg("删除空目录失败")
			stats.Failures = append(stats.Failures, internal.FileError{Path: d, Op: "remove", Err: err})
			continue
		}
		stats.Removed = append(stats.Removed, d)
		logger.Get().Debug().Str("dir", d).Msg("已删除空目录")
	}

	logger.Get().Info().
		Int("removed", len(stats.Removed)).
		Int("failed", len(stats.Failures)).
		Msg("空目录清理完成")

	return stats, nil
}

// collectDirs 用显式栈前序收集 root 及其下所有目录，不跟随符号链接
func (p *Pruner) collectDirs(root string, stats *internal.PruneStats) ([]string, error) {
	var dirs []string
	stack := []string{root}

	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := afero.ReadDir(p.fs, d)
		if err != nil {
			if d == root {
				return nil, fmt.Errorf("读取目录 %s: %w", d, err)
			}
			// 无法读取的目录不参与清理，其父目录也因此保持非空
			logger.Get().Warn().Err(err).Str("dir", d).Msg("读取目录失败，已跳过")
			stats.Failures = append(stats.Failures, internal.FileError{Path: d, Op: "readdir", Err: err})
			continue
		}
		dirs = append(dirs, d)

		for _, e := range entries {
			if e.IsDir() {
				stack = append(stack, filepath.Join(d, e.Name()))
			}
		}
	}
	return dirs, nil
}
