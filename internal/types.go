package internal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FileError 单个文件或归档处理失败的记录
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// OrganizeStats 整理阶段统计
type OrganizeStats struct {
	TotalEntries int            // 遍历到的条目数（含目录）
	TotalFiles   int            // 需要移动的普通文件数
	Moved        int            // 成功移动的文件数
	Unchanged    int            // 已在目标位置的文件数
	Failed       int            // 移动失败的文件数
	MovedBytes   int64          // 移动的字节数
	PerCategory  map[string]int // 每个分类移入的文件数
	Failures     []FileError
	StartTime    time.Time
	EndTime      time.Time
}

// PruneStats 清理空目录阶段统计
type PruneStats struct {
	Removed  []string // 已删除的目录
	Empty    bool     // 根目录清理后是否为空
	Failures []FileError
}

// ExpandStats 解压阶段统计
type ExpandStats struct {
	Archives int      // 找到的可解压归档数
	Expanded []string // 成功解压后创建的目录
	Failures []FileError
}

// PlannedMove 演练模式下计划执行的一次移动
type PlannedMove struct {
	Source   string
	Dest     string
	Category string
}

// Report 一次完整运行的汇总
type Report struct {
	RunID    string
	Root     string
	DryRun   bool
	Planned  []PlannedMove
	Organize *OrganizeStats
	Prune    *PruneStats
	Expand   *ExpandStats
}

// Failures 返回所有阶段的失败记录
func (r *Report) Failures() []FileError {
	var all []FileError
	if r.Organize != nil {
		all = append(all, r.Organize.Failures...)
	}
	if r.Prune != nil {
		all = append(all, r.Prune.Failures...)
	}
	if r.Expand != nil {
		all = append(all, r.Expand.Failures...)
	}
	return all
}

// OK 没有任何失败时返回 true
func (r *Report) OK() bool {
	return len(r.Failures()) == 0
}

func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "run:      %s\n", r.RunID)
	fmt.Fprintf(&b, "root:     %s\n", r.Root)

	if r.DryRun {
		fmt.Fprintf(&b, "planned:  %d moves\n", len(r.Planned))
		for _, m := range r.Planned {
			fmt.Fprintf(&b, "  %s -> %s\n", m.Source, m.Dest)
		}
	}

	if s := r.Organize; s != nil {
		fmt.Fprintf(&b, "moved:    %d/%d files (%s)\n", s.Moved, s.TotalFiles, humanize.Bytes(uint64(s.MovedBytes)))
		if s.Unchanged > 0 {
			fmt.Fprintf(&b, "in place: %d\n", s.Unchanged)
		}
		categories := make([]string, 0, len(s.PerCategory))
		for c := range s.PerCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			fmt.Fprintf(&b, "  %-9s %d\n", c, s.PerCategory[c])
		}
		if !s.EndTime.IsZero() {
			fmt.Fprintf(&b, "took:     %s\n", s.EndTime.Sub(s.StartTime).Round(time.Millisecond))
		}
	}
	if s := r.Prune; s != nil {
		fmt.Fprintf(&b, "pruned:   %d directories\n", len(s.Removed))
	}
	if s := r.Expand; s != nil {
		fmt.Fprintf(&b, "expanded: %d/%d archives\n", len(s.Expanded), s.Archives)
	}

	failures := r.Failures()
	fmt.Fprintf(&b, "failures: %d", len(failures))
	for _, f := range failures {
		fmt.Fprintf(&b, "\n  %s", f.Error())
	}

	return b.String()
}
