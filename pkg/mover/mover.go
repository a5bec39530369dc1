package mover

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/moyu-x/sort-folder/pkg/categorizer"
	"github.com/moyu-x/sort-folder/pkg/hasher"
	"github.com/moyu-x/sort-folder/pkg/logger"
	"github.com/moyu-x/sort-folder/pkg/normalizer"
)

// CollisionPolicy 目标文件已存在时的处理方式
type CollisionPolicy string

const (
	// CollisionOverwrite 直接覆盖已存在的目标文件
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionSuffix 内容相同则覆盖，否则追加 _1、_2 ... 后缀
	CollisionSuffix CollisionPolicy = "suffix"
)

// ParseCollisionPolicy 解析冲突策略，空字符串视为 overwrite
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CollisionOverwrite:
		return CollisionOverwrite, nil
	case CollisionSuffix:
		return CollisionSuffix, nil
	}
	return "", fmt.Errorf("未知的冲突策略 %q（可选: overwrite, suffix）", s)
}

// Result 单个文件的移动结果
type Result struct {
	Source    string
	Dest      string
	Category  categorizer.Category
	Size      int64
	Unchanged bool // 文件已位于目标位置
}

// Mover 将文件移动到 root/<分类>/<规范化文件名>，可被多个 goroutine 并发使用
type Mover struct {
	fs     afero.Fs
	root   string
	policy CollisionPolicy

	dirsMu sync.RWMutex
	dirs   map[string]bool // 已确认存在的分类目录

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex // suffix 策略下每个分类目录一把锁
}

func New(fs afero.Fs, root string, policy CollisionPolicy) *Mover {
	if policy == "" {
		policy = CollisionOverwrite
	}
	return &Mover{
		fs:     fs,
		root:   root,
		policy: policy,
		dirs:   make(map[string]bool),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Target 返回文件在分类目录中的目标路径
func (m *Mover) Target(path string, category categorizer.Category) string {
	return filepath.Join(m.root, string(category), normalizer.Normalize(filepath.Base(path)))
}

// EnsureDir 确保目录存在。并发创建导致的失败只要目录最终存在即视为成功。
func (m *Mover) EnsureDir(dir string) error {
	m.dirsMu.RLock()
	ok := m.dirs[dir]
	m.dirsMu.RUnlock()
	if ok {
		return nil
	}

	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		if exists, _ := afero.DirExists(m.fs, dir); !exists {
			return fmt.Errorf("创建分类目录 %s: %w", dir, err)
		}
	}

	m.dirsMu.Lock()
	m.dirs[dir] = true
	m.dirsMu.Unlock()
	return nil
}

// Move 将文件移动到所属分类目录
func (m *Mover) Move(path string, category categorizer.Category) (Result, error) {
	result := Result{Source: path, Category: category}

	info, err := m.fs.Stat(path)
	if err != nil {
		return result, fmt.Errorf("读取源文件 %s: %w", path, err)
	}
	result.Size = info.Size()

	dir := filepath.Join(m.root, string(category))
	if err := m.EnsureDir(dir); err != nil {
		return result, err
	}

	dest := m.Target(path, category)
	result.Dest = dest
	if filepath.Clean(path) == filepath.Clean(dest) {
		result.Unchanged = true
		return result, nil
	}

	if m.policy == CollisionSuffix {
		lock := m.lockFor(dir)
		lock.Lock()
		defer lock.Unlock()

		dest, err = m.resolveCollision(path, dest)
		if err != nil {
			return result, err
		}
		result.Dest = dest
	}

	if err := m.rename(path, dest); err != nil {
		return result, err
	}

	logger.Get().Debug().
		Str("source", path).
		Str("destination", dest).
		Str("category", string(category)).
		Msg("文件已移动")

	return result, nil
}

func (m *Mover) lockFor(dir string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	lock, ok := m.locks[dir]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[dir] = lock
	}
	return lock
}

// resolveCollision 目标不存在或内容相同时返回原目标，否则返回第一个可用的 _N 后缀路径
func (m *Mover) resolveCollision(src, dst string) (string, error) {
	exists, err := afero.Exists(m.fs, dst)
	if err != nil {
		return "", fmt.Errorf("检查文件是否存在失败: %w", err)
	}
	if !exists {
		return dst, nil
	}

	if same, err := hasher.SameContent(m.fs, src, dst); err == nil && same {
		logger.Get().Debug().Str("source", src).Str("destination", dst).Msg("目标文件内容相同，直接覆盖")
		return dst, nil
	}

	dir := filepath.Dir(dst)
	stem, ext := normalizer.SplitExt(filepath.Base(dst))
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		exists, err := afero.Exists(m.fs, candidate)
		if err != nil {
			return "", fmt.Errorf("检查文件是否存在失败: %w", err)
		}
		if !exists {
			logger.Get().Debug().
				Str("original_path", dst).
				Str("new_path", candidate).
				Msg("文件名冲突，自动重命名")
			return candidate, nil
		}
	}
}

// rename 使用 rename 移动文件，失败且源文件仍存在时（例如跨卷）复制后删除
func (m *Mover) rename(src, dst string) error {
	renameErr := m.fs.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	if _, err := m.fs.Stat(src); err != nil {
		return fmt.Errorf("移动文件 %s: %w", src, renameErr)
	}

	logger.Get().Debug().
		Err(renameErr).
		Str("source", src).
		Str("destination", dst).
		Msg("直接重命名失败，尝试复制后删除")

	if err := m.copyFile(src, dst); err != nil {
		return fmt.Errorf("移动文件 %s (rename: %v): %w", src, renameErr, err)
	}
	if err := m.fs.Remove(src); err != nil {
		return fmt.Errorf("删除原文件 %s: %w", src, err)
	}
	return nil
}

func (m *Mover) copyFile(src, dst string) error {
	sourceFile, err := m.fs.Open(src)
	if err != nil {
		return fmt.Errorf("打开源文件失败: %w", err)
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return fmt.Errorf("读取源文件信息失败: %w", err)
	}

	destFile, err := m.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("创建目标文件失败: %w", err)
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		_ = m.fs.Remove(dst)
		return fmt.Errorf("复制文件内容失败: %w", err)
	}
	return destFile.Close()
}
