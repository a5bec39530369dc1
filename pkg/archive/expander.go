// Package archive 将 Archives 分类目录中的 zip 压缩包解压到同名目录。
//
// 解压前会先按文件头确认是 zip，再检查条目数与解压后总大小，
// 每个条目解析到目标目录之外时拒绝解压。
// 解压成功后删除压缩包，失败时保留压缩包并清理本次创建的目录。
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/spf13/afero"

	"github.com/moyu-x/sort-folder/internal"
	"github.com/moyu-x/sort-folder/pkg/logger"
	"github.com/moyu-x/sort-folder/pkg/normalizer"
)

// headerSize filetype 识别文件类型所需的头部字节数
const headerSize = 262

var (
	ErrNotZip       = errors.New("不是 zip 文件")
	ErrUnsafeEntry  = errors.New("压缩包条目路径越界")
	ErrTooManyFiles = errors.New("压缩包条目过多")
	ErrTooLarge     = errors.New("压缩包解压后过大")
)

// extractable 会被解压的扩展名（小写）
var extractable = map[string]bool{
	".zip": true,
}

// Options 单个压缩包的限制，零值表示使用默认值
type Options struct {
	MaxFiles            int
	MaxUncompressedSize int64
}

func DefaultOptions() *Options {
	return &Options{
		MaxFiles:            internal.DefaultMaxArchiveFiles,
		MaxUncompressedSize: internal.DefaultMaxUncompressedSize,
	}
}

type Expander struct {
	fs                  afero.Fs
	maxFiles            int
	maxUncompressedSize int64
}

func NewExpander(fs afero.Fs, opts *Options) *Expander {
	e := &Expander{
		fs:                  fs,
		maxFiles:            internal.DefaultMaxArchiveFiles,
		maxUncompressedSize: internal.DefaultMaxUncompressedSize,
	}
	if opts != nil && opts.MaxFiles > 0 {
		e.maxFiles = opts.MaxFiles
	}
	if opts != nil && opts.MaxUncompressedSize > 0 {
		e.maxUncompressedSize = opts.MaxUncompressedSize
	}
	return e
}

// IsExtractable 判断文件名是否带有可解压的扩展名（不区分大小写）
func IsExtractable(name string) bool {
	_, ext := normalizer.SplitExt(name)
	return extractable[strings.ToLower(ext)]
}

// Expand 解压 root/Archives 下第一层的所有 zip 文件，不进入子目录。
// Archives 目录不存在时返回空统计。
func (e *Expander) Expand(root string) *internal.ExpandStats {
	stats := &internal.ExpandStats{}
	dir := filepath.Join(root, internal.ArchivesDirName)

	entries, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Get().Error().Err(err).Str("dir", dir).Msg("读取压缩包目录失败")
			stats.Failures = append(stats.Failures, internal.FileError{Path: dir, Op: "readdir", Err: err})
		}
		return stats
	}

	for _, entry := range entries {
		if !entry.Mode().IsRegular() || !IsExtractable(entry.Name()) {
			continue
		}
		stats.Archives++

		path := filepath.Join(dir, entry.Name())
		target, err := e.ExpandArchive(path)
		if err != nil {
			logger.Get().Error().Err(err).Str("archive", path).Msg("解压失败，已保留压缩包")
			stats.Failures = append(stats.Failures, internal.FileError{Path: path, Op: "extract", Err: err})
			continue
		}
		stats.Expanded = append(stats.Expanded, target)
	}

	logger.Get().Info().
		Int("archives", stats.Archives).
		Int("expanded", len(stats.Expanded)).
		Int("failed", len(stats.Failures)).
		Msg("压缩包处理完成")

	return stats
}

// ExpandArchive 把 path 解压到同级的 <文件名主干> 目录并删除压缩包，返回解压目录
func (e *Expander) ExpandArchive(path string) (string, error) {
	stem, _ := normalizer.SplitExt(filepath.Base(path))
	dir := filepath.Join(filepath.Dir(path), stem)

	f, err := e.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("打开压缩包: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("读取压缩包信息: %w", err)
	}

	if err := sniff(f); err != nil {
		return "", err
	}

	reader, err := zip.NewReader(f, info.Size())
	// 不安全的条目路径由 safeJoin 逐个处理
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return "", fmt.Errorf("读取压缩包: %w", err)
	}

	if err := e.checkLimits(reader); err != nil {
		return "", err
	}

	existed, _ := afero.DirExists(e.fs, dir)
	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建解压目录: %w", err)
	}

	for _, file := range reader.File {
		if err := e.extractFile(dir, file); err != nil {
			if !existed {
				if rmErr := e.fs.RemoveAll(dir); rmErr != nil {
					logger.Get().Warn().Err(rmErr).Str("dir", dir).Msg("清理解压目录失败")
				}
			}
			return "", err
		}
	}

	// Windows 下需先关闭才能删除
	f.Close()
	if err := e.fs.Remove(path); err != nil {
		return "", fmt.Errorf("删除压缩包: %w", err)
	}

	logger.Get().Debug().
		Str("archive", path).
		Str("dir", dir).
		Int("entries", len(reader.File)).
		Msg("压缩包已解压")

	return dir, nil
}

// checkLimits 按中央目录中声明的大小检查条目数与解压后总大小
func (e *Expander) checkLimits(reader *zip.Reader) error {
	if len(reader.File) > e.maxFiles {
		return fmt.Errorf("%w: %d（上限 %d）", ErrTooManyFiles, len(reader.File), e.maxFiles)
	}

	var total uint64
	for _, file := range reader.File {
		total += file.UncompressedSize64
		if total > uint64(e.maxUncompressedSize) {
			return fmt.Errorf("%w: 超过 %d 字节", ErrTooLarge, e.maxUncompressedSize)
		}
	}
	return nil
}

// sniff 根据文件头确认是 zip
func sniff(f afero.File) error {
	head := make([]byte, headerSize)
	n, err := f.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("读取文件头: %w", err)
	}
	if !filetype.Is(head[:n], "zip") {
		return ErrNotZip
	}
	return nil
}

func (e *Expander) extractFile(dir string, file *zip.File) error {
	target, err := safeJoin(dir, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		if err := e.fs.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("创建目录 %s: %w", target, err)
		}
		return nil
	}

	if err := e.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("创建目录 %s: %w", filepath.Dir(target), err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("读取条目 %s: %w", file.Name, err)
	}
	defer src.Close()

	perm := file.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	dst, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("创建文件 %s: %w", target, err)
	}

	if _, err := io.Copy(dst, io.LimitReader(src, int64(file.UncompressedSize64))); err != nil {
		dst.Close()
		return fmt.Errorf("写入文件 %s: %w", target, err)
	}
	return dst.Close()
}

// safeJoin 拼接条目路径，拒绝解析到 dir 之外的条目
func safeJoin(dir, name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" || strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}

	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}
	return target, nil
}
