package scanner

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/moyu-x/sort-folder/pkg/logger"
	"github.com/moyu-x/sort-folder/pkg/normalizer"
)

// FileEntry 遍历时发现的一个文件系统条目
type FileEntry struct {
	Path      string
	Name      string
	Ext       string // 大写扩展名，含点
	IsDir     bool
	IsRegular bool
	Size      int64
}

type FileWalker struct {
	fs afero.Fs
}

func NewFileWalker(fs afero.Fs) *FileWalker {
	return &FileWalker{fs: fs}
}

func newEntry(path string, info os.FileInfo) FileEntry {
	_, ext := normalizer.SplitExt(info.Name())
	return FileEntry{
		Path:      path,
		Name:      info.Name(),
		Ext:       strings.ToUpper(ext),
		IsDir:     info.IsDir(),
		IsRegular: info.Mode().IsRegular(),
		Size:      info.Size(),
	}
}

// Walk 遍历 root 下的所有条目（不含 root 本身）。
// 无法访问的子条目记录日志后跳过，root 本身无法访问时返回错误。
func (w *FileWalker) Walk(root string, callback func(entry FileEntry) error) error {
	return afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Get().Warn().Err(err).Str("path", path).Msg("访问路径出错，已跳过")
			return nil
		}

		if path == root {
			return nil
		}

		return callback(newEntry(path, info))
	})
}

// Collect 一次性收集 root 下的所有条目。
// 返回的列表在遍历结束时即已固定，不会反映之后的移动。
func (w *FileWalker) Collect(root string) ([]FileEntry, error) {
	var entries []FileEntry

	err := w.Walk(root, func(entry FileEntry) error {
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("遍历目录 %s: %w", root, err)
	}

	logger.Get().Debug().Int("entries", len(entries)).Str("root", root).Msg("目录遍历完成")
	return entries, nil
}
