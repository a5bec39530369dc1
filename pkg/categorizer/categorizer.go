package categorizer

import (
	"path/filepath"
	"strings"

	"github.com/moyu-x/sort-folder/pkg/normalizer"
)

// Category 文件分类，同时也是根目录下的子目录名
type Category string

const (
	Audios   Category = "Audios"
	Images   Category = "Images"
	Videos   Category = "Videos"
	Docs     Category = "Docs"
	Archives Category = "Archives"
	Other    Category = "Other"
)

// 匹配顺序固定，先匹配到的分类生效
var order = []Category{Audios, Images, Videos, Docs, Archives}

var extensions = map[Category][]string{
	Audios:   {".MP3", ".OGG", ".WAV", ".AMR", ".WMA", ".FLAC"},
	Images:   {".JPEG", ".PNG", ".JPG", ".SVG"},
	Videos:   {".AVI", ".MP4", ".MOV", ".MKV"},
	Docs:     {".DOC", ".DOCX", ".TXT", ".PDF", ".XLSX", ".PPTX"},
	Archives: {".ZIP", ".GZ", ".TAR"},
}

// ForExtension 根据扩展名（含点，不区分大小写）返回分类
func ForExtension(ext string) Category {
	ext = strings.ToUpper(ext)
	for _, c := range order {
		for _, known := range extensions[c] {
			if ext == known {
				return c
			}
		}
	}
	return Other
}

// Categorize 根据文件路径的扩展名返回分类
func Categorize(path string) Category {
	_, ext := normalizer.SplitExt(filepath.Base(path))
	return ForExtension(ext)
}

// All 返回全部分类，Other 在最后
func All() []Category {
	all := make([]Category, 0, len(order)+1)
	all = append(all, order...)
	return append(all, Other)
}

// Extensions 返回分类对应的扩展名副本，Other 返回 nil
func Extensions(c Category) []string {
	known := extensions[c]
	if known == nil {
		return nil
	}
	out := make([]string, len(known))
	copy(out, known)
	return out
}

func (c Category) String() string {
	return string(c)
}
