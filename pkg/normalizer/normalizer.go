// Package normalizer 将文件名转换为可移植的 ASCII 形式。
//
// 主干部分先做 NFC 组合，再把西里尔字母音译为拉丁字母，最后把所有
// [A-Za-z0-9] 以外的字符替换为下划线。扩展名原样保留。
package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// 小写字母的音译表，大写字母由 buildTable 派生
var lowerTable = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "j", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch", 'ъ': "",
	'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya", 'є': "je", 'і': "i",
	'ї': "ji", 'ґ': "g",
}

// transTable 中大写字母一律取小写音译的大写形式，Я 对应 YA 而不是 UA
var transTable = buildTable()

func buildTable() map[rune]string {
	table := make(map[rune]string, len(lowerTable)*2)
	for r, latin := range lowerTable {
		table[r] = latin
		table[upper(r)] = strings.ToUpper(latin)
	}
	return table
}

// upper 返回西里尔小写字母对应的大写字母
func upper(r rune) rune {
	return []rune(strings.ToUpper(string(r)))[0]
}

// SplitExt 拆分文件名为主干和扩展名（扩展名包含点）。
// 开头的点属于主干：".bashrc" 没有扩展名。
func SplitExt(name string) (string, string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name, ""
	}
	if strings.Trim(name[:dot], ".") == "" {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// Transliterate 逐字符音译，表中没有的字符原样保留
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if latin, ok := transTable[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize 返回规范化后的文件名
func Normalize(name string) string {
	stem, ext := SplitExt(name)
	stem = unsafeChars.ReplaceAllString(Transliterate(norm.NFC.String(stem)), "_")
	// 只由 ъ/ь 组成的主干音译后为空，空文件名无法作为目标，"" + ".txt" 也会被再次拆分为主干 ".txt"
	if stem == "" && name != "" {
		stem = "_"
	}
	return stem + ext
}
