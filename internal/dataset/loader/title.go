package loader

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveTitle 由文件名得到标题："moby-dick.txt" -> "Moby Dick"
//
// 首尾的连字符不会留下空白，否则 CSV 会给该字段加引号
func DeriveTitle(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.ReplaceAll(stem, "-", " ")
	// Caser 有状态，不能跨 goroutine 共享
	return strings.TrimSpace(cases.Title(language.Und).String(stem))
}
