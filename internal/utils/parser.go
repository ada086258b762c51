package utils

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// dateLayouts 外部影评和客户端提交里出现过的日期格式
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
}

// ParseFlexibleDate 按常见格式逐一尝试解析日期串
func ParseFlexibleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatReviewDate 格式化为展示用日期串，如 "Mar 05 2021"
func FormatReviewDate(t time.Time) string {
	return t.Format("Jan 02 2006")
}

// StripHTML 去除 HTML 标签，返回纯文本
// archive.org 的影片描述经常带富文本标记
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

// Truncate 按字符数截断，超出部分加省略号
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
