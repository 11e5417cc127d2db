package domain

import (
	"regexp"
	"strings"
)

// IMDbPrefix 是 IMDb 编号的固定前缀。目录 API 返回的编号不带前缀，OMDb 返回的带前缀。
const IMDbPrefix = "tt"

// IMDbID 是影片在各服务之间通用的外部编号（规范化后形如 tt1234567）。
//
// 约束：要么得到合法编号，要么失败；不做“猜测式”补零。
type IMDbID string

var imdbIDRE = regexp.MustCompile(`^tt[0-9]{5,10}$`)

// ParseIMDbID 校验并解析规范化后的编号字符串。
// 输入必须已经带小写 tt 前缀。
func ParseIMDbID(s string) (IMDbID, bool) {
	s = strings.TrimSpace(s)
	if !imdbIDRE.MatchString(s) {
		return "", false
	}
	return IMDbID(s), true
}

// Body 返回去掉 tt 前缀后的数字部分（最终输出的 imdb_id 字段）。
func (id IMDbID) Body() string {
	return strings.TrimPrefix(string(id), IMDbPrefix)
}
