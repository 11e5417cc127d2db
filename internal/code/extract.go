package code

import (
	"regexp"
	"sort"
	"strings"

	"github.com/John-Robertt/imgcount/internal/domain"
)

// 带前缀的变体：允许大小写混用，且必须是独立片段（URL 路径段也算）。
var prefixedRE = regexp.MustCompile(`(?i)\btt([0-9]{5,10})\b`)

// 目录 API 的 alternate_ids.imdb 只给数字段。
var bareRE = regexp.MustCompile(`^[0-9]{5,10}$`)

type UnmatchedError struct {
	// Kind: "no_match" 或 "ambiguous"
	Kind string
	// Raw 是原始输入（便于定位）。
	Raw string
	// Candidates 仅在 ambiguous 时返回（已排序，保证稳定）。
	Candidates []domain.IMDbID
}

func (e *UnmatchedError) Error() string {
	switch e.Kind {
	case "no_match":
		return "无法从 " + quote(e.Raw) + " 解析出 IMDb 编号"
	case "ambiguous":
		parts := make([]string, 0, len(e.Candidates))
		for _, c := range e.Candidates {
			parts = append(parts, string(c))
		}
		return "解析到多个不同 IMDb 编号（ambiguous）：" + strings.Join(parts, ", ")
	default:
		return "unmatched"
	}
}

// Extract 把各来源给出的编号文本规范化为 IMDbID。
//
// 支持：
// - "1234567"（目录 API 的 alternate_ids.imdb）
// - "tt1234567" / "TT1234567"（OMDb 的 imdbID）
// - "http://www.imdb.com/title/tt1234567/"（详情页 URL）
//
// 若提取失败，返回 *UnmatchedError（no_match / ambiguous）。
func Extract(raw string) (domain.IMDbID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &UnmatchedError{Kind: "no_match", Raw: raw}
	}

	if bareRE.MatchString(s) {
		if id, ok := domain.ParseIMDbID(domain.IMDbPrefix + s); ok {
			return id, nil
		}
	}

	m := map[domain.IMDbID]struct{}{}
	for _, sm := range prefixedRE.FindAllStringSubmatch(s, -1) {
		if len(sm) < 2 {
			continue
		}
		if id, ok := domain.ParseIMDbID(domain.IMDbPrefix + sm[1]); ok {
			m[id] = struct{}{}
		}
	}

	if len(m) == 0 {
		return "", &UnmatchedError{Kind: "no_match", Raw: raw}
	}
	if len(m) > 1 {
		cands := make([]domain.IMDbID, 0, len(m))
		for c := range m {
			cands = append(cands, c)
		}
		sort.Slice(cands, func(i, j int) bool { return string(cands[i]) < string(cands[j]) })
		return "", &UnmatchedError{Kind: "ambiguous", Raw: raw, Candidates: cands}
	}
	for c := range m {
		return c, nil
	}
	return "", &UnmatchedError{Kind: "no_match", Raw: raw}
}

func quote(s string) string {
	if len(s) > 64 {
		s = s[:61] + "..."
	}
	return "\"" + s + "\""
}
