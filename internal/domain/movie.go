package domain

import "encoding/json"

// AltKeyIMDb 是目录条目 alternate_ids 中 IMDb 编号所在的 key。
const AltKeyIMDb = "imdb"

// MovieRecord 是目录 API 单个条目的结构化表示。
//
// 约束：
// - 字段由 provider 显式逐项映射得到；未知字段只进入 Extra，不做动态挂载
// - 创建后只读；下游只使用 Title / Year / AlternateIDs，其余字段原样保留
type MovieRecord struct {
	ID               string
	Title            string
	Year             int
	MPAARating       string
	RuntimeM         int
	CriticsConsensus string
	Synopsis         string

	ReleaseDates map[string]string
	Ratings      map[string]json.RawMessage
	Posters      map[string]string
	AbridgedCast []CastMember
	AlternateIDs map[string]string
	Links        map[string]string

	Extra map[string]json.RawMessage
}

type CastMember struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Characters []string `json:"characters,omitempty"`
}

// CatalogIMDb 返回目录直接给出的 IMDb 编号（不带前缀）。
func (m MovieRecord) CatalogIMDb() (string, bool) {
	if m.AlternateIDs == nil {
		return "", false
	}
	v, ok := m.AlternateIDs[AltKeyIMDb]
	return v, ok
}

// TitleYear 是查询 OMDb 时使用的 (标题, 年份) 组合。
type TitleYear struct {
	Title string
	Year  int
}

func (m MovieRecord) TitleYear() TitleYear {
	return TitleYear{Title: m.Title, Year: m.Year}
}
