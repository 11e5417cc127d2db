package domain

import (
	"encoding/json"
	"time"
)

const (
	ErrCodeFetchFailed        = "fetch_failed"
	ErrCodeParseFailed        = "parse_failed"
	ErrCodeLookupFailed       = "lookup_failed"
	ErrCodeResolveFailed      = "resolve_failed"
	ErrCodeConfigNotFound     = "config_not_found"
	ErrCodeConfigInvalid      = "config_invalid"
	ErrCodeConfigMissingKey   = "config_missing_api_key"
	ErrCodeTotalCountFailed   = "total_count_failed"
	ErrCodeCatalogFetchFailed = "catalog_failed"
)

// DetailInfo 是单部影片的最终输出：详情页 URL、img 数量、去前缀的 IMDb 编号。
//
// Count 为 nil 表示该条目没有拿到可计数的页面（见 ErrorCode）。
type DetailInfo struct {
	URL    string `json:"url"`
	Count  *int   `json:"count"`
	IMDbID string `json:"imdb_id"`

	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

func (d DetailInfo) OK() bool { return d.Count != nil && d.ErrorCode == "" }

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	RunID string `json:"run_id"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []DetailInfo  `json:"items"`
}

// ReportSummary 中 Total/Pages/Movies/FromCatalog/FromLookup 由驱动层填写；
// 其余字段由 Finalize 从 Items 计算。
type ReportSummary struct {
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	Movies      int `json:"movies"`
	FromCatalog int `json:"from_catalog"`
	FromLookup  int `json:"from_lookup"`

	Counted int `json:"counted"`
	Failed  int `json:"failed"`
	Images  int `json:"images"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) 由 items 计算 counted/failed/images
//
// items 顺序即输出契约（与目录顺序一致），这里不排序。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Items == nil {
		r.Items = []DetailInfo{}
	}

	s := r.Summary
	s.Counted, s.Failed, s.Images = 0, 0, 0
	for _, it := range r.Items {
		if it.OK() {
			s.Counted++
			s.Images += *it.Count
			continue
		}
		s.Failed++
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
