package app

import (
	"context"
	"fmt"

	"github.com/John-Robertt/imgcount/internal/domain"
	"github.com/John-Robertt/imgcount/internal/fetch"
	"github.com/John-Robertt/imgcount/internal/tagcount"
)

// DetailPages 定位并批量抓取详情页。
type DetailPages interface {
	PageURL(id domain.IMDbID) string
	FetchPages(ctx context.Context, ids []domain.IMDbID) ([]fetch.Response, error)
}

// ItemFunc 在每个条目结果确定后被调用（可为 nil）。
type ItemFunc func(idx int, d domain.DetailInfo)

// FetchDetails 为每个解析结果生成一条 DetailInfo，下标与 resolutions 一一对应。
//
// - 未解析的条目直接标记 resolve_failed，不发请求
// - 批量抓取整体失败：所有需要抓取的条目标记 fetch_failed（count 为 null），并返回该错误
// - 非 2xx 标记 fetch_failed；计数失败（如页面不是合法 UTF-8）标记 parse_failed；都只影响该条目
func FetchDetails(ctx context.Context, pages DetailPages, resolutions []domain.Resolution, count tagcount.Counter, onItem ItemFunc) ([]domain.DetailInfo, error) {
	if count == nil {
		count = tagcount.CountImages
	}
	out := make([]domain.DetailInfo, len(resolutions))
	ids := make([]domain.IMDbID, 0, len(resolutions))
	slots := make([]int, 0, len(resolutions))

	for i, r := range resolutions {
		if !r.OK() {
			msg := r.ErrorMsg
			if msg == "" {
				msg = "未解析到 IMDb 编号"
			}
			out[i] = domain.DetailInfo{ErrorCode: domain.ErrCodeResolveFailed, ErrorMsg: msg}
			notify(onItem, i, out[i])
			continue
		}
		out[i] = domain.DetailInfo{URL: pages.PageURL(r.ID), IMDbID: r.ID.Body()}
		ids = append(ids, r.ID)
		slots = append(slots, i)
	}
	if len(ids) == 0 {
		return out, nil
	}

	res, err := pages.FetchPages(ctx, ids)
	if err == nil && len(res) != len(ids) {
		err = fmt.Errorf("详情页结果数量不一致：期望 %d，实际 %d", len(ids), len(res))
	}
	if err != nil {
		for _, i := range slots {
			out[i].ErrorCode = domain.ErrCodeFetchFailed
			out[i].ErrorMsg = err.Error()
			notify(onItem, i, out[i])
		}
		return out, err
	}

	for k, i := range slots {
		r := res[k]
		switch {
		case r.StatusCode < 200 || r.StatusCode >= 300:
			out[i].ErrorCode = domain.ErrCodeFetchFailed
			out[i].ErrorMsg = "HTTP " + r.Status
		default:
			n, cerr := count(r.Body)
			if cerr != nil {
				out[i].ErrorCode = domain.ErrCodeParseFailed
				out[i].ErrorMsg = cerr.Error()
				break
			}
			out[i].Count = &n
		}
		notify(onItem, i, out[i])
	}
	return out, nil
}

func notify(f ItemFunc, i int, d domain.DetailInfo) {
	if f != nil {
		f(i, d)
	}
}
