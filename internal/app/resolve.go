package app

import (
	"context"
	"fmt"

	"github.com/John-Robertt/imgcount/internal/code"
	"github.com/John-Robertt/imgcount/internal/domain"
	"github.com/John-Robertt/imgcount/internal/provider"
)

// ResolveAll 为每条目录记录解析 IMDb 编号。
//
// - 目录已给出 alternate_ids.imdb：补上 tt 前缀直接使用，不发请求
// - 否则按 (标题, 年份) 排队，整队一次性批量查询
// - 结果写回原下标：len(out) == len(records)，顺序与 records 一致
//
// 批量查询整体失败时，所有排队条目标记为 lookup_failed，并返回该错误（由上层记录日志）。
// 目录给出的编号不合法时，该条目改走查询。
func ResolveAll(ctx context.Context, records []domain.MovieRecord, lookup provider.Lookup) ([]domain.Resolution, error) {
	out := make([]domain.Resolution, len(records))
	queue := make([]domain.TitleYear, 0, len(records))
	slots := make([]int, 0, len(records))

	for i, rec := range records {
		out[i] = domain.Resolution{Index: i, Title: rec.Title, Year: rec.Year}

		if raw, ok := rec.CatalogIMDb(); ok {
			if id, err := code.Extract(raw); err == nil {
				out[i].ID = id
				out[i].Source = domain.SourceCatalog
				continue
			}
		}
		queue = append(queue, rec.TitleYear())
		slots = append(slots, i)
	}

	if len(queue) == 0 {
		return out, nil
	}
	if lookup == nil {
		err := fmt.Errorf("未配置 IMDb 编号查询服务，%d 条记录无法解析", len(queue))
		markLookupFailed(out, slots, err)
		return out, err
	}

	res, err := lookup.LookupIDs(ctx, queue)
	if err == nil && len(res) != len(queue) {
		err = fmt.Errorf("查询结果数量不一致：期望 %d，实际 %d", len(queue), len(res))
	}
	if err != nil {
		markLookupFailed(out, slots, err)
		return out, err
	}

	for k, i := range slots {
		r := res[k]
		if r.Err != nil {
			out[i].ErrorCode = domain.ErrCodeLookupFailed
			out[i].ErrorMsg = r.Err.Error()
			continue
		}
		out[i].ID = r.ID
		out[i].Source = domain.SourceLookup
	}
	return out, nil
}

func markLookupFailed(out []domain.Resolution, slots []int, err error) {
	for _, i := range slots {
		out[i].ErrorCode = domain.ErrCodeLookupFailed
		out[i].ErrorMsg = err.Error()
	}
}
