package provider

import (
	"context"

	"github.com/John-Robertt/imgcount/internal/domain"
)

// Catalog 是目录服务（正在上映列表）的最小接口。核心流程只依赖它与 Lookup。
//
// 约束：
// - 不做缓存、不做重试、不做限速
// - ReleasedMovies 按页码顺序拼接结果；任意一页失败则整体失败
type Catalog interface {
	TotalMovies(ctx context.Context) (int, error)
	ReleasedMovies(ctx context.Context, pageCount, pageLimit int) ([]domain.MovieRecord, error)
}

// Lookup 把 (标题, 年份) 批量解析为 IMDb 编号。
//
// 返回值与 queries 等长且按下标对齐；单条失败只写入该条的 Err。
// 只有整批传输失败才返回 error。
type Lookup interface {
	LookupIDs(ctx context.Context, queries []domain.TitleYear) ([]LookupResult, error)
}

// LookupResult 是单条查询的结果。
type LookupResult struct {
	Query domain.TitleYear
	ID    domain.IMDbID
	Err   error
}
