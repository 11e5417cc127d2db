package run

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/imgcount/internal/app"
	"github.com/John-Robertt/imgcount/internal/app/planner"
	"github.com/John-Robertt/imgcount/internal/config"
	"github.com/John-Robertt/imgcount/internal/domain"
	"github.com/John-Robertt/imgcount/internal/infra/httpx"
	"github.com/John-Robertt/imgcount/internal/logx"
	"github.com/John-Robertt/imgcount/internal/provider"
	"github.com/John-Robertt/imgcount/internal/provider/imdb"
	"github.com/John-Robertt/imgcount/internal/provider/omdb"
	"github.com/John-Robertt/imgcount/internal/provider/rottentomatoes"
	"github.com/John-Robertt/imgcount/internal/tagcount"
)

// Deps 是一次运行依赖的外部服务。测试可以逐项替换。
type Deps struct {
	Catalog provider.Catalog
	Lookup  provider.Lookup
	Pages   app.DetailPages
	Count   tagcount.Counter

	Log   logrus.FieldLogger
	RunID string
}

// NewDeps 按配置构造真实的 HTTP 客户端与各服务客户端。
func NewDeps(cfg config.Config, log logrus.FieldLogger, runID string) (Deps, error) {
	hc, err := httpx.NewClient(httpx.Options{ProxyURL: cfg.ProxyURL, UserAgent: cfg.UserAgent})
	if err != nil {
		return Deps{}, &config.Error{Code: config.ErrCodeInvalid, Path: cfg.File, Err: fmt.Errorf("proxy_url 无效：%w", err)}
	}
	return Deps{
		Catalog: &rottentomatoes.Client{
			BaseURL: cfg.CatalogBaseURL,
			APIKey:  cfg.CatalogAPIKey,
			Country: cfg.Country,
			HTTP:    hc,
		},
		Lookup: &omdb.Client{
			BaseURL: cfg.LookupBaseURL,
			APIKey:  cfg.LookupAPIKey,
			HTTP:    hc,
		},
		Pages: &imdb.Client{
			BaseURL: cfg.DetailBaseURL,
			HTTP:    hc,
		},
		Count: tagcount.ForSelector(cfg.Selector),
		Log:   log,
		RunID: runID,
	}, nil
}

// FatalError 表示整次运行无法继续（例如拿不到目录总数）。
type FatalError struct {
	Code string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s：%v", e.Code, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Execute 依次执行：目录总数 -> 页数规划 -> 抓取目录 -> 解析编号 -> 抓取详情并计数。
//
// 只有第一步失败是致命的：返回 *FatalError，报告中 items 为空。
// 之后任何一步批量失败都只记录日志，并把该步结果降级（对应条目带 error_code），不中断运行。
// obs 可为 nil。
func Execute(ctx context.Context, cfg config.Config, deps Deps, obs Observer) (domain.RunReport, error) {
	log := deps.Log
	if log == nil {
		log = logx.Discard()
	}
	log = log.WithField("run_id", deps.RunID)

	rr := domain.RunReport{
		RunID:     deps.RunID,
		StartedAt: time.Now().UTC(),
	}
	if obs != nil {
		obs.OnStart(cfg)
	}
	finish := func() domain.RunReport {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	// 1) 目录总数（致命）
	t0 := time.Now()
	total, err := deps.Catalog.TotalMovies(ctx)
	if err != nil {
		log.WithFields(logrus.Fields{
			"stage":      PhaseTotal,
			"error_code": domain.ErrCodeTotalCountFailed,
		}).WithError(err).Error("获取目录总数失败")
		return finish(), &FatalError{Code: domain.ErrCodeTotalCountFailed, Err: err}
	}
	pages := planner.PageCount(total, cfg.PageLimit)
	rr.Summary.Total = total
	rr.Summary.Pages = pages
	log.WithFields(logrus.Fields{"total": total, "pages": pages, "page_limit": cfg.PageLimit}).Info("目录总数")
	phaseDone(obs, PhaseTotal, map[string]any{"total": total, "pages": pages}, time.Since(t0))

	// 2) 目录条目（失败降级为空）
	t0 = time.Now()
	records, err := deps.Catalog.ReleasedMovies(ctx, pages, cfg.PageLimit)
	if err != nil {
		log.WithFields(logrus.Fields{
			"stage":      PhaseCatalog,
			"error_code": domain.ErrCodeCatalogFetchFailed,
			"pages":      pages,
		}).WithError(err).Warn("抓取目录失败，按空列表继续")
		records = nil
	}
	rr.Summary.Movies = len(records)
	phaseDone(obs, PhaseCatalog, map[string]any{"movies": len(records)}, time.Since(t0))

	// 3) IMDb 编号
	t0 = time.Now()
	resolutions, err := app.ResolveAll(ctx, records, deps.Lookup)
	if err != nil {
		log.WithFields(logrus.Fields{
			"stage":      PhaseResolve,
			"error_code": domain.ErrCodeLookupFailed,
		}).WithError(err).Warn("批量查询 IMDb 编号失败")
	}
	var unresolved int
	for _, r := range resolutions {
		switch {
		case !r.OK():
			unresolved++
			log.WithFields(logrus.Fields{
				"stage": PhaseResolve,
				"index": r.Index,
				"title": r.Title,
				"year":  r.Year,
			}).Debug("未解析到 IMDb 编号：" + r.ErrorMsg)
		case r.Source == domain.SourceCatalog:
			rr.Summary.FromCatalog++
		case r.Source == domain.SourceLookup:
			rr.Summary.FromLookup++
		}
	}
	phaseDone(obs, PhaseResolve, map[string]any{
		"from_catalog": rr.Summary.FromCatalog,
		"from_lookup":  rr.Summary.FromLookup,
		"unresolved":   unresolved,
	}, time.Since(t0))

	// 4) 详情页计数
	t0 = time.Now()
	done := 0
	onItem := func(idx int, d domain.DetailInfo) {
		done++
		if !d.OK() && d.ErrorCode != domain.ErrCodeResolveFailed {
			log.WithFields(logrus.Fields{
				"stage":      PhaseDetails,
				"index":      idx,
				"url":        d.URL,
				"error_code": d.ErrorCode,
			}).Debug(d.ErrorMsg)
		}
		if obs != nil {
			obs.OnItemDone(done, len(resolutions), d)
		}
	}
	details, err := app.FetchDetails(ctx, deps.Pages, resolutions, deps.Count, onItem)
	if err != nil {
		log.WithFields(logrus.Fields{
			"stage":      PhaseDetails,
			"error_code": domain.ErrCodeFetchFailed,
		}).WithError(err).Warn("抓取详情页失败")
	}
	rr.Items = details

	rr = finish()
	phaseDone(obs, PhaseDetails, map[string]any{
		"counted": rr.Summary.Counted,
		"failed":  rr.Summary.Failed,
		"images":  rr.Summary.Images,
	}, time.Since(t0))
	return rr, nil
}

func phaseDone(obs Observer, name string, fields map[string]any, dur time.Duration) {
	if obs != nil {
		obs.OnPhaseDone(name, fields, dur)
	}
}
