// Package rottentomatoes 实现正在上映列表（in_theaters）的目录客户端。
package rottentomatoes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/John-Robertt/imgcount/internal/domain"
	"github.com/John-Robertt/imgcount/internal/fetch"
	providerx "github.com/John-Robertt/imgcount/internal/provider"
)

const (
	Name = "rottentomatoes"

	DefaultBaseURL = "http://api.rottentomatoes.com/api/public/v1.0"
	DefaultCountry = "us"

	// MaxPageLimit 是服务端允许的单页最大条数。
	MaxPageLimit = 50
)

// Client 是目录 API 客户端。零值字段使用默认值；HTTP 为空时使用 http.DefaultClient。
type Client struct {
	BaseURL string
	APIKey  string
	Country string
	HTTP    *http.Client
}

var _ providerx.Catalog = (*Client)(nil)

func (c *Client) baseURL() string {
	u := strings.TrimSpace(c.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

func (c *Client) country() string {
	if s := strings.TrimSpace(c.Country); s != "" {
		return s
	}
	return DefaultCountry
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// ListURL 生成第 page 页（从 1 开始）、每页 pageLimit 条的列表 URL。纯函数。
//
// 参数顺序固定为 apikey, page_limit, page, country。
func (c *Client) ListURL(page, pageLimit int) string {
	var b strings.Builder
	b.WriteString(c.baseURL())
	b.WriteString("/lists/movies/in_theaters.json?apikey=")
	b.WriteString(url.QueryEscape(c.APIKey))
	b.WriteString("&page_limit=")
	b.WriteString(strconv.Itoa(pageLimit))
	b.WriteString("&page=")
	b.WriteString(strconv.Itoa(page))
	b.WriteString("&country=")
	b.WriteString(url.QueryEscape(c.country()))
	return b.String()
}

// TotalMovies 请求第 1 页、每页 1 条，读取响应中的 total。
//
// 状态码不是 200 时返回 *provider.HTTPStatusError（信息为“状态码 原因”）。
func (c *Client) TotalMovies(ctx context.Context) (int, error) {
	u := c.ListURL(1, 1)
	res, err := fetch.Batch(ctx, c.client(), []string{u})
	if err != nil {
		return 0, &providerx.Error{Provider: Name, Stage: providerx.StageFetch, Err: err}
	}
	r := res[0]
	if r.StatusCode != http.StatusOK {
		return 0, &providerx.Error{
			Provider: Name,
			Stage:    providerx.StageFetch,
			Err:      &providerx.HTTPStatusError{URL: u, StatusCode: r.StatusCode, Status: r.Status},
		}
	}

	var p listPage
	if err := json.Unmarshal(r.Body, &p); err != nil {
		return 0, &providerx.Error{Provider: Name, Stage: providerx.StageParse, Err: errors.Wrap(err, "could not unmarshal total")}
	}
	if p.Total == nil {
		return 0, &providerx.Error{Provider: Name, Stage: providerx.StageParse, Err: errors.New("响应缺少 total 字段")}
	}
	return *p.Total, nil
}

// ReleasedMovies 并发抓取第 1..pageCount 页，按页码顺序拼接所有条目。
//
// 任意一页抓取失败、状态码非 2xx 或 JSON 解析失败，整个调用失败（不返回部分结果）。
// pageCount <= 0 时不发请求，返回空列表。
func (c *Client) ReleasedMovies(ctx context.Context, pageCount, pageLimit int) ([]domain.MovieRecord, error) {
	if pageCount <= 0 {
		return []domain.MovieRecord{}, nil
	}
	urls := make([]string, 0, pageCount)
	for page := 1; page <= pageCount; page++ {
		urls = append(urls, c.ListURL(page, pageLimit))
	}

	res, err := fetch.Batch(ctx, c.client(), urls)
	if err != nil {
		return nil, &providerx.Error{Provider: Name, Stage: providerx.StageFetch, Err: err}
	}

	out := make([]domain.MovieRecord, 0, len(res)*pageLimit)
	for i, r := range res {
		if r.StatusCode < 200 || r.StatusCode >= 300 {
			return nil, &providerx.Error{
				Provider: Name,
				Stage:    providerx.StageFetch,
				Err:      &providerx.HTTPStatusError{URL: r.URL, StatusCode: r.StatusCode, Status: r.Status},
			}
		}
		var p listPage
		if err := json.Unmarshal(r.Body, &p); err != nil {
			return nil, &providerx.Error{Provider: Name, Stage: providerx.StageParse, Err: errors.Wrapf(err, "could not unmarshal page %d", i+1)}
		}
		if p.Movies == nil {
			return nil, &providerx.Error{Provider: Name, Stage: providerx.StageParse, Err: errors.Errorf("第 %d 页缺少 movies 字段", i+1)}
		}
		for _, m := range p.Movies {
			out = append(out, m.toRecord())
		}
	}
	return out, nil
}
