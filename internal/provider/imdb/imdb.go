// Package imdb 负责定位并抓取 IMDb 影片详情页。
package imdb

import (
	"context"
	"net/http"
	"strings"

	"github.com/John-Robertt/imgcount/internal/domain"
	"github.com/John-Robertt/imgcount/internal/fetch"
	providerx "github.com/John-Robertt/imgcount/internal/provider"
)

const (
	Name = "imdb"

	DefaultBaseURL = "http://www.imdb.com"
)

// Client 只负责“拼详情页 URL + 批量抓取”，页面内容的统计由调用方完成。
type Client struct {
	// BaseURL 允许指定镜像或测试服务器；为空时使用 http://www.imdb.com。
	BaseURL string
	HTTP    *http.Client
}

func (c *Client) baseURL() string {
	u := strings.TrimSpace(c.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

// PageURL 返回详情页 URL：<base>/title/<id>。纯函数。
func (c *Client) PageURL(id domain.IMDbID) string {
	return c.baseURL() + "/title/" + string(id)
}

// FetchPages 并发抓取 ids 对应的详情页，结果与 ids 按下标对齐。
// 任意一页传输失败则整批失败；非 2xx 原样返回，由调用方判定。
func (c *Client) FetchPages(ctx context.Context, ids []domain.IMDbID) ([]fetch.Response, error) {
	urls := make([]string, len(ids))
	for i, id := range ids {
		urls[i] = c.PageURL(id)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := fetch.Batch(ctx, hc, urls)
	if err != nil {
		return nil, &providerx.Error{Provider: Name, Stage: providerx.StageFetch, Err: err}
	}
	return res, nil
}
