// Package omdb 通过 OMDb 把 (标题, 年份) 解析为 IMDb 编号。
package omdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/John-Robertt/imgcount/internal/code"
	"github.com/John-Robertt/imgcount/internal/domain"
	"github.com/John-Robertt/imgcount/internal/fetch"
	providerx "github.com/John-Robertt/imgcount/internal/provider"
)

const (
	Name = "omdb"

	DefaultBaseURL = "http://www.omdbapi.com"
)

// Client 是 OMDb 查询客户端。APIKey 为空时不附带 apikey 参数。
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

var _ providerx.Lookup = (*Client)(nil)

type movie struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	ImdbID   string `json:"imdbID"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (c *Client) baseURL() string {
	u := strings.TrimSpace(c.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// LookupURL 生成单条查询 URL。纯函数。
//
// 线上约定沿用既有部署：标题放在 i 参数、年份放在 t 参数。
func (c *Client) LookupURL(title string, year int) string {
	u := c.baseURL() + "/?i=" + url.QueryEscape(title) + "&t=" + strconv.Itoa(year)
	if k := strings.TrimSpace(c.APIKey); k != "" {
		u += "&apikey=" + url.QueryEscape(k)
	}
	return u
}

// LookupIDs 并发查询所有条目，结果与 queries 按下标对齐。
//
// 整批传输失败时返回 error（结果为 nil）；单条的状态码/解析/业务失败只写入该条的 Err。
func (c *Client) LookupIDs(ctx context.Context, queries []domain.TitleYear) ([]providerx.LookupResult, error) {
	if len(queries) == 0 {
		return []providerx.LookupResult{}, nil
	}
	urls := make([]string, len(queries))
	for i, q := range queries {
		urls[i] = c.LookupURL(q.Title, q.Year)
	}

	res, err := fetch.Batch(ctx, c.client(), urls)
	if err != nil {
		return nil, &providerx.Error{Provider: Name, Stage: providerx.StageFetch, Err: err}
	}

	out := make([]providerx.LookupResult, len(queries))
	for i, r := range res {
		out[i].Query = queries[i]
		id, err := parse(r)
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i].ID = id
	}
	return out, nil
}

func parse(r fetch.Response) (domain.IMDbID, error) {
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		return "", &providerx.Error{
			Provider: Name,
			Stage:    providerx.StageFetch,
			Err:      &providerx.HTTPStatusError{URL: r.URL, StatusCode: r.StatusCode, Status: r.Status},
		}
	}

	var m movie
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return "", &providerx.Error{Provider: Name, Stage: providerx.StageParse, Err: errors.Wrap(err, "could not unmarshal")}
	}
	if strings.EqualFold(strings.TrimSpace(m.Response), "False") {
		msg := strings.TrimSpace(m.Error)
		if msg == "" {
			msg = "Response=False"
		}
		return "", &providerx.Error{Provider: Name, Stage: providerx.StageParse, Err: errors.New(msg)}
	}
	if strings.TrimSpace(m.ImdbID) == "" {
		return "", &providerx.Error{Provider: Name, Stage: providerx.StageParse, Err: errors.New("响应缺少 imdbID")}
	}

	id, err := code.Extract(m.ImdbID)
	if err != nil {
		return "", &providerx.Error{Provider: Name, Stage: providerx.StageParse, Err: errors.Wrapf(err, "imdbID=%q", m.ImdbID)}
	}
	return id, nil
}
