// Package fetch 并发抓取一组 URL，结果按输入下标对齐。
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// Response 是单个 URL 的完整响应。非 2xx 在这一层不算错误，由调用方判断。
type Response struct {
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

// BatchError 表示批次中第一个传输层失败；整个批次因此作废。
type BatchError struct {
	Index int
	URL   string
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("抓取失败 index=%d url=%s: %v", e.Index, e.URL, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Batch 为每个 URL 启动一个 goroutine 发起 GET，全部完成后返回。
//
// 约束：
// - 返回切片与 urls 等长，第 i 个元素对应 urls[i]
// - 任意一个请求出现传输错误：取消其余请求，返回 nil 结果与 *BatchError（不返回部分结果）
// - 不做超时、重试或并发上限；空输入不发请求
func Batch(ctx context.Context, c *http.Client, urls []string) ([]Response, error) {
	if len(urls) == 0 {
		return []Response{}, nil
	}
	if c == nil {
		c = http.DefaultClient
	}

	out := make([]Response, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			resp, err := get(gctx, c, u)
			if err != nil {
				return &BatchError{Index: i, URL: u, Err: err}
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func get(ctx context.Context, c *http.Client, u string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Response{}, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}
	return Response{
		URL:        u,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       b,
	}, nil
}
