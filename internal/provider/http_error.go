package provider

import (
	"fmt"
	"strings"
)

// HTTPStatusError 表示服务返回了非预期的 HTTP 状态码。
//
// Status 为响应状态行（例如 "503 Service Unavailable"），Error() 直接使用它，
// 便于日志里看到“状态码 + 原因”。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	if s := strings.TrimSpace(e.Status); s != "" {
		return s
	}
	return fmt.Sprintf("%d", e.StatusCode)
}

// Error 是 provider 阶段的可追溯错误。
// 上层可以据此把失败归类为 fetch_failed / parse_failed / lookup_failed。
type Error struct {
	Provider string // "rottentomatoes" / "omdb" / "imdb"
	Stage    string // "fetch" 或 "parse"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s stage=%s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const (
	StageFetch = "fetch"
	StageParse = "parse"
)
