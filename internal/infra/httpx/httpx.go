package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// DefaultUserAgents 是未配置 user_agent 时轮换使用的浏览器 UA。
var DefaultUserAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
}

// Transport 把“UA + 代理 + keep-alive 策略”固化为统一策略。
//
// 目录、查询、详情三类请求共用同一个 client；provider 只负责拼 URL 与解析响应。
// 不做重试、不设超时：失败即时暴露给上层，由批次语义决定后果。
type Transport struct {
	Base *http.Transport

	// UserAgents 按请求顺序轮换；为空则不设置 UA。调用方显式设置的 UA 优先。
	UserAgents []string
	next       atomic.Uint64

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		if ua := t.userAgent(); ua != "" {
			r.Header.Set("User-Agent", ua)
		}
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

func (t *Transport) userAgent() string {
	if len(t.UserAgents) == 0 {
		return ""
	}
	i := t.next.Add(1) - 1
	return t.UserAgents[i%uint64(len(t.UserAgents))]
}

// Options 描述 client 的网络策略。
type Options struct {
	// ProxyURL 非空：所有请求走代理，且禁用 keep-alive（每请求新连接）。
	ProxyURL string
	// UserAgent 非空：固定使用该 UA；否则轮换 DefaultUserAgents。
	UserAgent string
}

// NewClient 构造整条流水线使用的 HTTP client。无总超时。
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy: nil,
		// 一次批次可能同时打开几十个连接，默认每主机 2 个空闲连接不够复用。
		MaxIdleConnsPerHost: 64,
	}

	disableKeepAlives := false
	if proxyURL := strings.TrimSpace(opts.ProxyURL); proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy_url 必须是绝对 URL（含 scheme 与 host）")
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	uas := DefaultUserAgents
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		uas = []string{ua}
	}

	return &http.Client{
		Transport: &Transport{
			Base:              base,
			UserAgents:        uas,
			DisableKeepAlives: disableKeepAlives,
		},
	}, nil
}
