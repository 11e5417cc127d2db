package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewClient(Options{ProxyURL: "http://127.0.0.1:8080"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
	if !tr.Base.DisableKeepAlives {
		t.Fatalf("期望禁用 keep-alive，但 Base.DisableKeepAlives=false")
	}
	if !tr.DisableKeepAlives {
		t.Fatalf("期望设置 Request.Close=true，但 DisableKeepAlives=false")
	}
}

func TestNewClient_NoProxyNoTimeout(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.Proxy != nil {
		t.Fatalf("不期望启用代理，但 Proxy!=nil")
	}
	if tr.Base.DisableKeepAlives {
		t.Fatalf("不期望禁用 keep-alive，但 Base.DisableKeepAlives=true")
	}
	if c.Timeout != 0 {
		t.Fatalf("不应设置总超时，实际 %v", c.Timeout)
	}
}

func TestNewClient_InvalidProxyURL(t *testing.T) {
	for _, in := range []string{"http://[::1", "127.0.0.1:8080"} {
		if _, err := NewClient(Options{ProxyURL: in}); err == nil {
			t.Fatalf("NewClient(%q) 期望错误，但得到 nil", in)
		}
	}
}

func TestTransport_RotatesDefaultUserAgents(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.UserAgent())
	}))
	defer srv.Close()

	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	for i := 0; i < len(DefaultUserAgents)+1; i++ {
		resp, err := c.Get(srv.URL)
		if err != nil {
			t.Fatalf("请求失败：%v", err)
		}
		resp.Body.Close()
	}

	for i, ua := range got {
		if want := DefaultUserAgents[i%len(DefaultUserAgents)]; ua != want {
			t.Fatalf("第 %d 个请求 UA 期望 %q，实际 %q", i, want, ua)
		}
	}
}

func TestTransport_ConfiguredUserAgentUnlessPresent(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.UserAgent())
	}))
	defer srv.Close()

	c, err := NewClient(Options{UserAgent: " imgcount/1.0 "})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("请求失败：%v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "imgcount-test")
	resp, err = c.Do(req)
	if err != nil {
		t.Fatalf("请求失败：%v", err)
	}
	resp.Body.Close()

	if len(got) != 2 {
		t.Fatalf("期望 2 次请求，实际 %d", len(got))
	}
	if got[0] != "imgcount/1.0" {
		t.Fatalf("应使用配置的 UA，实际 %q", got[0])
	}
	if got[1] != "imgcount-test" {
		t.Fatalf("显式 UA 不应被覆盖，实际 %q", got[1])
	}
	if req.Header.Get("User-Agent") != "imgcount-test" {
		t.Fatalf("RoundTrip 不应修改调用方的 request")
	}
}
