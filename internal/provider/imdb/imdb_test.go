package imdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/John-Robertt/imgcount/internal/domain"
	providerx "github.com/John-Robertt/imgcount/internal/provider"
)

func TestPageURL(t *testing.T) {
	c := &Client{}
	if got := c.PageURL("tt2015381"); got != "http://www.imdb.com/title/tt2015381" {
		t.Fatalf("PageURL 不符合预期：%s", got)
	}
	c = &Client{BaseURL: "http://127.0.0.1:9/"}
	if got := c.PageURL("tt0000001"); got != "http://127.0.0.1:9/title/tt0000001" {
		t.Fatalf("自定义 base 的 PageURL 不符合预期：%s", got)
	}
}

func TestFetchPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>" + r.URL.Path + "</html>"))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, HTTP: srv.Client()}
	ids := []domain.IMDbID{"tt0000002", "tt0000001"}
	got, err := c.FetchPages(context.Background(), ids)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	for i, id := range ids {
		if got[i].URL != c.PageURL(id) {
			t.Fatalf("第 %d 个结果未对齐：%q", i, got[i].URL)
		}
		if string(got[i].Body) != "<html>/title/"+string(id)+"</html>" {
			t.Fatalf("第 %d 个结果 body 不正确：%q", i, got[i].Body)
		}
	}
}

func TestFetchPages_TransportFailure(t *testing.T) {
	c := &Client{HTTP: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("reset by peer")
	})}}
	_, err := c.FetchPages(context.Background(), []domain.IMDbID{"tt0000001"})

	var pe *providerx.Error
	if !errors.As(err, &pe) || pe.Provider != Name || pe.Stage != providerx.StageFetch {
		t.Fatalf("期望 imdb fetch 错误，实际 %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
