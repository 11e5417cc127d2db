package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/John-Robertt/imgcount/internal/domain"
	providerx "github.com/John-Robertt/imgcount/internal/provider"
)

func TestLookupURL(t *testing.T) {
	c := &Client{}
	if got := c.LookupURL("Guardians of the Galaxy", 2014); got != "http://www.omdbapi.com/?i=Guardians+of+the+Galaxy&t=2014" {
		t.Fatalf("LookupURL 不符合预期：%s", got)
	}

	c = &Client{BaseURL: "http://127.0.0.1:1/", APIKey: "abc"}
	if got := c.LookupURL("A&B", 0); got != "http://127.0.0.1:1/?i=A%26B&t=0&apikey=abc" {
		t.Fatalf("带 apikey 的 LookupURL 不符合预期：%s", got)
	}
}

func TestLookupIDs_PerItemResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("i") {
		case "Good":
			_, _ = w.Write([]byte(`{"Title":"Good","Year":"2014","imdbID":"tt2015381","Response":"True"}`))
		case "Missing":
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
		case "Garbage":
			_, _ = w.Write([]byte(`<html>`))
		case "NoID":
			_, _ = w.Write([]byte(`{"Title":"NoID","Response":"True"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, HTTP: srv.Client()}
	qs := []domain.TitleYear{
		{Title: "Good", Year: 2014},
		{Title: "Missing", Year: 2014},
		{Title: "Garbage", Year: 2014},
		{Title: "NoID", Year: 2014},
		{Title: "Boom", Year: 2014},
	}
	got, err := c.LookupIDs(context.Background(), qs)
	if err != nil {
		t.Fatalf("单条失败不应导致整批失败：%v", err)
	}
	if len(got) != len(qs) {
		t.Fatalf("期望 %d 条结果，实际 %d", len(qs), len(got))
	}
	if got[0].Err != nil || got[0].ID != "tt2015381" || got[0].Query.Title != "Good" {
		t.Fatalf("第 0 条应成功：%+v", got[0])
	}
	if got[1].Err == nil || !strings.Contains(got[1].Err.Error(), "Movie not found!") {
		t.Fatalf("Response=False 应带出服务端错误信息：%v", got[1].Err)
	}
	for _, i := range []int{2, 3} {
		var pe *providerx.Error
		if !errors.As(got[i].Err, &pe) || pe.Stage != providerx.StageParse {
			t.Fatalf("第 %d 条期望 parse 错误，实际 %v", i, got[i].Err)
		}
	}
	var se *providerx.HTTPStatusError
	if !errors.As(got[4].Err, &se) || se.StatusCode != 500 {
		t.Fatalf("第 4 条期望 HTTP 500，实际 %v", got[4].Err)
	}
}

func TestLookupIDs_Empty(t *testing.T) {
	c := &Client{HTTP: &http.Client{Transport: failingTransport{}}}
	got, err := c.LookupIDs(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("空输入应直接返回空结果：got=%v err=%v", got, err)
	}
}

func TestLookupIDs_TransportFailureFailsBatch(t *testing.T) {
	c := &Client{HTTP: &http.Client{Transport: failingTransport{}}}
	got, err := c.LookupIDs(context.Background(), []domain.TitleYear{{Title: "a", Year: 1}})
	if err == nil || got != nil {
		t.Fatalf("传输失败应整批失败：got=%v err=%v", got, err)
	}
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}
