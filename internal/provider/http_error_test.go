package provider

import (
	"errors"
	"io"
	"testing"
)

func TestHTTPStatusError_UsesStatusLine(t *testing.T) {
	e := &HTTPStatusError{URL: "http://x", StatusCode: 503, Status: "503 Service Unavailable"}
	if e.Error() != "503 Service Unavailable" {
		t.Fatalf("期望状态行，实际 %q", e.Error())
	}

	e = &HTTPStatusError{StatusCode: 418}
	if e.Error() != "418" {
		t.Fatalf("无状态行时应退化为状态码，实际 %q", e.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	err := error(&Error{Provider: "omdb", Stage: StageParse, Err: io.ErrUnexpectedEOF})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("Error 应可 Unwrap 到原始错误")
	}
	if err.Error() != "provider=omdb stage=parse: unexpected EOF" {
		t.Fatalf("错误信息不符合预期：%q", err.Error())
	}
}
