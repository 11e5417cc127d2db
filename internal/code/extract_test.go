package code

import (
	"errors"
	"testing"
)

func TestExtract_BareCatalogDigits(t *testing.T) {
	got, err := Extract("1234567")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if string(got) != "tt1234567" {
		t.Fatalf("期望 tt1234567，实际 %q", got)
	}
}

func TestExtract_NormalizeVariants(t *testing.T) {
	for _, in := range []string{
		"tt1234567",
		"TT1234567",
		" tt1234567 ",
		"http://www.imdb.com/title/tt1234567/",
		"https://www.imdb.com/title/tt1234567/?ref_=nv_sr_1",
	} {
		got, err := Extract(in)
		if err != nil {
			t.Fatalf("Extract(%q) 不期望错误：%v", in, err)
		}
		if string(got) != "tt1234567" {
			t.Fatalf("Extract(%q) 期望 tt1234567，实际 %q", in, got)
		}
	}
}

func TestExtract_SameIDTwiceIsNotAmbiguous(t *testing.T) {
	got, err := Extract("tt1234567 http://www.imdb.com/title/tt1234567/")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if string(got) != "tt1234567" {
		t.Fatalf("期望 tt1234567，实际 %q", got)
	}
}

func TestExtract_Ambiguous(t *testing.T) {
	_, err := Extract("tt7654321 tt1234567")

	var ue *UnmatchedError
	if !errors.As(err, &ue) || ue.Kind != "ambiguous" {
		t.Fatalf("期望 ambiguous，实际 err=%v", err)
	}
	if len(ue.Candidates) != 2 || ue.Candidates[0] != "tt1234567" {
		t.Fatalf("候选应排序且有 2 个，实际 %v", ue.Candidates)
	}
}

func TestExtract_NoMatch(t *testing.T) {
	for _, in := range []string{"", "N/A", "tt12", "abc1234567"} {
		_, err := Extract(in)

		var ue *UnmatchedError
		if !errors.As(err, &ue) || ue.Kind != "no_match" {
			t.Fatalf("Extract(%q) 期望 no_match，实际 err=%v", in, err)
		}
	}
}
