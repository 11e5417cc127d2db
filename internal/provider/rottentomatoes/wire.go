package rottentomatoes

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/John-Robertt/imgcount/internal/domain"
)

type listPage struct {
	Total  *int        `json:"total"`
	Movies []movieWire `json:"movies"`
}

// movieWire 是目录条目的线上格式。已知字段逐项映射，其余 key 原样保留到 extra。
type movieWire struct {
	ID               flexString                 `json:"id"`
	Title            string                     `json:"title"`
	Year             flexInt                    `json:"year"`
	MPAARating       string                     `json:"mpaa_rating"`
	Runtime          flexInt                    `json:"runtime"`
	CriticsConsensus string                     `json:"critics_consensus"`
	Synopsis         string                     `json:"synopsis"`
	ReleaseDates     map[string]string          `json:"release_dates"`
	Ratings          map[string]json.RawMessage `json:"ratings"`
	Posters          map[string]string          `json:"posters"`
	AbridgedCast     []domain.CastMember        `json:"abridged_cast"`
	AlternateIDs     map[string]flexString      `json:"alternate_ids"`
	Links            map[string]string          `json:"links"`

	extra map[string]json.RawMessage
}

var knownKeys = map[string]struct{}{
	"id": {}, "title": {}, "year": {}, "mpaa_rating": {}, "runtime": {},
	"critics_consensus": {}, "synopsis": {}, "release_dates": {}, "ratings": {},
	"posters": {}, "abridged_cast": {}, "alternate_ids": {}, "links": {},
}

func (m *movieWire) UnmarshalJSON(b []byte) error {
	type plain movieWire
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k, v := range all {
		if _, ok := knownKeys[k]; ok {
			continue
		}
		if p.extra == nil {
			p.extra = map[string]json.RawMessage{}
		}
		p.extra[k] = v
	}
	*m = movieWire(p)
	return nil
}

func (m movieWire) toRecord() domain.MovieRecord {
	r := domain.MovieRecord{
		ID:               string(m.ID),
		Title:            m.Title,
		Year:             int(m.Year),
		MPAARating:       m.MPAARating,
		RuntimeM:         int(m.Runtime),
		CriticsConsensus: m.CriticsConsensus,
		Synopsis:         m.Synopsis,
		ReleaseDates:     m.ReleaseDates,
		Ratings:          m.Ratings,
		Posters:          m.Posters,
		AbridgedCast:     m.AbridgedCast,
		Links:            m.Links,
		Extra:            m.extra,
	}
	if len(m.AlternateIDs) > 0 {
		r.AlternateIDs = make(map[string]string, len(m.AlternateIDs))
		for k, v := range m.AlternateIDs {
			r.AlternateIDs[k] = string(v)
		}
	}
	return r
}

// flexInt 接受数字、数字字符串与空字符串（服务端对未知年份/片长返回 ""）。
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*n = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

// flexString 接受字符串或数字（编号字段两种形式都出现过）。
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}
