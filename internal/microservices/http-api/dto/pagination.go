package dto

import (
	"net/url"
	"strconv"
)

// Page is a limit/offset result page. Next and Previous are absolute links,
// null at either end.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope for results fetched with limit and offset from
// the request at base.
func NewPage[T any](base *url.URL, results []T, count int64, limit, offset int) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: count, Results: results}

	if int64(offset+limit) < count {
		page.Next = pageLink(base, limit, offset+limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		page.Previous = pageLink(base, limit, prev)
	}
	return page
}

func pageLink(base *url.URL, limit, offset int) *string {
	u := *base
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
