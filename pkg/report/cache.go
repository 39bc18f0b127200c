package report

import (
	"context"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedQuerier remembers raw reports by type, period and params. Cached
// reports are shared between callers and must be treated as read-only.
type CachedQuerier struct {
	next  Querier
	cache *lru.Cache[string, map[string]interface{}]
}

// NewCachedQuerier wraps next with an LRU of the given size
func NewCachedQuerier(next Querier, size int) (*CachedQuerier, error) {
	cache, err := lru.New[string, map[string]interface{}](size)
	if err != nil {
		return nil, err
	}
	return &CachedQuerier{next: next, cache: cache}, nil
}

func (c *CachedQuerier) QueryReport(ctx context.Context, reportType string, period Period, params map[string]string) (map[string]interface{}, error) {
	key := cacheKey(reportType, period, params)
	if raw, ok := c.cache.Get(key); ok {
		return raw, nil
	}

	raw, err := c.next.QueryReport(ctx, reportType, period, params)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, raw)
	return raw, nil
}

// Len is the number of cached reports
func (c *CachedQuerier) Len() int {
	return c.cache.Len()
}

func cacheKey(reportType string, period Period, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(reportType)
	b.WriteByte('|')
	b.WriteString(period.String())
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
