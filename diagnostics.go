package graphql

import (
	"maps"
	"net/http"
	"strings"
	"time"
)

// LastRequestInfo is the diagnostic snapshot of one Execute call.
type LastRequestInfo struct {
	URL             string
	Method          string
	RequestHeaders  map[string]string
	RequestBody     string
	ResponseHeaders map[string]string
	ResponseBody    string
	StatusCode      int
	Duration        time.Duration
}

// LastRequest returns a copy of the diagnostic record of the most recent call,
// or nil if the client has not executed anything yet.
func (c *Client) LastRequest() *LastRequestInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	cp := *c.last
	cp.RequestHeaders = maps.Clone(c.last.RequestHeaders)
	cp.ResponseHeaders = maps.Clone(c.last.ResponseHeaders)
	return &cp
}

func (c *Client) record(info *LastRequestInfo) {
	c.mu.Lock()
	c.last = info
	c.mu.Unlock()
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
