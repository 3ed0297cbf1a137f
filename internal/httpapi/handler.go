// Package httpapi implements the HTTP adapter (C7): a single
// GET /vlcb route with send/read/end/format query parameters, per
// spec.md §4.7. Per spec.md §1's scope note, the HTTP server itself
// (net/http.Server, routing, threading) is treated as an external
// primitive — there is exactly one route, so no router/mux dependency
// is pulled in beyond the standard library's ServeMux.
package httpapi

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/penguintutor/vlcbbridge/internal/outbound"
	"github.com/penguintutor/vlcbbridge/internal/ringlog"
	"github.com/penguintutor/vlcbbridge/internal/vlcb"
)

// Handler serves GET /vlcb.
type Handler struct {
	ring     *ringlog.Log
	out      *outbound.Channel
	maxBatch int
	logger   *zap.SugaredLogger
}

// New builds a Handler reading from ring and enqueueing onto out.
// maxBatch bounds how many frames a single read can return (spec.md
// §4.3's max_batch).
func New(ring *ringlog.Log, out *outbound.Channel, maxBatch int, logger *zap.SugaredLogger) *Handler {
	return &Handler{ring: ring, out: out, maxBatch: maxBatch, logger: logger}
}

// Mux returns an http.Handler routing only the /vlcb path, per spec.md
// §6. The request method is not checked.
func (h *Handler) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/vlcb", h.serveVLCB)
	return mux
}

func (h *Handler) serveVLCB(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)

	params := parseRawQuery(r.URL.RawQuery)
	format := "html"
	if v, ok := params["format"]; ok {
		format = strings.ToLower(string(vlcb.DecodeQueryValue(v)))
	}

	var body string
	switch {
	case hasParam(params, "send"):
		body = h.handleSend(params["send"])
	case hasParam(params, "read"):
		body = h.handleRead(params)
	default:
		body = "command not recognised\n"
	}

	fmt.Fprint(w, envelope(format, body))
}

func hasParam(params map[string]string, key string) bool {
	_, ok := params[key]
	return ok
}

func (h *Handler) handleSend(raw string) string {
	decoded := vlcb.DecodeQueryValue(raw)
	if !vlcb.Validate(decoded) {
		return "Error, invalid message format\n"
	}
	switch h.out.TrySend(decoded) {
	case outbound.Sent:
		return "Success, message sent\n"
	case outbound.Full:
		return "Error, send message failed\n"
	default: // outbound.Closed
		return "Error, send message failed\n"
	}
}

func (h *Handler) handleRead(params map[string]string) string {
	from, ok := parseSeqParam(params["read"])
	if !ok {
		return "Error, invalid message format\n"
	}

	to := int64(math.MaxInt64)
	if raw, present := params["end"]; present {
		if v, ok := parseSeqParam(raw); ok {
			to = v
		}
	}

	res := h.ring.Query(from, to, h.maxBatch)

	var b strings.Builder
	fmt.Fprintf(&b, "Read,%d,%d,%d\n", res.EchoedFrom, res.EchoedTo, res.Produced)
	for _, f := range res.Frames {
		fmt.Fprintf(&b, "%d,%s,%c,%s\n", f.Seq, f.Timestamp.Format(rfc3339), byte(f.Direction), f.Body)
	}
	return b.String()
}

const rfc3339 = "2006-01-02T15:04:05Z07:00"

func parseSeqParam(raw string) (int64, bool) {
	decoded := string(vlcb.DecodeQueryValue(raw))
	v, err := strconv.ParseInt(decoded, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envelope(format, body string) string {
	if format == "txt" {
		return body
	}
	return "<html><body>" + body + "</body></html>"
}

// parseRawQuery splits a raw (still percent-encoded) query string into
// its key/value pairs without decoding the values — callers decode with
// vlcb.DecodeQueryValue themselves so the send parameter gets the
// source's permissive truncate-on-malformed-escape behavior instead of
// net/url's strict one.
func parseRawQuery(raw string) map[string]string {
	params := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		params[key] = value
	}
	return params
}
