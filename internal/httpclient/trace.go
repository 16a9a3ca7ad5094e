package httpclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// previewLimit caps how much of a response body is copied into the trace log
const previewLimit = 2048

var hiddenParams = map[string]struct{}{
	"apikey":       {},
	"api_key":      {},
	"key":          {},
	"token":        {},
	"access_token": {},
	"password":     {},
	"username":     {},
}

// Transport logs every round trip at trace level. Gateway credentials carried
// in the query string are masked before logging.
type Transport struct {
	Name string
	Base http.RoundTripper
}

// NewClient returns an http.Client using a tracing Transport over the default one
func NewClient(name string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &Transport{Name: name},
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if zerolog.GlobalLevel() > zerolog.TraceLevel || log.Logger.GetLevel() > zerolog.TraceLevel {
		return t.base().RoundTrip(req)
	}

	target := MaskURL(req.URL)
	started := time.Now()
	log.Trace().Str("client", t.Name).Str("method", req.Method).Str("url", target).Msg("Sending request")

	resp, err := t.base().RoundTrip(req)
	elapsed := time.Since(started)
	if err != nil {
		log.Trace().Str("client", t.Name).Str("url", target).Dur("elapsed", elapsed).Err(err).Msg("Request failed")
		return nil, err
	}

	ev := log.Trace().
		Str("client", t.Name).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed)
	if preview, err := peekBody(resp); err != nil {
		ev.AnErr("body_error", err)
	} else {
		addPreview(ev, preview)
	}
	ev.Msg("Received response")

	return resp, nil
}

// peekBody reads up to previewLimit bytes and puts them back in front of the
// unread remainder so the caller still sees the whole body
func peekBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, nil
	}
	head, err := io.ReadAll(io.LimitReader(resp.Body, previewLimit))
	resp.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), resp.Body), resp.Body}
	return head, err
}

func addPreview(ev *zerolog.Event, preview []byte) {
	if len(preview) == 0 {
		return
	}
	if len(preview) < previewLimit && json.Valid(preview) {
		ev.RawJSON("body", preview)
		return
	}
	ev.Str("body", string(preview))
}

// MaskURL renders u with credential-like query values replaced by "***"
func MaskURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	masked := *u
	masked.User = nil
	if masked.RawQuery != "" {
		q := masked.Query()
		for k := range q {
			if _, hide := hiddenParams[strings.ToLower(k)]; hide {
				q.Set(k, "***")
			}
		}
		masked.RawQuery = q.Encode()
	}
	return masked.String()
}
