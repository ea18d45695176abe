package remote

import (
	"net/http"
	"net/http/httputil"

	"github.com/rs/zerolog/log"
)

// DebugTransport logs every request/response pair at debug level. Wrap it
// around an http.Client transport when diagnosing wire issues; do not enable
// in production, dumps include full bodies.
type DebugTransport struct {
	Base http.RoundTripper
}

func (dt *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if dump, err := httputil.DumpRequestOut(req, true); err == nil {
		log.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Str("request_dump", string(dump)).
			Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Msg("HTTP request failed")
		return nil, err
	}

	if dump, err := httputil.DumpResponse(resp, true); err == nil {
		log.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Int("status_code", resp.StatusCode).
			Str("response_dump", string(dump)).
			Msg("HTTP response")
	}
	return resp, nil
}
