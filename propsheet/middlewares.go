package propsheet

import (
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/tillfield/propsheet/internal/ezhttp"
	"github.com/tillfield/propsheet/internal/httperr"
)

const maxUnix = int(^int32(0))

// RateLimit only throttles notification deliveries; verification handshakes
// and liveness checks stay unthrottled.
func (s *Server) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		remoteAddr, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			remoteAddr = r.RemoteAddr
		}
		if slices.Contains(s.cfg.RateLimit.Whitelist, remoteAddr) {
			next.ServeHTTP(w, r)
			return
		}
		if slices.Contains(s.cfg.RateLimit.Blacklist, remoteAddr) {
			retryAfter := maxUnix - int(time.Now().Unix())
			w.Header().Set(ezhttp.HeaderRateLimitLimit, "0")
			w.Header().Set(ezhttp.HeaderRateLimitRemaining, "0")
			w.Header().Set(ezhttp.HeaderRateLimitReset, strconv.Itoa(maxUnix))
			w.Header().Set(ezhttp.HeaderRetryAfter, strconv.Itoa(retryAfter))
			s.error(w, r, httperr.TooManyRequests(ErrRateLimit))
			return
		}
		if s.rateLimitHandler == nil {
			next.ServeHTTP(w, r)
			return
		}
		s.rateLimitHandler(next).ServeHTTP(w, r)
	})
}
