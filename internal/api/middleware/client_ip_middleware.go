package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/rs/zerolog/log"
)

// ClientIPMiddleware 需註冊在 chi middleware.RealIP 之前
// 只有 socket 來源位於 trustedProxies 時才採用 X-Forwarded-For / X-Real-IP
func ClientIPMiddleware(trustedProxies []string) func(http.Handler) http.Handler {
	trusted := parsePrefixes(trustedProxies)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := resolveClientIP(r, trusted)
			ctx := context.WithValue(r.Context(), constants.ClientIPKey, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parsePrefixes(raw []string) []netip.Prefix {
	var res []netip.Prefix
	for _, s := range raw {
		if !strings.Contains(s, "/") {
			addr, err := netip.ParseAddr(s)
			if err != nil {
				log.Warn().Str("proxy", s).Msg("ignore invalid trusted proxy")
				continue
			}
			res = append(res, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			log.Warn().Str("proxy", s).Msg("ignore invalid trusted proxy")
			continue
		}
		res = append(res, prefix.Masked())
	}
	return res
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func socketHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// resolveClientIP 由右往左走 X-Forwarded-For, 第一個非 trusted proxy 的位址即為 client
func resolveClientIP(r *http.Request, trusted []netip.Prefix) string {
	host := socketHost(r)
	peer, err := netip.ParseAddr(host)
	if err != nil || !isTrusted(peer, trusted) {
		return host
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !isTrusted(addr, trusted) {
				return addr.Unmap().String()
			}
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	return host
}
