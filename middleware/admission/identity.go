package admission

import (
	"net"
	"net/http"
	"strings"

	"admission-gateway/middleware/admission/domain"
)

// IdentityFunc extrai de uma requisição o identificador estável de "quem
// está pedindo".
type IdentityFunc func(r *http.Request) domain.Key

// DefaultIdentityFunc resolve a identidade na ordem:
//
//  1. API key no header configurado (quando presente)
//  2. primeiro IP do X-Forwarded-For (cliente original), se confiável
//  3. host do RemoteAddr
//  4. sentinela "unknown"
//
// Falha de extração nunca vira erro: degrada para a sentinela e o limiter
// continua funcionando (fail-open na identidade, fail-closed na cota).
// Identidades derivadas de IP ganham o prefixo "IP:" para não colidirem com
// API keys.
func DefaultIdentityFunc(keyHeader string, trustXFF bool) IdentityFunc {
	return func(r *http.Request) domain.Key {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return domain.Key(v)
			}
		}

		if ip := clientIP(r, trustXFF); ip != "" {
			return domain.Key("IP:" + ip)
		}
		return domain.Key("unknown")
	}
}

func clientIP(r *http.Request, trustXFF bool) string {
	if trustXFF {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if len(parts) > 0 {
				if ip := strings.TrimSpace(parts[0]); ip != "" {
					return ip
				}
			}
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return ""
}
