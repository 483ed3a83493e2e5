package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// ErrWildcardCredentials is returned when AllowedOrigins contains "*" and
// AllowCredentials is true.
var ErrWildcardCredentials = errors.New("cors: wildcard origin cannot be used with AllowCredentials")

// DefaultCORSMethods are advertised when CORSConfig.AllowedMethods is empty.
var DefaultCORSMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// CORSConfig configures CORSMiddleware. It lets browser tools on another
// origin fetch the specification and call the documented methods.
type CORSConfig struct {
	// AllowedOrigins holds exact origins, "*", or subdomain patterns such
	// as "https://*.example.com".
	AllowedOrigins []string

	// AllowedMethods defaults to DefaultCORSMethods.
	AllowedMethods []string

	// AllowedHeaders lists headers the client may send. Empty reflects
	// Access-Control-Request-Headers.
	AllowedHeaders []string

	ExposeHeaders    []string
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Zero omits the
	// header; a negative value sends "0".
	MaxAge int
}

type originPattern struct {
	prefix string
	suffix string
}

// CORSMiddleware answers preflight requests and sets the CORS response
// headers for allowed origins. Requests from other origins pass through
// untouched; the browser enforces the policy.
func CORSMiddleware(cfg CORSConfig) (MiddlewareFunc, error) {
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")
	if wildcard && cfg.AllowCredentials {
		return nil, ErrWildcardCredentials
	}

	var (
		exact    []string
		patterns []originPattern
	)
	for _, o := range cfg.AllowedOrigins {
		lower := strings.ToLower(o)
		before, after, found := strings.Cut(lower, "*")
		switch {
		case o == "*":
		case !found:
			exact = append(exact, lower)
		case strings.Contains(after, "*"):
			return nil, errors.New("cors: origin pattern contains multiple wildcards: " + o)
		default:
			patterns = append(patterns, originPattern{prefix: before, suffix: after})
		}
	}

	allowed := func(origin string) bool {
		if wildcard {
			return true
		}
		origin = strings.ToLower(origin)
		if slices.Contains(exact, origin) {
			return true
		}
		for _, p := range patterns {
			if len(origin) >= len(p.prefix)+len(p.suffix) &&
				strings.HasPrefix(origin, p.prefix) && strings.HasSuffix(origin, p.suffix) {
				return true
			}
		}
		return false
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = DefaultCORSMethods
	}
	allowMethods := strings.Join(methods, ",")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed(origin) {
				if !wildcard {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if wildcard {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				if len(cfg.ExposeHeaders) > 0 {
					h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ","))
				}
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods", allowMethods)
			if len(cfg.AllowedHeaders) > 0 {
				h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ","))
			} else if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			switch {
			case cfg.MaxAge > 0:
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			case cfg.MaxAge < 0:
				h.Set("Access-Control-Max-Age", "0")
			}
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			w.WriteHeader(http.StatusNoContent)
		})
	}, nil
}
