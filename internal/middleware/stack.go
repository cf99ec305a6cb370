package middleware

import "net/http"

// Stack composes middlewares into a single wrapper. The first middleware
// listed is the outermost:
//
//	stack := Stack(security, logging, rateLimit.Limit)
//	mux.Handle("POST /api/devis", stack(devisHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
