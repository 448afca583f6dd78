package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	wrap "github.com/Temutjin2k/rideshare-ledger/pkg/logger/wrapper"
)

func (app *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if panic := recover(); panic != nil {
				err := fmt.Errorf("%v", panic)
				app.log.Error(wrap.WithAction(r.Context(), "panic_recovered"), "panic while serving request", err,
					"stack", string(debug.Stack()))

				w.Header().Set("Connection", "close")
				errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
