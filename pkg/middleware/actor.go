package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/oliver-kandagor/catalog-admin/pkg/composables"
)

const (
	ActorIDHeader   = "X-Actor-Id"
	ActorRoleHeader = "X-Actor-Role"
)

// ProvideActor lifts the authenticated identity the upstream gateway
// resolved into the request context. The platform in front of this
// service owns authentication; an absent header simply means no actor,
// which handlers requiring one reject.
func ProvideActor() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(ActorIDHeader))
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor := composables.Actor{
				ID:   id,
				Role: strings.TrimSpace(r.Header.Get(ActorRoleHeader)),
			}
			next.ServeHTTP(w, r.WithContext(composables.WithActor(r.Context(), actor)))
		})
	}
}
