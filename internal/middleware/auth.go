package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AdamBeresnev/olympics-draws/internal/httputil"
	users "github.com/AdamBeresnev/olympics-draws/internal/user"
	"github.com/alexedwards/scs/v2"
)

const actorSessionKey = "actor"

// StartSession stores the acting administrator in the session.
func StartSession(sessionManager *scs.SessionManager, r *http.Request, actor users.Actor) error {
	if actor.ID == "" {
		return errors.New("actor id is required")
	}
	if !actor.Role.Valid() {
		return errors.New("unknown role")
	}
	if actor.Role == users.RoleSchoolAdmin && actor.SchoolID == nil {
		return errors.New("school admins need a school id")
	}

	data, err := json.Marshal(actor)
	if err != nil {
		return err
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), actorSessionKey, string(data))
	return nil
}

// LoadActor puts the session's actor, if any, into the request context.
func LoadActor(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := sessionManager.GetString(r.Context(), actorSessionKey)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			var actor users.Actor
			if err := json.Unmarshal([]byte(raw), &actor); err != nil || !actor.Role.Valid() {
				sessionManager.Remove(r.Context(), actorSessionKey)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(users.WithActor(r.Context(), &actor)))
		})
	}
}

func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := users.ActorFromContext(r.Context()); !ok {
			httputil.Unauthorized(w, "Not signed in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireRole(role users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := users.ActorFromContext(r.Context())
			if !ok {
				httputil.Unauthorized(w, "Not signed in")
				return
			}
			if actor.Role != role {
				httputil.Forbidden(w, "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PeekSession loads the session read-only without wrapping the response
// writer, so it can sit in front of handlers that hijack the connection.
func PeekSession(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionManager.Cookie.Name)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := sessionManager.Load(r.Context(), cookie.Value)
			if err != nil {
				httputil.InternalServerError(w, "Failed to load session", err)
				return
			}
			LoadActor(sessionManager)(next).ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
