package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/baharkarakas/qa-forum/internal/api/httpx"
	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/auth"
)

const devTokenPrefix = "dev-"

type AuthMiddleware struct {
	TM     *auth.TokenManager
	AppEnv string
}

func NewAuthMiddleware(tm *auth.TokenManager, appEnv string) *AuthMiddleware {
	return &AuthMiddleware{TM: tm, AppEnv: appEnv}
}

// Require rejects requests without a valid access token.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return m.handle(next, true)
}

// Optional attaches the actor when a token is present and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return m.handle(next, false)
}

func (m *AuthMiddleware) handle(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, present := bearer(r)
		if !present {
			if required {
				httpx.WriteAppError(w, r, apperr.New(apperr.Unauthenticated, "missing bearer token"))
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		actor, err := m.resolve(token)
		if err != nil {
			httpx.WriteAppError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// DEV: Bearer dev-<uuid> | any env: Bearer <JWT(access)>
func (m *AuthMiddleware) resolve(token string) (Actor, error) {
	if m.AppEnv == "dev" && strings.HasPrefix(token, devTokenPrefix) {
		id := strings.TrimPrefix(token, devTokenPrefix)
		if _, err := uuid.Parse(id); err != nil {
			return Actor{}, apperr.New(apperr.Unauthenticated, "invalid dev token")
		}
		return Actor{UserID: id}, nil
	}
	claims, err := m.TM.ParseAccess(token)
	if err != nil {
		return Actor{}, apperr.New(apperr.Unauthenticated, "invalid access token")
	}
	return Actor{UserID: claims.UserID, Username: claims.Username}, nil
}

func bearer(r *http.Request) (string, bool) {
	ah := r.Header.Get("Authorization")
	if ah == "" {
		return "", false
	}
	if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
		return "", true
	}
	return strings.TrimSpace(ah[7:]), true
}
