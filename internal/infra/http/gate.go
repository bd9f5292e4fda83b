package http

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// CookieName — cookie с токеном доступа к чату.
const CookieName = "chat_token"

// Gate проверяет предъявленный токен доступа.
// Единственный секрет, никаких учётных записей.
type Gate struct {
	secret string
}

// NewGate создаёт проверку токена.
func NewGate(secret string) *Gate {
	return &Gate{secret: secret}
}

// Check сравнивает токен с секретом за постоянное время.
func (g *Gate) Check(presented string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(g.secret)) == 1
}

// TokenFromRequest достаёт токен из cookie или заголовка Authorization.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// PageAuthMiddleware пускает на страницу только с валидным cookie,
// иначе перенаправляет на страницу входа.
func PageAuthMiddleware(gate *Gate, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Check(TokenFromRequest(r)) {
				http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginPageMiddleware перенаправляет уже авторизованного пользователя
// со страницы входа обратно в чат.
func LoginPageMiddleware(gate *Gate, chatPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate.Check(TokenFromRequest(r)) {
				http.Redirect(w, r, chatPath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// APIAuthMiddleware требует валидный токен для API-эндпоинтов.
func APIAuthMiddleware(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Check(TokenFromRequest(r)) {
				WriteError(w, http.StatusUnauthorized, "Ongeldig toegangstoken")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
