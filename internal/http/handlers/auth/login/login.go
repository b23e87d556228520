// Package login начинает вход через OAuth провайдера: выставляет cookie
// со значением state и перенаправляет пользователя на страницу согласия.
package login

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

// StateCookie — имя cookie, в которой хранится state до возврата от провайдера.
const StateCookie = "oauth_state"

const stateTTL = 10 * time.Minute

// Service отдаёт ссылку на страницу согласия провайдера.
type Service interface {
	LoginURL(state string) string
}

// Handler обрабатывает начало входа.
type Handler struct {
	log          *slog.Logger
	service      Service
	secureCookie bool
	newState     func() (string, error)
}

// New создает новый Handler. newState генерирует значение state.
func New(log *slog.Logger, service Service, secureCookie bool, newState func() (string, error)) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		secureCookie: secureCookie,
		newState:     newState,
	}
}

// ServeHTTP godoc
// @Summary Вход через Google
// @Description Перенаправляет на страницу согласия Google и сохраняет state в cookie.
// @Tags Auth
// @Success 307 "Перенаправление к провайдеру"
// @Failure 500 {object} response.ErrorResponse "Не удалось сгенерировать state"
// @Router /auth/google/login [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	state, err := h.newState()
	if err != nil {
		log.Error("failed to generate oauth state", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "could not start login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.service.LoginURL(state), http.StatusTemporaryRedirect)
}
