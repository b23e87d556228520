// Package callback завершает вход через OAuth провайдера и выдаёт JWT.
package callback

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service обменивает код авторизации на JWT.
type Service interface {
	Callback(ctx context.Context, code string) (string, *models.User, error)
}

// Result — данные успешного входа.
type Result struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Возврат от Google
// @Description Проверяет state, обменивает код на профиль и возвращает JWT.
// @Tags Auth
// @Produce  json
// @Param code query string true "Код авторизации"
// @Param state query string true "Значение state"
// @Success 200 {object} response.Response{data=Result}
// @Failure 400 {object} response.ErrorResponse "Нет кода или state не совпадает"
// @Failure 401 {object} response.ErrorResponse "Провайдер отклонил вход"
// @Router /auth/google/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.callback"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		log.Warn("provider returned error", slog.String("error", e))
		response.Fail(w, r, http.StatusUnauthorized, "authorization denied")
		return
	}

	cookie, err := r.Cookie(login.StateCookie)
	state := q.Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		log.Error("oauth state mismatch", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: login.StateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	code := q.Get("code")
	if code == "" {
		log.Error("missing authorization code")
		response.Fail(w, r, http.StatusBadRequest, "missing code")
		return
	}

	token, user, err := h.service.Callback(r.Context(), code)
	if err != nil {
		log.Error("oauth callback failed", sl.Err(err))
		response.Fail(w, r, http.StatusUnauthorized, "authentication failed")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(Result{Token: token, User: user}))
}
