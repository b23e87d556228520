// Package closeaccount удаляет учётную запись пользователя вместе с его данными.
package closeaccount

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

// Service удаляет аккаунт.
type Service interface {
	CloseAccount(ctx context.Context, userID string) error
}

// Revoker отзывает токен, которым закрыли аккаунт.
type Revoker interface {
	Logout(ctx context.Context, claims *jwt.CustomClaims) error
}

type Handler struct {
	log     *slog.Logger
	service Service
	revoker Revoker
}

func New(log *slog.Logger, service Service, revoker Revoker) *Handler {
	return &Handler{log: log, service: service, revoker: revoker}
}

// ServeHTTP godoc
// @Summary Закрыть аккаунт
// @Description Удаляет подписки, способы оплаты и самого пользователя в одной транзакции.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь уже удалён"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/me [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.closeaccount"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		response.Fail(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.CloseAccount(r.Context(), userID); err != nil {
		log.Error("failed to close account", sl.Err(err))
		status, msg := response.StatusFromError(err, "could not close account")
		response.Fail(w, r, status, msg)
		return
	}

	// Аккаунт уже удалён, поэтому ошибка отзыва только логируется.
	if claims, ok := middlewarectx.ClaimsFromContext(r.Context()); ok {
		if err := h.revoker.Logout(r.Context(), claims); err != nil {
			log.Warn("failed to revoke token after account closure", sl.Err(err))
		}
	}

	log.Info("account closed", slog.String("user_id", userID))
	render.JSON(w, r, response.OK())
}
