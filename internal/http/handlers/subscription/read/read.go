package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/request"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Handler обрабатывает запрос чтения одной подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение подписки.
type Service interface {
	Read(ctx context.Context, userID, id string) (*models.SubscriptionView, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить подписку
// @Description Возвращает подписку текущего пользователя по ID.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID подписки"
// @Success 200 {object} response.Response{data=models.SubscriptionView}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Подписка принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"
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

	id, ok := request.IDParam(r)
	if !ok {
		log.Error("failed to decode id from url")
		response.Fail(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	view, err := h.service.Read(r.Context(), userID, id)
	if err != nil {
		log.Error("failed to read subscription", sl.Err(err))
		status, msg := response.StatusFromError(err, "could not read subscription")
		response.Fail(w, r, status, msg)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(view))
}
