// Package summary отдаёт агрегированные расходы пользователя за месяц и год.
package summary

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

type Service interface {
	Summary(ctx context.Context, userID string, now time.Time) (models.Summary, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     time.Now,
	}
}

// ServeHTTP godoc
// @Summary Итоги расходов
// @Description Месячная и годовая сумма подписок с разбивкой по способам оплаты.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Summary}
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.summary"
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

	sum, err := h.service.Summary(r.Context(), userID, h.now())
	if err != nil {
		log.Error("failed to build summary", sl.Err(err))
		status, msg := response.StatusFromError(err, "could not build summary")
		response.Fail(w, r, status, msg)
		return
	}

	log.Info("summary built", slog.Int("count", sum.Count), slog.Int("monthly_total", sum.MonthlyTotal))
	render.JSON(w, r, response.StatusOKWithData(sum))
}
