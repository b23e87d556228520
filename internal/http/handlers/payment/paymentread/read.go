package paymentread

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

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Read(ctx context.Context, userID, id string) (*models.PaymentMethod, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить способ оплаты
// @Tags PaymentMethods
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID способа оплаты"
// @Success 200 {object} response.Response{data=models.PaymentMethod}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Способ оплаты принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Способ оплаты не найден"
// @Router /payment-methods/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.read"
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

	pm, err := h.service.Read(r.Context(), userID, id)
	if err != nil {
		log.Error("failed to read payment method", sl.Err(err))
		status, msg := response.StatusFromError(err, "could not read payment method")
		response.Fail(w, r, status, msg)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(pm))
}
