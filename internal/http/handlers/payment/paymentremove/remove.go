package paymentremove

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
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Remove(ctx context.Context, userID, id string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить способ оплаты
// @Description Удаление запрещено, пока способ оплаты используется подписками.
// @Tags PaymentMethods
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID способа оплаты"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Способ оплаты принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Способ оплаты не найден"
// @Failure 409 {object} response.ErrorResponse "Способ оплаты используется"
// @Router /payment-methods/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.remove"
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

	if err := h.service.Remove(r.Context(), userID, id); err != nil {
		log.Error("failed to remove payment method", sl.Err(err))
		status, msg := response.StatusFromError(err, "could not remove payment method")
		response.Fail(w, r, status, msg)
		return
	}

	log.Info("payment method removed", slog.String("id", id))
	render.JSON(w, r, response.OK())
}
