package paymentupdate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/request"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Update(ctx context.Context, userID, id string, req models.PaymentMethodRequest) (*models.PaymentMethod, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: request.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Переименовать способ оплаты
// @Tags PaymentMethods
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID способа оплаты"
// @Param request body models.PaymentMethodRequest true "Новое название"
// @Success 200 {object} response.Response{data=models.PaymentMethod}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 403 {object} response.ErrorResponse "Способ оплаты принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Способ оплаты не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /payment-methods/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.update"
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

	var req models.PaymentMethodRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	pm, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		log.Error("failed to update payment method", sl.Err(err))
		status, msg := response.StatusFromError(err, "could not update payment method")
		response.Fail(w, r, status, msg)
		return
	}

	log.Info("payment method updated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(pm))
}
