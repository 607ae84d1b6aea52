// Package create реализует HTTP-обработчик создания подписки текущего пользователя.
//
// Типы полей проверяются при разборе тела, правила полей и вычисление даты
// продления выполняет сервис. Владелец подписки берётся из контекста запроса.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/validate"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service описывает создание подписки.
type Service interface {
	Create(ctx context.Context, userID string, in models.SubscriptionInput) (*models.Subscription, error)
}

// Handler обрабатывает POST /api/v1/subscriptions.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Создать подписку
// @Description Создает подписку текущего пользователя. Без renewalDate дата продления вычисляется по frequency.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.SubscriptionInput true "Данные новой подписки"
// @Success 201 {object} response.Response{data=models.Subscription} "Подписка создана"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, log, op, apperr.Unauthorized("Unauthorized"))
		return
	}

	var in models.SubscriptionInput
	if err := validate.Decode(r.Body, &in, false); err != nil {
		response.WriteError(w, r, log, op, err)
		return
	}

	sub, err := h.service.Create(r.Context(), user.ID, in)
	if err != nil {
		response.WriteError(w, r, log, op, err)
		return
	}

	log.Info("subscription created", slog.String("id", sub.ID), slog.String("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK("Subscription created successfully", sub))
}
