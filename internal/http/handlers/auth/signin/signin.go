// Package signin реализует HTTP-обработчик входа по почте и паролю.
package signin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/validate"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Request учетные данные. Лишние поля игнорируются.
type Request struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=1"`
}

// Messages тексты ошибок полей запроса.
func (Request) Messages() map[string]string {
	return map[string]string{
		"email.email":  "Invalid email format",
		"password.min": "Password is required",
	}
}

// Data тело успешного ответа.
type Data struct {
	Token string          `json:"token"`
	User  models.AuthUser `json:"user"`
}

// Handler обрабатывает POST /api/v1/auth/sign-in.
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
// @Summary Вход пользователя
// @Description Проверяет почту и пароль, возвращает JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Почта и пароль"
// @Success 200 {object} response.Response{data=Data} "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверный пароль"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/sign-in [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := validate.Decode(r.Body, &req, false); err != nil {
		response.WriteError(w, r, log, op, err)
		return
	}

	res, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, log, op, err)
		return
	}

	log.Info("user signed in", slog.String("user_id", res.User.ID))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response.OK("User signed in successfully", Data{
		Token: res.Token,
		User:  res.User.Auth(),
	}))
}
