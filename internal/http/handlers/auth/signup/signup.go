// Package signup реализует HTTP-обработчик регистрации пользователя.
//
// Тело запроса проверяется строго: допускаются только name, email и password,
// лишние ключи дают ошибку unrecognized_keys. После регистрации возвращаются
// JWT и данные пользователя без хеша пароля.
package signup

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/validate"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Request входные данные регистрации.
type Request struct {
	Name     string `json:"name" validate:"min=2,max=50"`
	Email    string `json:"email" validate:"max=255,email"`
	Password string `json:"password" validate:"min=6"`
}

// Messages тексты ошибок полей запроса.
func (Request) Messages() map[string]string {
	return map[string]string{
		"name.min":     "Name must be at least 2 characters",
		"name.max":     "Name can not be more than 50 characters",
		"email.max":    "Email can not be more than 255 characters",
		"email.email":  "Invalid email format",
		"password.min": "Password must be at least 6 characters",
	}
}

// Data тело успешного ответа.
type Data struct {
	Token string          `json:"token"`
	User  models.AuthUser `json:"user"`
}

// Handler обрабатывает POST /api/v1/auth/sign-up.
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
// @Summary Регистрация пользователя
// @Description Создает пользователя и возвращает JWT. Лишние поля в теле запрещены.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя, почта и пароль"
// @Success 201 {object} response.Response{data=Data} "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже существует"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/sign-up [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := validate.Decode(r.Body, &req, true); err != nil {
		response.WriteError(w, r, log, op, err)
		return
	}

	res, err := h.service.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, log, op, err)
		return
	}

	log.Info("user signed up", slog.String("user_id", res.User.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK("User created successfully", Data{
		Token: res.Token,
		User:  res.User.Auth(),
	}))
}
