// Package response формирует единые JSON ответы обработчиков и сводит
// любые ошибки к статусу и телу {success:false, message, error}.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

// Response описывает успешный JSON ответ сервера.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"User fetched successfully"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse описывает ответ с ошибкой.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Unauthorized"`
	Error   any    `json:"error,omitempty"`
}

// InternalErrorMessage текст ответа на неклассифицированную ошибку.
const InternalErrorMessage = "Internal Server Error"

// OK возвращает успешный Response с переданными данными.
func OK(message string, data any) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// Error возвращает ErrorResponse с сообщением.
func Error(message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: message,
	}
}

// Normalize сводит ошибку к HTTP статусу и телу ответа.
//
// Порядок проверки: *apperr.Error, *apperr.HTTPError, *models.ValidationError,
// *storage.DuplicateKeyError, *storage.CastError. Остальное даёт 500.
func Normalize(err error) (int, ErrorResponse) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Status, ErrorResponse{Message: appErr.Message, Error: appErr.Data}
	}

	var httpErr *apperr.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, Error(httpErr.Message)
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Error: verr}
	}

	var dup *storage.DuplicateKeyError
	if errors.As(err, &dup) {
		return http.StatusBadRequest, ErrorResponse{
			Message: "Duplicate key error",
			Error:   map[string][]string{"field": dup.Fields},
		}
	}

	var cast *storage.CastError
	if errors.As(err, &cast) {
		return http.StatusBadRequest, Error(fmt.Sprintf("Invalid %s: %s", cast.Path, cast.Value))
	}

	return http.StatusInternalServerError, Error(InternalErrorMessage)
}

// WriteError логирует ошибку с op и request_id и отправляет нормализованный ответ.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	status, body := Normalize(err)

	log = log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("status", status),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", sl.Err(err))
	}

	render.Status(r, status)
	render.JSON(w, r, body)
}
