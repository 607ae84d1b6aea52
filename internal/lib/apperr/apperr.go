// Package apperr описывает ошибки прикладного уровня, которые сервисы и
// обработчики возвращают наверх. Каждая ошибка знает свой HTTP статус.
package apperr

import "net/http"

// Error ошибка бизнес-логики с HTTP статусом, сообщением для клиента
// и необязательными данными.
type Error struct {
	Status  int
	Message string
	Data    any
}

func (e *Error) Error() string {
	return e.Message
}

// New создаёт ошибку с произвольным статусом.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Conflict 409, ресурс уже существует.
func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// NotFound 404.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Unauthorized 401.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// ValidationFailed 400 "Validation failed", data кладётся в поле error ответа.
func ValidationFailed(data any) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Validation failed", Data: data}
}

// HTTPError ошибка уровня протокола: битое тело запроса, неизвестный маршрут,
// неподдерживаемый метод.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// BadRequest 400 с исходной причиной.
func BadRequest(message string, err error) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Message: message, Err: err}
}
