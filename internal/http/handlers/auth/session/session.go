// Package session содержит заглушки выхода и проверки сессии.
// Токены не хранятся на сервере, поэтому обработчики ничего не меняют.
package session

import (
	"net/http"

	"github.com/go-chi/render"
)

// SignOut godoc
// @Summary Выход
// @Tags Auth
// @Produce  plain
// @Success 200 {string} string "Sign-Out"
// @Router /auth/sign-out [post]
func SignOut(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "Sign-Out")
}

// Verify godoc
// @Summary Проверка
// @Tags Auth
// @Produce  plain
// @Success 200 {string} string "Verify"
// @Router /auth/verify [post]
func Verify(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "Verify")
}
