// Package home отдаёт приветствие на корневом маршруте.
package home

import (
	"net/http"

	"github.com/go-chi/render"
)

// Banner текст ответа GET /.
const Banner = "Welcome to Subcription Tracker API!"

// Handler godoc
// @Summary Приветствие
// @Tags Health
// @Produce  plain
// @Success 200 {string} string "Banner"
// @Router / [get]
func Handler(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, Banner)
}
