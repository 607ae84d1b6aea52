// Package models содержит доменные модели пользователя и подписки,
// их JSON проекции и правила проверки, не зависящие от хранилища.
package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// maxEmailLength ширина колонки users.email.
const maxEmailLength = 255

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    `json:"id"`        // Уникальный идентификатор пользователя
	Name         string    `json:"name"`      // Имя, 2-50 символов
	Email        string    `json:"email"`     // Электронная почта (уникальная, в нижнем регистре)
	PasswordHash string    `json:"-"`         // Хэш пароля, наружу не отдаётся
	CreatedAt    time.Time `json:"createdAt"` // Дата создания
	UpdatedAt    time.Time `json:"updatedAt"` // Дата последнего изменения
}

// PublicUser пользователь в ответах списка и чтения.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthUser пользователь в ответах регистрации и входа.
type AuthUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public возвращает проекцию без хэша пароля.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Auth возвращает проекцию для ответов /auth.
func (u *User) Auth() AuthUser {
	return AuthUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		UpdatedAt: u.UpdatedAt,
	}
}

// PublicUsers проецирует список пользователей.
func PublicUsers(users []*User) []PublicUser {
	res := make([]PublicUser, 0, len(users))
	for _, u := range users {
		res = append(res, u.Public())
	}
	return res
}

// NormalizeEmail обрезает пробелы и приводит адрес к нижнему регистру.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser собирает пользователя из уже проверенных данных: имя обрезается,
// почта нормализуется.
func NewUser(name, email, passwordHash string) *User {
	return &User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
	}
}

// ValidateUser проверяет пользователя перед записью в хранилище.
func ValidateUser(u *User) error {
	verr := &ValidationError{}

	name := strings.TrimSpace(u.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		verr.Add("name", "Name is required!")
	case n < 2:
		verr.Add("name", "Name must be at least 2 characters!")
	case n > 50:
		verr.Add("name", "Name can not be more than 50 characters!")
	}

	email := NormalizeEmail(u.Email)
	switch {
	case email == "":
		verr.Add("email", "Email is required!")
	case len(email) > maxEmailLength:
		verr.Add("email", "Email can not be more than 255 characters!")
	case !emailPattern.MatchString(email):
		verr.Add("email", "Please fill a valid email address!")
	}

	if u.PasswordHash == "" {
		verr.Add("password", "Password is required!")
	}

	return verr.OrNil()
}
