package signup

import (
	"context"

	services "github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
)

// Service регистрирует пользователя и выпускает токен.
type Service interface {
	SignUp(ctx context.Context, name, email, password string) (*services.Result, error)
}
