package signin

import (
	"context"

	services "github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
)

// Service проверяет учетные данные и выпускает токен.
type Service interface {
	SignIn(ctx context.Context, email, password string) (*services.Result, error)
}
