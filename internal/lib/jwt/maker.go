// Package jwt реализует выпуск и проверку JWT токенов, идентифицирующих пользователя.
//
// Maker интерфейс для генерации и разбора токенов,
// MakerImpl реализация HS256 с секретным ключом и сроком жизни.
package jwt

import (
	"errors"
	"time"
)

// Ошибки проверки токена. Тексты совпадают с тем, что видит клиент в ответе 401.
var (
	ErrMalformed        = errors.New("jwt malformed")
	ErrExpired          = errors.New("jwt expired")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token")
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя с идентификатором userID.
	GenerateToken(userID string) (string, error)
	// ParseToken проверяет подпись и срок действия, возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
