package middlewarectx_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

type TokenParserMock struct {
	mock.Mock
}

func (m *TokenParserMock) ParseToken(tokenStr string) (*jwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

type UserGetterMock struct {
	mock.Mock
}

func (m *UserGetterMock) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

type body struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func TestAuthorize(t *testing.T) {
	const userID = "6f1c1f7e-3a52-4c4e-9a59-6b1f4a0e9d11"
	user := &models.User{ID: userID, Name: "John", Email: "john@example.com"}

	tests := []struct {
		name        string
		authHeader  string
		setup       func(tp *TokenParserMock, ug *UserGetterMock)
		wantStatus  int
		wantMessage string
		wantCalled  bool
	}{
		{
			name:        "missing header",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "wrong scheme",
			authHeader:  "Basic abc",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "empty bearer token",
			authHeader:  "Bearer ",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:       "expired token",
			authHeader: "Bearer expired",
			setup: func(tp *TokenParserMock, _ *UserGetterMock) {
				tp.On("ParseToken", "expired").Return(nil, jwt.ErrExpired)
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "jwt expired",
		},
		{
			name:       "user not found",
			authHeader: "Bearer good",
			setup: func(tp *TokenParserMock, ug *UserGetterMock) {
				tp.On("ParseToken", "good").Return(&jwt.CustomClaims{UserID: userID}, nil)
				ug.On("GetUser", mock.Anything, userID).Return(nil, storage.ErrNotFound)
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:       "malformed user id",
			authHeader: "Bearer good",
			setup: func(tp *TokenParserMock, ug *UserGetterMock) {
				tp.On("ParseToken", "good").Return(&jwt.CustomClaims{UserID: "123"}, nil)
				ug.On("GetUser", mock.Anything, "123").
					Return(nil, &storage.CastError{Path: "id", Value: "123"})
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:       "store failure",
			authHeader: "Bearer good",
			setup: func(tp *TokenParserMock, ug *UserGetterMock) {
				tp.On("ParseToken", "good").Return(&jwt.CustomClaims{UserID: userID}, nil)
				ug.On("GetUser", mock.Anything, userID).Return(nil, errors.New("connection refused"))
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal Server Error",
		},
		{
			name:       "valid token",
			authHeader: "Bearer good",
			setup: func(tp *TokenParserMock, ug *UserGetterMock) {
				tp.On("ParseToken", "good").Return(&jwt.CustomClaims{UserID: userID}, nil)
				ug.On("GetUser", mock.Anything, userID).Return(user, nil)
			},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := new(TokenParserMock)
			ug := new(UserGetterMock)
			if tt.setup != nil {
				tt.setup(tp, ug)
			}

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got, ok := middlewarectx.UserFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, user, got)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			middlewarectx.Authorize(tp, ug, newNoopLogger())(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantMessage != "" {
				var resp body
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.False(t, resp.Success)
				assert.Equal(t, tt.wantMessage, resp.Message)
			}
			tp.AssertExpectations(t)
			ug.AssertExpectations(t)
		})
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	user, ok := middlewarectx.UserFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, user)
}
