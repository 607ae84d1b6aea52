package signin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	services "github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) SignIn(ctx context.Context, email, password string) (*services.Result, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*services.Result)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSigninHandler_ServeHTTP(t *testing.T) {
	user := &models.User{ID: "6f1c1f7e-3a52-4c4e-9a59-6b1f4a0e9d11", Name: "John", Email: "john@example.com"}

	tests := []struct {
		name        string
		body        string
		setup       func(m *AuthServiceMock)
		wantStatus  int
		wantMessage string
		wantIssues  []map[string]any
	}{
		{
			name: "signed in, extra keys ignored",
			body: `{"email":"john@example.com","password":"password123","remember":true}`,
			setup: func(m *AuthServiceMock) {
				m.On("SignIn", mock.Anything, "john@example.com", "password123").
					Return(&services.Result{Token: "token", User: user}, nil).Once()
			},
			wantStatus:  http.StatusOK,
			wantMessage: "User signed in successfully",
		},
		{
			name:        "empty password",
			body:        `{"email":"john@example.com","password":""}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Validation failed",
			wantIssues: []map[string]any{
				{"code": "too_small", "message": "Password is required", "path": []any{"password"}},
			},
		},
		{
			name:        "empty email is a format error",
			body:        `{"email":"","password":"password123"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Validation failed",
			wantIssues: []map[string]any{
				{"code": "invalid_string", "message": "Invalid email format", "path": []any{"email"}},
			},
		},
		{
			name:        "missing email",
			body:        `{"password":"password123"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Validation failed",
			wantIssues: []map[string]any{
				{"code": "invalid_type", "message": "Required", "path": []any{"email"}},
			},
		},
		{
			name: "unknown email",
			body: `{"email":"ghost@example.com","password":"password123"}`,
			setup: func(m *AuthServiceMock) {
				m.On("SignIn", mock.Anything, "ghost@example.com", "password123").
					Return(nil, apperr.NotFound("User not found")).Once()
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "User not found",
		},
		{
			name: "wrong password",
			body: `{"email":"john@example.com","password":"wrong-pass"}`,
			setup: func(m *AuthServiceMock) {
				m.On("SignIn", mock.Anything, "john@example.com", "wrong-pass").
					Return(nil, apperr.Unauthorized("Invalid credentials")).Once()
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(AuthServiceMock)
			if tt.setup != nil {
				tt.setup(svc)
			}
			handler := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantMessage, got["message"])

			if tt.wantIssues != nil {
				details, ok := got["error"].(map[string]any)
				require.True(t, ok)
				issues, ok := details["issues"].([]any)
				require.True(t, ok)
				require.Len(t, issues, len(tt.wantIssues))
				for i, want := range tt.wantIssues {
					issue, ok := issues[i].(map[string]any)
					require.True(t, ok)
					assert.Equal(t, want["code"], issue["code"])
					assert.Equal(t, want["message"], issue["message"])
					assert.Equal(t, want["path"], issue["path"])
				}
			}

			if tt.wantStatus == http.StatusOK {
				data, ok := got["data"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "token", data["token"])
			}
			svc.AssertExpectations(t)
		})
	}
}
