package list

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

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) List(ctx context.Context) ([]models.PublicUser, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.PublicUser)
	return users, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestListHandler_ServeHTTP(t *testing.T) {
	t.Run("users", func(t *testing.T) {
		svc := new(UserServiceMock)
		svc.On("List", mock.Anything).Return([]models.PublicUser{
			{ID: "1", Name: "Ann", Email: "ann@example.com"},
			{ID: "2", Name: "Bob", Email: "bob@example.com"},
		}, nil).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/user", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got struct {
			Success bool                `json:"success"`
			Message string              `json:"message"`
			Data    []models.PublicUser `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Success)
		assert.Equal(t, "Users fetched successfully", got.Message)
		assert.Len(t, got.Data, 2)
		assert.NotContains(t, rec.Body.String(), "password")
		svc.AssertExpectations(t)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		svc := new(UserServiceMock)
		svc.On("List", mock.Anything).Return([]models.PublicUser{}, nil).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/user", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"data":[]`)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(UserServiceMock)
		svc.On("List", mock.Anything).Return(nil, errors.New("db down")).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/user", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Internal Server Error")
	})
}
