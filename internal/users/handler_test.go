package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flock/internal/logger"
	pkgerrors "flock/pkg/errors"
)

type stubService struct {
	Service
	users     []User
	followErr error
	getErr    error
	created   CreateUserRequest
}

func (s *stubService) ListUsers(context.Context) ([]User, error) { return s.users, nil }

func (s *stubService) GetUser(_ context.Context, id string) (*User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &User{ID: id, Username: "Alice"}, nil
}

func (s *stubService) CreateUser(_ context.Context, req CreateUserRequest) (*User, error) {
	s.created = req
	return &User{ID: "new-id", Username: req.Username}, nil
}

func (s *stubService) Follow(context.Context, FollowRequest) error   { return s.followErr }
func (s *stubService) Unfollow(context.Context, FollowRequest) error { return s.followErr }

func newRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func do(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListUsers(t *testing.T) {
	router := newRouter(&stubService{users: []User{{ID: "1", Username: "Alice"}}})

	rec := do(router, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"1","username":"Alice"}]`, rec.Body.String())
}

func TestHandler_CreateUser(t *testing.T) {
	svc := &stubService{}
	router := newRouter(svc)

	rec := do(router, http.MethodPost, "/api/v1/users", map[string]string{"username": "Dave"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Dave", svc.created.Username)

	rec = do(router, http.MethodPost, "/api/v1/users", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetUserNotFound(t *testing.T) {
	router := newRouter(&stubService{getErr: pkgerrors.ErrNotFound.WithMessage("user x not found")})

	rec := do(router, http.MethodGet, "/api/v1/users/x", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body pkgerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.ErrorCode)
	assert.Equal(t, "user x not found", body.Error)
}

func TestHandler_FollowStatuses(t *testing.T) {
	body := map[string]string{"followerId": "a", "followedId": "b"}

	tests := []struct {
		name   string
		err    error
		method string
		path   string
		want   int
	}{
		{"follow ok", nil, http.MethodPost, "/api/v1/follow", http.StatusOK},
		{"follow conflict", pkgerrors.ErrConflict, http.MethodPost, "/api/v1/follow", http.StatusConflict},
		{"follow self", pkgerrors.ErrValidation, http.MethodPost, "/api/v1/follow", http.StatusBadRequest},
		{"unfollow ok", nil, http.MethodDelete, "/api/v1/unfollow", http.StatusOK},
		{"unfollow missing user", pkgerrors.ErrNotFound, http.MethodDelete, "/api/v1/unfollow", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&stubService{followErr: tt.err})
			rec := do(router, tt.method, tt.path, body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
