package messages

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flock/internal/logger"
	pkgerrors "flock/pkg/errors"
)

type stubService struct {
	resp *MessageResponse
	err  error
	got  CreateMessageRequest
}

func (s *stubService) CreateMessage(_ context.Context, req CreateMessageRequest) (*MessageResponse, error) {
	s.got = req
	return s.resp, s.err
}

func post(t *testing.T, svc Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, logger.NopLogger()).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateMessage(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubService{resp: &MessageResponse{
		ID:        "m-1",
		Content:   "hello",
		CreatedAt: createdAt,
		UserID:    "u-1",
		Username:  "Alice",
	}}

	rec := post(t, svc, `{"userId":"u-1","content":"hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u-1", svc.got.UserID)
	assert.JSONEq(t,
		`{"id":"m-1","content":"hello","createdAt":"2025-03-01T12:00:00Z","userId":"u-1","username":"Alice"}`,
		rec.Body.String())
}

func TestHandler_CreateMessageErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"malformed body", `{"userId":`, nil, http.StatusBadRequest},
		{"invalid content", `{"userId":"u-1","content":""}`, pkgerrors.ErrValidation, http.StatusBadRequest},
		{"unknown author", `{"userId":"u-1","content":"hi"}`, pkgerrors.ErrNotFound, http.StatusNotFound},
		{"unpublished", `{"userId":"u-1","content":"hi"}`, pkgerrors.ErrServiceUnavailable.WithDetail("message_id", "m-9"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, &stubService{err: tt.err}, tt.body)
			assert.Equal(t, tt.want, rec.Code)

			var body pkgerrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.ErrorCode)
		})
	}
}
