package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	userID int64
	err    error
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (int64, error) {
	return s.userID, s.err
}

func authRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(auth))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetInt64(UserIDKey)})
	})
	return router
}

// TestAuth проверяет коды ответа для разных ошибок аутентификации
func TestAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		auth     stubAuthenticator
		wantCode int
		wantErr  string
	}{
		{name: "valid token", header: "Bearer abc", auth: stubAuthenticator{userID: 7}, wantCode: http.StatusOK},
		{name: "missing header", auth: stubAuthenticator{userID: 7}, wantCode: http.StatusUnauthorized, wantErr: "invalid_token"},
		{name: "wrong scheme", header: "Basic abc", auth: stubAuthenticator{userID: 7}, wantCode: http.StatusUnauthorized, wantErr: "invalid_token"},
		{name: "rejected token", header: "Bearer abc", auth: stubAuthenticator{err: entity.ErrInvalidToken}, wantCode: http.StatusUnauthorized, wantErr: "invalid_token"},
		{name: "storage outage", header: "Bearer abc", auth: stubAuthenticator{err: entity.AsStorage(errors.New("connection refused"))}, wantCode: http.StatusInternalServerError, wantErr: entity.ErrDatabaseError.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			authRouter(tt.auth).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, body["code"])
				assert.NotContains(t, body["error"], "connection refused")
				return
			}
			assert.EqualValues(t, tt.auth.userID, body["userID"])
		})
	}
}
