package transport

import (
	"errors"
	"net/http"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/AirTechNEO/coworkconnect/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func statusOf(kind entity.Kind) int {
	switch kind {
	case entity.KindValidation:
		return http.StatusBadRequest
	case entity.KindNotFound:
		return http.StatusNotFound
	case entity.KindCapacity, entity.KindConflict:
		return http.StatusConflict
	case entity.KindPolicy:
		return http.StatusUnprocessableEntity
	case entity.KindConsistency:
		return http.StatusServiceUnavailable
	case entity.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error onto its HTTP status. Storage failures
// are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	kind := entity.KindOf(err)
	status := statusOf(kind)

	resp := ErrorResponse{Success: false, Error: err.Error()}
	var e *entity.Error
	if errors.As(err, &e) {
		resp.Code = e.Code
		resp.Error = e.Message
	}

	if kind == entity.KindStorage {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed on storage")
		resp.Error = "internal server error"
	}

	c.JSON(status, resp)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    entity.ErrInvalidInput.Code,
	})
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(middleware.UserIDKey)
}
