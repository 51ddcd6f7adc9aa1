package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sultan0alshami/wathiq-sub001/internal/common"
)

const (
	tripNotFound  = "Trip not found or permission denied"
	internalError = "internal error"
)

// ErrorResponse is the body of every non-2xx reply. Clients read detail.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorResponse{Detail: detail, RequestID: requestID(c)})
}

// respondDomainError maps service errors to status codes. Unexpected errors
// are attached to the context for RequestLogger and reach the client only as
// "internal error" plus the request id.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		respondError(c, http.StatusNotFound, tripNotFound)
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, err.Error())
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, internalError)
	}
}
