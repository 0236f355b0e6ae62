package httpinterface

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/houseofbtc/houseledger/pkg/stats"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidAccountID ...
var ErrInvalidAccountID = errors.New("account id must be a positive integer")

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// badRequest wraps errors caused by malformed requests.
type badRequest struct {
	err error
}

func (e badRequest) Error() string {
	return e.err.Error()
}

func (e badRequest) Unwrap() error {
	return e.err
}

// statusOf maps an error to its http status code and the outcome label used
// for metrics. Rejections are reported as 422 and leave no side effects.
func statusOf(err error) (int, string) {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, stats.OutcomeRejected
	case errors.Is(err, domain.ErrAccountDoesNotExist),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, stats.OutcomeNotFound
	case errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, domain.ErrAccountAlreadyExists):
		return http.StatusConflict, stats.OutcomeRejected
	case errors.Is(err, domain.ErrInsufficientAccount):
		return http.StatusUnprocessableEntity, stats.OutcomeRejected
	default:
		return http.StatusInternalServerError, stats.OutcomeError
	}
}

func abortWithError(c *gin.Context, status int, err error) {
	requestID := c.GetString(requestIDKey)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("request_id", requestID).Error(
			"request failed",
		)
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     err.Error(),
		RequestID: requestID,
	})
}
