package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var errBadRequest = errors.New("invalid_request")

func errInvalidRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

func errUnknownEventType(kind string) error {
	return fmt.Errorf("%w: unknown event type %q", errBadRequest, kind)
}

func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, errBadRequest) {
		status = http.StatusBadRequest
	}
	abortWithStatus(c, status, err)
}

func abortWithStatus(c *gin.Context, status int, err error) {
	kind := "internal_error"
	switch status {
	case http.StatusBadRequest:
		kind = "invalid_request"
	case http.StatusConflict:
		kind = "conflict"
	case http.StatusUnprocessableEntity:
		kind = "unprocessable"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: errorPayload{
		Type:    kind,
		Message: err.Error(),
	}})
}
