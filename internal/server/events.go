package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tally/internal/event"
	"github.com/smallbiznis/tally/internal/handler"
	reconciledomain "github.com/smallbiznis/tally/internal/reconcile/domain"
	"go.uber.org/zap"
)

type eventEnvelope struct {
	Type    string          `json:"type" binding:"required"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// AcceptEvent decodes one event envelope and runs it through the handler.
func (s *Server) AcceptEvent(c *gin.Context) {
	var envelope eventEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		abortWithError(c, errInvalidRequest(err.Error()))
		return
	}

	evt, err := decodeEvent(envelope)
	if err != nil {
		abortWithError(c, errInvalidRequest(err.Error()))
		return
	}

	if err := s.handler.Accept(c.Request.Context(), evt); err != nil {
		var stageErr *handler.Error
		status := http.StatusInternalServerError
		stage := ""
		if errors.As(err, &stageErr) {
			stage = string(stageErr.Stage)
		}
		switch {
		case errors.Is(err, reconciledomain.ErrDuplicateKey):
			status = http.StatusConflict
		case errors.Is(err, reconciledomain.ErrRelationConflict):
			status = http.StatusUnprocessableEntity
		}
		s.log.Warn("event rejected",
			zap.String("kind", envelope.Type),
			zap.String("stage", stage),
			zap.Error(err),
		)
		abortWithStatus(c, status, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func decodeEvent(envelope eventEnvelope) (event.Event, error) {
	switch envelope.Type {
	case event.KindBankTransactionIssued:
		var payload event.BankTransactionIssued
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	case event.KindPaymentAuthorized:
		var payload event.PaymentAuthorized
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	case event.KindPaymentCollected:
		var payload event.PaymentCollected
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	case event.KindProductOrdered:
		var payload event.ProductOrdered
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	default:
		return nil, errUnknownEventType(envelope.Type)
	}
}
