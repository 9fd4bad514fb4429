package application

import (
	"encoding/json"
	"fmt"
	"net/http"

	"synthetic-persona/backend/internal/features/chat/domain"
)

const jsonContentType = "application/json; charset=utf-8"

// User-visible error messages. No other error text reaches the browser.
const (
	MsgInvalidRequest  = "Invalid request."
	MsgNotConfigured   = "AI agent service is not configured."
	MsgUpstreamFailed  = "Failed to get response from AI agent"
	MsgTimeout         = "Request timeout. Please try again."
	MsgInternalFailure = "Internal server error. Please try again later."
)

// Response is what the edge writes back to the browser.
type Response struct {
	Status      int
	ContentType string
	Headers     map[string]string
	Body        []byte
}

// TooLargeMessage renders the 413 message for the configured limit.
func TooLargeMessage(maxBodyBytes int64) string {
	const mb = 1 << 20
	if maxBodyBytes%mb == 0 {
		return fmt.Sprintf("Request too large. Maximum %dMB.", maxBodyBytes/mb)
	}
	return fmt.Sprintf("Request too large. Maximum %d bytes.", maxBodyBytes)
}

// MapOutcome converts any outcome into the edge response. Every OutcomeKind
// maps to exactly one status and message; unknown kinds are treated as
// internal failures.
func MapOutcome(o domain.Outcome, maxBodyBytes int64) Response {
	switch o.Kind {
	case domain.OutcomeOK:
		return Response{
			Status:      http.StatusOK,
			ContentType: jsonContentType,
			Headers:     map[string]string{"Cache-Control": "no-store"},
			Body:        o.Body,
		}
	case domain.OutcomeTooLarge:
		return errorResponse(http.StatusRequestEntityTooLarge, TooLargeMessage(maxBodyBytes))
	case domain.OutcomeBadRequest:
		return errorResponse(http.StatusBadRequest, MsgInvalidRequest)
	case domain.OutcomeMisconfigured:
		return errorResponse(http.StatusInternalServerError, MsgNotConfigured)
	case domain.OutcomeUpstreamError:
		status := o.Status
		if status < 100 || status > 599 {
			status = http.StatusBadGateway
		}
		return errorResponse(status, MsgUpstreamFailed)
	case domain.OutcomeTimeout:
		return errorResponse(http.StatusGatewayTimeout, MsgTimeout)
	default:
		return errorResponse(http.StatusInternalServerError, MsgInternalFailure)
	}
}

func errorResponse(status int, message string) Response {
	body, _ := json.Marshal(map[string]string{"error": message})
	return Response{Status: status, ContentType: jsonContentType, Body: body}
}
