package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"synthetic-persona/backend/internal/config"
	"synthetic-persona/backend/internal/features/chat/domain"
	"synthetic-persona/backend/internal/features/chat/infrastructure"
	"synthetic-persona/backend/internal/metrics"
)

// ChatService handles one browser chat request end to end.
type ChatService interface {
	// Handle answers within the upstream deadline, measured from receipt and
	// covering both intake and forwarding. w is used to bound body reads.
	Handle(ctx context.Context, w http.ResponseWriter, r *http.Request) domain.Outcome
	// Respond maps an outcome to the browser response.
	Respond(o domain.Outcome) Response
}

type chatService struct {
	cfg    *config.EdgeConfig
	client infrastructure.AgentClient
}

// NewChatService creates a ChatService. client may be nil when the agent URL
// is not configured.
func NewChatService(cfg *config.EdgeConfig, client infrastructure.AgentClient) ChatService {
	return &chatService{cfg: cfg, client: client}
}

func (s *chatService) Handle(ctx context.Context, w http.ResponseWriter, r *http.Request) domain.Outcome {
	logger := log.WithField("request", r.Method+" "+r.URL.Path)
	logger.WithField("state", domain.StateReceived).Debug("chat request received")

	start := time.Now()
	outcome := s.handle(ctx, w, r, start.Add(s.cfg.UpstreamDeadline), logger)
	elapsed := time.Since(start)
	logOutcome(logger.WithField("elapsed", elapsed), outcome)
	metrics.ObserveChatOutcome(string(outcome.Kind), elapsed)
	return outcome
}

func (s *chatService) handle(ctx context.Context, w http.ResponseWriter, r *http.Request, deadline time.Time, logger *log.Entry) domain.Outcome {
	// Only the header is consulted here, so the misconfiguration answer still
	// never depends on the body.
	if r.ContentLength > s.cfg.MaxBodyBytes {
		return domain.OutcomeFromIntake(tooLarge("declared content length exceeds limit", nil))
	}
	if !s.cfg.AgentConfigured() || s.client == nil {
		return domain.Outcome{Kind: domain.OutcomeMisconfigured, Err: s.cfg.AgentURLErr}
	}

	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	release := boundIntake(ctx, w, r, deadline)
	submission, intakeErr := ParseSubmission(r, s.cfg.MaxBodyBytes)
	release()
	if intakeErr != nil {
		switch {
		case !time.Now().Before(deadline):
			return domain.Outcome{Kind: domain.OutcomeTimeout, Err: intakeErr}
		case ctx.Err() != nil:
			return domain.Outcome{Kind: domain.OutcomeTransport, Err: ctx.Err()}
		}
		return domain.OutcomeFromIntake(intakeErr)
	}
	logger.WithFields(log.Fields{
		"state":     domain.StateParsed,
		"fields":    submission.Fields(),
		"has_image": submission.Image != nil,
		"has_video": submission.Video != nil,
	}).Debug("chat submission accepted")

	logger.WithField("state", domain.StateForwarded).Debug("forwarding to agent")
	return s.client.Forward(ctx, submission, time.Until(deadline))
}

func (s *chatService) Respond(o domain.Outcome) Response {
	return MapOutcome(o, s.cfg.MaxBodyBytes)
}

func logOutcome(logger *log.Entry, o domain.Outcome) {
	entry := logger.WithFields(log.Fields{
		"state":             o.TerminalState(),
		"outcome":           o.Kind,
		"upstream_duration": o.Duration,
	})
	if o.Status != 0 {
		entry = entry.WithField("upstream_status", o.Status)
	}

	switch o.Kind {
	case domain.OutcomeOK:
		entry.Info("chat request completed")
	case domain.OutcomeTooLarge, domain.OutcomeBadRequest:
		entry.WithError(o.Err).Info("chat submission rejected")
	case domain.OutcomeMisconfigured:
		entry.WithError(o.Err).Error("AI agent service is not configured")
	case domain.OutcomeUpstreamError:
		entry.WithField("upstream_body", o.UpstreamBody).Error("error from agent")
	case domain.OutcomeTimeout:
		entry.WithError(o.Err).Warn("chat request timed out")
	case domain.OutcomeTransport:
		if errors.Is(o.Err, context.Canceled) {
			entry.WithError(o.Err).Warn("client went away before the agent answered")
			return
		}
		entry.WithError(o.Err).WithField("stack", fmt.Sprintf("%+v", o.Err)).Error("chat request failed")
	default:
		entry.WithError(o.Err).WithField("stack", fmt.Sprintf("%+v", o.Err)).Error("chat request failed")
	}
}
