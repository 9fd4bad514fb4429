package infrastructure

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"synthetic-persona/backend/internal/features/chat/domain"
)

// MultimodalPath is the agent endpoint chat submissions are posted to.
const MultimodalPath = "/chat/multimodal"

// upstreamExcerptBytes bounds how much of a failed upstream body is retained.
const upstreamExcerptBytes = 4 << 10

// maxAgentResponseBytes bounds a successful agent reply held in memory.
const maxAgentResponseBytes = 8 << 20

// AgentClient forwards chat submissions to the upstream multimodal agent.
type AgentClient interface {
	// Forward posts the submission and waits at most deadline for the full
	// response. The returned outcome is never OutcomeBadRequest, OutcomeTooLarge
	// or OutcomeMisconfigured.
	Forward(ctx context.Context, submission *domain.ChatSubmission, deadline time.Duration) domain.Outcome
}

type agentClient struct {
	baseURL string
	http    *http.Client
}

// NewAgentClient creates an AgentClient for the agent at baseURL. The deadline
// passed to Forward is the only timeout applied; the client itself never retries.
func NewAgentClient(baseURL string, httpClient *http.Client) AgentClient {
	if httpClient == nil {
		httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return &agentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *agentClient) Forward(ctx context.Context, submission *domain.ChatSubmission, deadline time.Duration) domain.Outcome {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	outcome := c.forward(ctx, submission)
	outcome.Duration = time.Since(start)
	return outcome
}

func (c *agentClient) forward(ctx context.Context, submission *domain.ChatSubmission) domain.Outcome {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pw.CloseWithError(writeSubmission(writer, submission))
	}()
	// Closing the read side unblocks the encoder if the transport stopped
	// consuming the body early; waiting on done guarantees it has exited.
	defer func() {
		_ = pr.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+MultimodalPath, pr)
	if err != nil {
		return transport(errors.Wrap(err, "building agent request"))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		if isDeadline(ctx) {
			return domain.Outcome{Kind: domain.OutcomeTimeout, Err: err}
		}
		return transport(errors.Wrap(err, "posting to agent"))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, upstreamExcerptBytes))
		if isDeadline(ctx) {
			return domain.Outcome{Kind: domain.OutcomeTimeout, Status: resp.StatusCode, Err: ctx.Err()}
		}
		return domain.Outcome{
			Kind:         domain.OutcomeUpstreamError,
			Status:       resp.StatusCode,
			UpstreamBody: string(excerpt),
			Err:          errors.Errorf("agent returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAgentResponseBytes+1))
	if err != nil {
		if isDeadline(ctx) {
			return domain.Outcome{Kind: domain.OutcomeTimeout, Status: resp.StatusCode, Err: err}
		}
		return transport(errors.Wrap(err, "reading agent response"))
	}
	if len(body) > maxAgentResponseBytes {
		return domain.Outcome{
			Kind:   domain.OutcomeTransport,
			Status: resp.StatusCode,
			Err:    errors.Errorf("agent response exceeds %d bytes", maxAgentResponseBytes),
		}
	}

	if err := validateAgentResponse(body); err != nil {
		return domain.Outcome{Kind: domain.OutcomeTransport, Status: resp.StatusCode, Err: err}
	}

	return domain.Outcome{Kind: domain.OutcomeOK, Status: resp.StatusCode, Body: body}
}

func transport(err error) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeTransport, Err: err}
}

func isDeadline(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// validateAgentResponse checks the body is a JSON object whose agent_response
// is a string. The body itself is passed through untouched.
func validateAgentResponse(body []byte) error {
	if !gjson.ValidBytes(body) {
		return errors.New("agent response is not valid JSON")
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return errors.New("agent response is not a JSON object")
	}
	if parsed.Get("agent_response").Type != gjson.String {
		return errors.New("agent response has no string agent_response")
	}
	return nil
}

// writeSubmission encodes the submission as multipart in receipt order.
func writeSubmission(w *multipart.Writer, s *domain.ChatSubmission) error {
	for _, name := range s.Fields() {
		var err error
		switch name {
		case domain.FieldUserPrompt:
			err = w.WriteField(name, s.UserPrompt)
		case domain.FieldBrandContext:
			err = w.WriteField(name, s.BrandContext)
		case domain.FieldAudienceSummary:
			err = w.WriteField(name, s.AudienceSummary)
		case domain.FieldImage:
			err = writeAttachment(w, name, s.Image)
		case domain.FieldVideo:
			err = writeAttachment(w, name, s.Video)
		}
		if err != nil {
			return errors.Wrapf(err, "writing %s", name)
		}
	}
	return w.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeAttachment(w *multipart.Writer, field string, att *domain.Attachment) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+quoteEscaper.Replace(field)+
		`"; filename="`+quoteEscaper.Replace(att.Filename)+`"`)
	h.Set("Content-Type", att.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, bytes.NewReader(att.Data))
	return err
}
