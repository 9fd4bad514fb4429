package application

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"synthetic-persona/backend/internal/features/chat/domain"
)

const defaultAttachmentType = "application/octet-stream"

func badRequest(reason string, err error) *domain.IntakeError {
	return &domain.IntakeError{Kind: domain.IntakeBadRequest, Reason: reason, Err: err}
}

func tooLarge(reason string, err error) *domain.IntakeError {
	return &domain.IntakeError{Kind: domain.IntakeTooLarge, Reason: reason, Err: err}
}

// ParseSubmission reads a multipart/form-data chat submission. A declared
// Content-Length above maxBodyBytes is rejected without touching the body; an
// undeclared or understated length is enforced while streaming. File parts are
// held in memory only, so each in-flight request may hold up to maxBodyBytes.
// Unknown fields are skipped.
func ParseSubmission(r *http.Request, maxBodyBytes int64) (*domain.ChatSubmission, *domain.IntakeError) {
	if r.ContentLength > maxBodyBytes {
		return nil, tooLarge("declared content length exceeds limit", nil)
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, badRequest("content type is not multipart/form-data", err)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, badRequest("malformed multipart body", err)
	}

	sub := &domain.ChatSubmission{}
	seen := map[string]bool{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, classifyReadError("reading multipart part", err)
		}

		name := part.FormName()
		switch name {
		case domain.FieldUserPrompt, domain.FieldBrandContext, domain.FieldAudienceSummary:
			data, err := io.ReadAll(part)
			if err != nil {
				return nil, classifyReadError("reading field "+name, err)
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			sub.FieldOrder = append(sub.FieldOrder, name)
			switch name {
			case domain.FieldUserPrompt:
				sub.UserPrompt = string(data)
			case domain.FieldBrandContext:
				sub.BrandContext = string(data)
			case domain.FieldAudienceSummary:
				sub.AudienceSummary = string(data)
			}
		case domain.FieldImage, domain.FieldVideo:
			data, err := io.ReadAll(part)
			if err != nil {
				return nil, classifyReadError("reading file "+name, err)
			}
			// Browsers send an empty, unnamed part for an unused file input.
			if len(data) == 0 {
				continue
			}
			if seen[name] {
				return nil, badRequest("more than one "+name+" part", nil)
			}
			seen[name] = true
			sub.FieldOrder = append(sub.FieldOrder, name)

			att := &domain.Attachment{
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Data:        data,
			}
			if att.Filename == "" {
				att.Filename = name
			}
			if att.ContentType == "" {
				att.ContentType = defaultAttachmentType
			}
			if name == domain.FieldImage {
				sub.Image = att
			} else {
				sub.Video = att
			}
		}
		_ = part.Close()
	}

	if strings.TrimSpace(sub.UserPrompt) == "" {
		return nil, badRequest("user_prompt is required", nil)
	}
	if strings.TrimSpace(sub.AudienceSummary) == "" {
		sub.AudienceSummary = domain.DefaultAudienceSummary
	}

	return sub, nil
}

func classifyReadError(reason string, err error) *domain.IntakeError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return tooLarge("body exceeds limit", err)
	}
	return badRequest(reason, err)
}
