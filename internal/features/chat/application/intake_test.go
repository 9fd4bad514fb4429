package application

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthetic-persona/backend/internal/features/chat/domain"
)

type formPart struct {
	name        string
	value       string
	filename    string
	contentType string
	data        []byte
}

func textPart(name, value string) formPart {
	return formPart{name: name, value: value}
}

func filePart(name, filename, contentType string, data []byte) formPart {
	return formPart{name: name, filename: filename, contentType: contentType, data: data}
}

func newMultipartRequest(t *testing.T, parts ...formPart) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, p := range parts {
		if p.data == nil && p.filename == "" {
			require.NoError(t, w.WriteField(p.name, p.value))
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.name+`"; filename="`+p.filename+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

var pngPixel = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1}

func TestParseSubmissionTextOnly(t *testing.T) {
	req := newMultipartRequest(t,
		textPart("user_prompt", "Hello"),
		textPart("brand_context", ""),
		textPart("audience_summary", "A general consumer."),
	)

	sub, ierr := ParseSubmission(req, 1<<20)
	require.Nil(t, ierr)
	assert.Equal(t, "Hello", sub.UserPrompt)
	assert.Equal(t, "", sub.BrandContext)
	assert.Equal(t, "A general consumer.", sub.AudienceSummary)
	assert.Nil(t, sub.Image)
	assert.Nil(t, sub.Video)
	assert.Equal(t, []string{"user_prompt", "brand_context", "audience_summary"}, sub.Fields())
}

func TestParseSubmissionAttachments(t *testing.T) {
	req := newMultipartRequest(t,
		textPart("user_prompt", "What do you think?"),
		textPart("brand_context", "Acme soda"),
		filePart("video", "ad.mp4", "video/mp4", []byte("fake-video")),
		filePart("image", "pixel.png", "image/png", pngPixel),
		textPart("campaign_id", "ignored"),
	)

	sub, ierr := ParseSubmission(req, 1<<20)
	require.Nil(t, ierr)

	require.NotNil(t, sub.Image)
	assert.Equal(t, "pixel.png", sub.Image.Filename)
	assert.Equal(t, "image/png", sub.Image.ContentType)
	assert.Equal(t, pngPixel, sub.Image.Data)

	require.NotNil(t, sub.Video)
	assert.Equal(t, "ad.mp4", sub.Video.Filename)
	assert.Equal(t, "video/mp4", sub.Video.ContentType)

	assert.Equal(t, domain.DefaultAudienceSummary, sub.AudienceSummary)
	assert.Equal(t, []string{"user_prompt", "brand_context", "video", "image", "audience_summary"}, sub.Fields())
}

func TestParseSubmissionEmptyFileInputIsAbsent(t *testing.T) {
	req := newMultipartRequest(t,
		textPart("user_prompt", "Hi"),
		filePart("image", "", "application/octet-stream", []byte{}),
	)

	sub, ierr := ParseSubmission(req, 1<<20)
	require.Nil(t, ierr)
	assert.Nil(t, sub.Image)
	assert.NotContains(t, sub.Fields(), "image")
}

func TestParseSubmissionAttachmentDefaults(t *testing.T) {
	req := newMultipartRequest(t,
		textPart("user_prompt", "Hi"),
		filePart("image", "", "", []byte("raw")),
	)

	sub, ierr := ParseSubmission(req, 1<<20)
	require.Nil(t, ierr)
	require.NotNil(t, sub.Image)
	assert.Equal(t, "image", sub.Image.Filename)
	assert.Equal(t, "application/octet-stream", sub.Image.ContentType)
}

func TestParseSubmissionRejections(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		max      int64
		wantKind domain.IntakeErrorKind
	}{
		{
			name: "missing user prompt",
			req: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, textPart("brand_context", "x"))
			},
			max:      1 << 20,
			wantKind: domain.IntakeBadRequest,
		},
		{
			name: "whitespace user prompt",
			req: func(t *testing.T) *http.Request {
				return newMultipartRequest(t, textPart("user_prompt", " \n\t "))
			},
			max:      1 << 20,
			wantKind: domain.IntakeBadRequest,
		},
		{
			name: "two images",
			req: func(t *testing.T) *http.Request {
				return newMultipartRequest(t,
					textPart("user_prompt", "Hi"),
					filePart("image", "a.png", "image/png", pngPixel),
					filePart("image", "b.png", "image/png", pngPixel),
				)
			},
			max:      1 << 20,
			wantKind: domain.IntakeBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"user_prompt":"Hi"}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			max:      1 << 20,
			wantKind: domain.IntakeBadRequest,
		},
		{
			name: "missing boundary",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("garbage"))
				req.Header.Set("Content-Type", "multipart/form-data")
				return req
			},
			max:      1 << 20,
			wantKind: domain.IntakeBadRequest,
		},
		{
			name: "truncated body",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/chat",
					strings.NewReader("--xyz\r\nContent-Disposition: form-data; name=\"user_prompt\"\r\n\r\nHi"))
				req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
				return req
			},
			max:      1 << 20,
			wantKind: domain.IntakeBadRequest,
		},
		{
			name: "declared length over limit",
			req: func(t *testing.T) *http.Request {
				req := newMultipartRequest(t, textPart("user_prompt", "Hi"))
				req.ContentLength = 104857601
				return req
			},
			max:      104857600,
			wantKind: domain.IntakeTooLarge,
		},
		{
			name: "streamed bytes over limit",
			req: func(t *testing.T) *http.Request {
				req := newMultipartRequest(t,
					textPart("user_prompt", "Hi"),
					filePart("video", "big.mp4", "video/mp4", bytes.Repeat([]byte("v"), 4096)),
				)
				// Undeclared length, as with chunked uploads.
				req.ContentLength = -1
				return req
			},
			max:      1024,
			wantKind: domain.IntakeTooLarge,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub, ierr := ParseSubmission(tc.req(t), tc.max)
			assert.Nil(t, sub)
			require.NotNil(t, ierr)
			assert.Equal(t, tc.wantKind, ierr.Kind, ierr.Error())
		})
	}
}

func TestParseSubmissionDeclaredTooLargeLeavesBodyUnread(t *testing.T) {
	body := &countingReader{r: strings.NewReader("irrelevant")}
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	req.ContentLength = 2048

	_, ierr := ParseSubmission(req, 1024)
	require.NotNil(t, ierr)
	assert.Equal(t, domain.IntakeTooLarge, ierr.Kind)
	assert.Zero(t, body.n)
}

type countingReader struct {
	r *strings.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
