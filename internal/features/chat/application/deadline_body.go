package application

import (
	"context"
	"io"
	"net/http"
	"time"
)

// boundIntake makes inbound body reads fail once deadline passes. The
// connection read deadline is used when the writer exposes it; otherwise the
// body is wrapped so reads return when ctx ends. The returned release clears
// the connection deadline once the body has been consumed.
func boundIntake(ctx context.Context, w http.ResponseWriter, r *http.Request, deadline time.Time) (release func()) {
	if w != nil {
		rc := http.NewResponseController(w)
		if err := rc.SetReadDeadline(deadline); err == nil {
			return func() { _ = rc.SetReadDeadline(time.Time{}) }
		}
	}
	r.Body = newDeadlineBody(ctx, r.Body)
	return func() {}
}

type readResult struct {
	n   int
	err error
}

// deadlineBody returns ctx.Err() from Read as soon as ctx ends. A read that is
// cut off keeps running until the underlying body yields, and the body is not
// read again after that.
type deadlineBody struct {
	ctx       context.Context
	body      io.ReadCloser
	buf       []byte
	results   chan readResult
	abandoned bool
}

func newDeadlineBody(ctx context.Context, body io.ReadCloser) *deadlineBody {
	return &deadlineBody{ctx: ctx, body: body, results: make(chan readResult, 1)}
}

func (b *deadlineBody) Read(p []byte) (int, error) {
	if b.abandoned {
		return 0, b.ctx.Err()
	}
	if err := b.ctx.Err(); err != nil {
		return 0, err
	}

	if cap(b.buf) < len(p) {
		b.buf = make([]byte, len(p))
	}
	buf := b.buf[:len(p)]
	go func() {
		n, err := b.body.Read(buf)
		b.results <- readResult{n: n, err: err}
	}()

	select {
	case res := <-b.results:
		copy(p, buf[:res.n])
		return res.n, res.err
	case <-b.ctx.Done():
		b.abandoned = true
		return 0, b.ctx.Err()
	}
}

func (b *deadlineBody) Close() error {
	return b.body.Close()
}
