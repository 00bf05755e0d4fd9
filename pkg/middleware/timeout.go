package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// timeoutWriter buffers headers so the handler goroutine never touches the
// real header map once the timeout response has been sent. Nothing reaches
// the client after ctx expires.
type timeoutWriter struct {
	ctx      context.Context
	w        http.ResponseWriter
	header   http.Header
	mu       sync.Mutex
	timedOut bool
	written  bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) expiredLocked() bool {
	if !tw.timedOut && tw.ctx.Err() != nil {
		tw.timedOut = true
	}
	return tw.timedOut
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.written || tw.expiredLocked() {
		return
	}
	dst := tw.w.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	tw.written = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.expiredLocked() {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}

// RequestTimeout bounds each request. Services see the deadline through the
// request context and give up lock waits and store calls when it passes.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			tw := &timeoutWriter{ctx: ctx, w: w, header: make(http.Header)}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
			case <-ctx.Done():
			}

			tw.mu.Lock()
			defer tw.mu.Unlock()
			// Both channels can be ready at once; the deadline decides.
			if tw.ctx.Err() == nil {
				return
			}
			if !tw.written {
				writeError(w, http.StatusGatewayTimeout, `{"error":"Request timeout","code":"TIMEOUT"}`)
			}
			tw.timedOut = true
		})
	}
}
