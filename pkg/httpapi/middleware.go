package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/aminofox/loopcast/pkg/errors"
	"github.com/aminofox/loopcast/pkg/logger"
)

type requestIDKey struct{}

// requestIDMiddleware stamps every request with a correlation id, the
// way the teacher's AuthMiddleware/RateLimiter layer a concern in front
// of the handler without the handler needing to know about it.
func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next(w, r.WithContext(ctx))
	}
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// recoverMiddleware maps a recovered arithmetic-invariant panic (spec
// §7.3: these indicate a startup-validation bug, not a bad request) to a
// 500 response instead of crashing the process, and logs it with the
// error taxonomy's classification when the panic value is one of ours.
func (s *Server) recoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				fields := []logger.Field{
					logger.String("path", r.URL.Path),
					logger.String("request_id", requestID(r)),
					logger.Any("panic", rec),
				}
				if err, ok := rec.(error); ok {
					fields = append(fields, logger.Int("error_code", int(errors.GetErrorCode(err))))
				}
				s.logger.Error("httpapi: recovered panic", fields...)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}
