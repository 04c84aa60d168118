package security

import (
	"net/http"

	"github.com/noah-isme/backend-tour/internal/common"
)

// BodyLimit caps request payloads at Max bytes.
type BodyLimit struct {
	Max int64
}

// Middleware rejects declared oversize bodies with 413 and wraps the rest in
// http.MaxBytesReader so decoders fail once Max is crossed.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	if b.Max <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > b.Max {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "Dữ liệu gửi lên quá lớn")
			return
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		}
		next.ServeHTTP(w, r)
	})
}
