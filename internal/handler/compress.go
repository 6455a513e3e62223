package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5/middleware"
)

const compressLevel = 5

var compressibleTypes = []string{"application/json", "text/plain"}

// newCompressor encodes JSON and text bodies with brotli, falling back to
// gzip and deflate.
func newCompressor() *middleware.Compressor {
	c := middleware.NewCompressor(compressLevel, compressibleTypes...)
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

// dropRefusedEncodings removes codings weighted q=0 from Accept-Encoding.
// The compressor matches coding names only and would otherwise pick them.
func dropRefusedEncodings(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Accept-Encoding"); header != "" {
			if accepted := acceptedEncodings(header); accepted != "" {
				r.Header.Set("Accept-Encoding", accepted)
			} else {
				r.Header.Del("Accept-Encoding")
			}
		}
		next.ServeHTTP(w, r)
	})
}

func acceptedEncodings(header string) string {
	var kept []string
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(part, ";")
		name = strings.TrimSpace(name)
		if name == "" || refused(params) {
			continue
		}
		kept = append(kept, name)
	}
	return strings.Join(kept, ", ")
}

func refused(params string) bool {
	for _, p := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(p, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return err == nil && q == 0
	}
	return false
}
