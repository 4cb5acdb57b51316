package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/commercemobile/storefront-admin/internal/transport/middleware"
)

var _ = Describe("RequestLogger", func() {
	var (
		buf     *bytes.Buffer
		handler http.Handler
	)

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"token":"response-secret"}`))
	})

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		lg := slog.New(slog.NewJSONHandler(buf, nil))
		handler = middleware.RequestLogger(lg)(okHandler)
	})

	It("redacts credentials in the request body and headers", func() {
		body := strings.NewReader(`{"email":"a@b.com","password":"Secret123!","code":"123456"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		req.Header.Set("Content-Type", "application/json")

		handler.ServeHTTP(httptest.NewRecorder(), req)

		logged := buf.String()
		Expect(logged).To(ContainSubstring("a@b.com"))
		Expect(logged).To(ContainSubstring("[REDACTED]"))
		Expect(logged).NotTo(ContainSubstring("Secret123!"))
		Expect(logged).NotTo(ContainSubstring("123456"))
		Expect(logged).NotTo(ContainSubstring("abc.def.ghi"))
	})

	It("never logs the response body", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		Expect(buf.String()).NotTo(ContainSubstring("response-secret"))
	})

	It("logs the response status and size", func() {
		teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short"))
		})
		lg := slog.New(slog.NewJSONHandler(buf, nil))
		wrapped := middleware.RequestLogger(lg)(teapot)

		wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		logged := buf.String()
		Expect(logged).To(ContainSubstring(`"status_code":418`))
		Expect(logged).To(ContainSubstring(`"response_size":5`))
	})

	It("leaves the body readable for the next handler", func() {
		var seen string
		echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data := make([]byte, 64)
			n, _ := r.Body.Read(data)
			seen = string(data[:n])
		})
		lg := slog.New(slog.NewJSONHandler(buf, nil))
		wrapped := middleware.RequestLogger(lg)(echo)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/user-groups", strings.NewReader(`{"name":"Support"}`))
		wrapped.ServeHTTP(httptest.NewRecorder(), req)

		Expect(seen).To(Equal(`{"name":"Support"}`))
	})
})
