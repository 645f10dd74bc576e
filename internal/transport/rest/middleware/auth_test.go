package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"echoreport/internal/model"

	"github.com/stretchr/testify/assert"
)

type stubTokens map[string]string

func (s stubTokens) ValidateToken(token string) (*model.ClinicianClaims, error) {
	id, ok := s[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &model.ClinicianClaims{ClinicianID: id}, nil
}

func TestRequireClinician(t *testing.T) {
	mw := NewAuthMiddleware(stubTokens{"good": "clinician_1"})
	var seen string
	h := mw.RequireClinician(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClinicianID(r.Context())
	}))

	cases := []struct {
		name   string
		method string
		header string
		want   int
		id     string
	}{
		{"valid token", http.MethodGet, "Bearer good", http.StatusOK, "clinician_1"},
		{"scheme is case insensitive", http.MethodGet, "bearer good", http.StatusOK, "clinician_1"},
		{"missing header", http.MethodGet, "", http.StatusUnauthorized, ""},
		{"wrong scheme", http.MethodGet, "Basic good", http.StatusUnauthorized, ""},
		{"unknown token", http.MethodGet, "Bearer bad", http.StatusUnauthorized, ""},
		{"preflight skips auth", http.MethodOptions, "", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(tc.method, "/v1/sessions", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, tc.id, seen)
		})
	}
}
