package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eulaly/discoin-backend/internal/access"
)

func TestBlockKind(t *testing.T) {
	cases := []struct {
		query    string
		expected string
		wantErr  bool
	}{
		{"", access.KindWrite, false},
		{"?kind=write", access.KindWrite, false},
		{"?kind=import", access.KindImport, false},
		{"?kind=read", "", true},
		{"?kind=WRITE", "", true},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/admin/blocked/mallory"+tc.query, nil)
		kind, err := blockKind(req)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("blockKind(%q): expected error", tc.query)
			}
			continue
		}
		if err != nil {
			t.Fatalf("blockKind(%q): %v", tc.query, err)
		}
		if kind != tc.expected {
			t.Fatalf("blockKind(%q) = %q, want %q", tc.query, kind, tc.expected)
		}
	}
}

func TestHandleBlockUser_InvalidKind(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/blocked/mallory?kind=everything", nil)
	req.SetPathValue("user", "mallory")
	rr := httptest.NewRecorder()
	s.handleBlockUser(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", rr.Code)
	}
}

func TestHandleUnblockUser_InvalidKind(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/blocked/mallory?kind=everything", nil)
	req.SetPathValue("user", "mallory")
	rr := httptest.NewRecorder()
	s.handleUnblockUser(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", rr.Code)
	}
}
