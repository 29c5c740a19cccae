package auth

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func tokenServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenIsCached(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls)
	cred, err := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 3; i++ {
		tok, err := cred.Token()
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if tok != "token123" {
			t.Fatalf("unexpected token %s", tok)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one token request, got %d", n)
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	if err := cred.SetAuthHeader(req); err != nil {
		t.Fatalf("SetAuthHeader: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer token123" {
		t.Fatalf("unexpected header %q", got)
	}
}

func TestClientAddsBearer(t *testing.T) {
	var calls int32
	tokens := tokenServer(t, &calls)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	cred, err := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", TokenURL: tokens.URL}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	resp, err := cred.Client(nil).Get(api.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestConfValidate(t *testing.T) {
	if err := (Conf{}).Validate(); err != nil {
		t.Fatalf("empty conf should be valid: %v", err)
	}
	if err := (Conf{ClientID: "id"}).Validate(); err == nil {
		t.Fatal("expected error for partial credentials")
	}
	if _, err := NewClientCred(Conf{TokenURL: "http://x"}, nil); err == nil {
		t.Fatal("expected error from NewClientCred")
	}
}
