package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func issueAndExtract(t *testing.T, m *Manager, id Identity) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	if err := m.Issue(rec, id); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("Issue did not set the session cookie")
	return nil
}

func TestIssueAndFromRequest(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	want := Identity{UserID: 42, Username: "alice"}

	cookie := issueAndExtract(t, m, want)

	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.AddCookie(cookie)

	got, err := m.FromRequest(r)
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if got != want {
		t.Errorf("FromRequest = %+v, want %+v", got, want)
	}
}

func TestFromRequestNoCookie(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	if _, err := m.FromRequest(r); err == nil {
		t.Error("FromRequest without a cookie succeeded")
	}
}

func TestFromRequestTamperedCookie(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	cookie := issueAndExtract(t, m, Identity{UserID: 1, Username: "alice"})

	cookie.Value += "x"
	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.AddCookie(cookie)

	if _, err := m.FromRequest(r); err == nil {
		t.Error("FromRequest accepted a tampered cookie")
	}
}

func TestFromRequestWrongSecret(t *testing.T) {
	issuer := NewManager("secret-one", time.Hour)
	verifier := NewManager("secret-two", time.Hour)

	cookie := issueAndExtract(t, issuer, Identity{UserID: 1, Username: "alice"})
	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.AddCookie(cookie)

	if _, err := verifier.FromRequest(r); err == nil {
		t.Error("FromRequest accepted a cookie signed with another secret")
	}
}

func TestClear(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	rec := httptest.NewRecorder()
	m.Clear(rec)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Clear did not expire the session cookie")
	}
}

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetFlash(rec, "Login successful")

	var flash *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashName {
			flash = c
		}
	}
	if flash == nil {
		t.Fatal("SetFlash did not set the flash cookie")
	}

	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	r.AddCookie(flash)

	rec2 := httptest.NewRecorder()
	if got := PopFlash(rec2, r); got != "Login successful" {
		t.Errorf("PopFlash = %q, want %q", got, "Login successful")
	}

	var expired bool
	for _, c := range rec2.Result().Cookies() {
		if c.Name == flashName && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Error("PopFlash did not clear the flash cookie")
	}
}

func TestPopFlashEmpty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	rec := httptest.NewRecorder()
	if got := PopFlash(rec, r); got != "" {
		t.Errorf("PopFlash with no cookie = %q, want empty", got)
	}
}
