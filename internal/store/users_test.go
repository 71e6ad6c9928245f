package store

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterThenAuthenticate(t *testing.T) {
	conn := newTestDB(t)
	users := NewUserStore(conn)
	ctx := context.Background()

	id, err := users.Register(ctx, "alice", "alice@x.com", "pw123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id <= 0 {
		t.Fatalf("Register returned id %d, want > 0", id)
	}

	u, err := users.Authenticate(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Authenticate after Register: %v", err)
	}
	if u.ID != id || u.Username != "alice" || u.Email != "alice@x.com" {
		t.Errorf("Authenticate returned %+v, want id=%d username=alice", u, id)
	}
	if u.Password == "pw123" {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	conn := newTestDB(t)
	users := NewUserStore(conn)
	ctx := context.Background()

	cases := [][3]string{
		{"", "a@x.com", "pw"},
		{"a", "", "pw"},
		{"a", "a@x.com", ""},
	}
	for _, c := range cases {
		if _, err := users.Register(ctx, c[0], c[1], c[2]); !errors.Is(err, ErrMissingFields) {
			t.Errorf("Register(%q, %q, %q) = %v, want ErrMissingFields", c[0], c[1], c[2], err)
		}
	}

	if n := countRows(t, conn, "users"); n != 0 {
		t.Errorf("users table has %d rows, want 0", n)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	conn := newTestDB(t)
	users := NewUserStore(conn)
	ctx := context.Background()

	if _, err := users.Register(ctx, "alice", "alice@x.com", "pw123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := users.Register(ctx, "alice", "other@x.com", "pw123"); !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("duplicate username = %v, want ErrDuplicateUsername", err)
	}
	if _, err := users.Register(ctx, "bob", "alice@x.com", "pw123"); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate email = %v, want ErrDuplicateEmail", err)
	}

	if n := countRows(t, conn, "users"); n != 1 {
		t.Errorf("users table has %d rows after duplicate attempts, want 1", n)
	}
}

func TestAuthenticateNoEnumeration(t *testing.T) {
	conn := newTestDB(t)
	users := NewUserStore(conn)
	ctx := context.Background()

	if _, err := users.Register(ctx, "alice", "alice@x.com", "pw123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// wrong password and unknown username must be indistinguishable
	_, errWrongPw := users.Authenticate(ctx, "alice", "nope")
	_, errUnknown := users.Authenticate(ctx, "mallory", "nope")

	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", errWrongPw)
	}
	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown user = %v, want ErrInvalidCredentials", errUnknown)
	}
}

func TestFindByUsername(t *testing.T) {
	conn := newTestDB(t)
	users := NewUserStore(conn)
	ctx := context.Background()

	if _, err := users.Register(ctx, "alice", "alice@x.com", "pw123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	u, err := users.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("FindByUsername returned %q, want alice", u.Username)
	}

	if _, err := users.FindByUsername(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown username = %v, want ErrUserNotFound", err)
	}
}
