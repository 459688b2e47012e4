package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vidshare/backend/internal/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		wantMsg string
	}{
		{"no rows", sql.ErrNoRows, errs.ErrNotFound, "video not found"},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errs.ErrNotFound, "video not found"},
		{"email unique", &pq.Error{Code: "23505", Constraint: "users_email_key"}, errs.ErrConflict, "Email already in use"},
		{"username unique", &pq.Error{Code: "23505", Constraint: "users_username_key"}, errs.ErrConflict, "Username already taken"},
		{"owner unique", &pq.Error{Code: "23505", Constraint: "channels_owner_id_key"}, errs.ErrConflict, "You already have a channel"},
		{"other", errors.New("connection refused"), errs.ErrInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "video")
			if !errors.Is(got, tt.want) {
				t.Fatalf("mapError() = %v, want kind of %v", got, tt.want)
			}
			var e *errs.Error
			if tt.wantMsg != "" && (!errors.As(got, &e) || e.Message != tt.wantMsg) {
				t.Errorf("unexpected message in %v, want %q", got, tt.wantMsg)
			}
		})
	}

	if mapError(nil, "video") != nil {
		t.Error("mapError(nil) should be nil")
	}
}

func TestLikePattern(t *testing.T) {
	cases := map[string]string{
		"cats":     "%cats%",
		"100%":     `%100\%%`,
		"a_b":      `%a\_b%`,
		`back\sl`:  `%back\\sl%`,
	}
	for in, want := range cases {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseUUIDs(t *testing.T) {
	id := uuid.New()
	got, err := parseUUIDs([]string{id.String()})
	if err != nil || len(got) != 1 || got[0] != id {
		t.Fatalf("parseUUIDs() = %v, %v", got, err)
	}
	if _, err := parseUUIDs([]string{"nope"}); err == nil {
		t.Fatal("expected error for malformed uuid")
	}
	if ids, _ := parseUUIDs(nil); ids == nil {
		t.Fatal("expected empty, non-nil slice")
	}
}
