package access

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
)

func TestCheck(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	ch := Channel{&models.Channel{OwnerID: owner}}
	v := Video{&models.Video{UploaderID: owner}}
	cm := Comment{&models.Comment{AuthorID: owner}}

	tests := []struct {
		name      string
		res       Resource
		requester uuid.UUID
		rel       Relation
		allowed   bool
	}{
		{"channel owner", ch, owner, Owner, true},
		{"channel stranger", ch, other, Owner, false},
		{"channel wrong relation", ch, owner, Author, false},
		{"video uploader", v, owner, Uploader, true},
		{"video stranger", v, other, Uploader, false},
		{"comment author", cm, owner, Author, true},
		{"comment stranger", cm, other, Author, false},
		{"anonymous", ch, uuid.Nil, Owner, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.res, tt.requester, tt.rel)
			if tt.allowed && err != nil {
				t.Fatalf("expected access, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, errs.ErrForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		})
	}
}
