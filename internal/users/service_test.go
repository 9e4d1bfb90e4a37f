package users

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/otka-dev/otka-backend/pkg/db/models"
	"github.com/otka-dev/otka-backend/pkg/enums"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
)

type stubRepo struct {
	users    map[string]*models.User
	upserted []*models.User
	findErr  error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Upsert(ctx context.Context, user *models.User) error {
	s.upserted = append(s.upserted, user)
	return nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	user, ok := s.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestLookupMapsMissingRowToNotFound(t *testing.T) {
	svc := newTestService(t, &stubRepo{users: map[string]*models.User{}})

	_, err := svc.Lookup(context.Background(), "ghost@example.ro")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupReturnsAccount(t *testing.T) {
	repo := &stubRepo{users: map[string]*models.User{
		"partner@example.ro": {Email: "partner@example.ro", Role: enums.UserRolePartner, Active: true},
	}}
	svc := newTestService(t, repo)

	user, err := svc.Lookup(context.Background(), "partner@example.ro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "partner@example.ro" || !user.Active {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUpdateRejectsUnknownRole(t *testing.T) {
	svc := newTestService(t, &stubRepo{users: map[string]*models.User{}})

	bogus := enums.UserRole("superuser")
	_, err := svc.Update(context.Background(), UpdateInput{Email: "a@b.ro", Role: &bogus})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateAppliesRoleAndActiveFlags(t *testing.T) {
	repo := &stubRepo{users: map[string]*models.User{
		"partner@example.ro": {Email: "partner@example.ro", Role: enums.UserRolePartner, Active: true},
	}}
	svc := newTestService(t, repo)

	admin := enums.UserRoleAdmin
	inactive := false
	user, err := svc.Update(context.Background(), UpdateInput{
		Email:  "partner@example.ro",
		Role:   &admin,
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != enums.UserRoleAdmin || user.Active {
		t.Fatalf("flags not applied: %+v", user)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
}

func TestUpdateUnknownUserIsNotFound(t *testing.T) {
	svc := newTestService(t, &stubRepo{users: map[string]*models.User{}})

	_, err := svc.Update(context.Background(), UpdateInput{Email: "ghost@example.ro"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
