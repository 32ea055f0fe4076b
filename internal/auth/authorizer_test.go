package auth

import (
	"context"
	"errors"
	"testing"

	"studenthub/internal/entity"
)

type fakeAccountStore struct {
	users    map[uint]*entity.DbUser
	roles    map[uint][]string
	userErr  error
	rolesErr error
}

func (f *fakeAccountStore) GetUserByID(_ context.Context, id uint) (*entity.DbUser, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return user, nil
}

func (f *fakeAccountStore) RoleNamesForUser(_ context.Context, id uint) ([]string, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles[id], nil
}

func newFakeStore() *fakeAccountStore {
	return &fakeAccountStore{
		users: map[uint]*entity.DbUser{
			1: {ID: 1, Username: "alice", IsActive: true},
			2: {ID: 2, Username: "bob", IsActive: true},
			3: {ID: 3, Username: "carol", IsActive: false},
		},
		roles: map[uint][]string{
			1: {"user", "admin"},
			3: {"admin"},
		},
	}
}

func TestAuthorizeRoleIntersection(t *testing.T) {
	authz := NewAuthorizer(newFakeStore(), "admin")

	decision, err := authz.Authorize(context.Background(), 1, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected admin to be allowed, denied with %q", decision.Reason)
	}

	decision, err = authz.Authorize(context.Background(), 2, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonInsufficientRole {
		t.Fatalf("expected insufficient_role denial, got %+v", decision)
	}
}

func TestAuthorizeNeverGrantsOnEmptyAssignments(t *testing.T) {
	// User 2 has zero assignments; the display-only guest fallback must not
	// satisfy any required role, including "guest" itself.
	authz := NewAuthorizer(newFakeStore(), "admin")

	for _, required := range [][]string{{"admin"}, {"user"}, {entity.DefaultRoleName}} {
		decision, err := authz.Authorize(context.Background(), 2, required...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if decision.Allowed {
			t.Fatalf("expected denial for required=%v", required)
		}
	}
}

func TestAuthorizeDeniesInactiveBeforeRoles(t *testing.T) {
	// User 3 holds the admin role but is deactivated.
	authz := NewAuthorizer(newFakeStore(), "admin")

	decision, err := authz.Authorize(context.Background(), 3, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonInactiveAccount {
		t.Fatalf("expected inactive_account denial, got %+v", decision)
	}
}

func TestAuthorizeTargetSelfForbidden(t *testing.T) {
	authz := NewAuthorizer(newFakeStore(), "admin")

	decision, err := authz.AuthorizeTarget(context.Background(), 1, 1, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonSelfTargetForbidden {
		t.Fatalf("expected self_target_forbidden denial, got %+v", decision)
	}

	decision, err = authz.AuthorizeTarget(context.Background(), 1, 2, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected delete of another user to be allowed, got %+v", decision)
	}
}

func TestAuthorizeFailsClosed(t *testing.T) {
	store := newFakeStore()
	store.rolesErr = errors.New("store unavailable")
	authz := NewAuthorizer(store, "admin")

	decision, err := authz.Authorize(context.Background(), 1, "admin")
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if decision.Allowed {
		t.Fatal("lookup failure must deny")
	}

	store = newFakeStore()
	store.userErr = errors.New("store unavailable")
	authz = NewAuthorizer(store, "admin")
	decision, err = authz.Authorize(context.Background(), 1, "admin")
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if decision.Allowed {
		t.Fatal("account lookup failure must deny")
	}
}

func TestAuthorizeUnknownActorDenied(t *testing.T) {
	authz := NewAuthorizer(newFakeStore(), "admin")
	decision, err := authz.Authorize(context.Background(), 99, "admin")
	if err != nil {
		t.Fatalf("missing account is a plain denial, got error %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected denial for unknown actor")
	}
}

func TestRolesForDefaultsToGuest(t *testing.T) {
	authz := NewAuthorizer(newFakeStore(), "admin")

	roles, err := authz.RolesFor(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roles) != 1 || roles[0] != entity.DefaultRoleName {
		t.Fatalf("expected [%s], got %v", entity.DefaultRoleName, roles)
	}

	roles, err = authz.RolesFor(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("expected two assigned roles, got %v", roles)
	}
}

func TestNewAuthorizerDefaultsRoleName(t *testing.T) {
	authz := NewAuthorizer(newFakeStore(), "  ")
	if authz.AdminRole() != "admin" {
		t.Fatalf("expected default admin role, got %q", authz.AdminRole())
	}
}
