package auth

import (
	"context"
	"errors"
	"strings"

	"studenthub/internal/entity"
)

// Denial reasons surfaced to clients alongside a 403.
const (
	ReasonInsufficientRole    = "insufficient_role"
	ReasonInactiveAccount     = "inactive_account"
	ReasonSelfTargetForbidden = "self_target_forbidden"
)

// AccountStore is the slice of the repository the authorizer needs.
type AccountStore interface {
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	RoleNamesForUser(ctx context.Context, userID uint) ([]string, error)
}

// Decision is an allow/deny outcome. Reason is set only on denial.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorizer is the single privilege gate. Every privileged operation goes
// through it; role checks are never re-derived per endpoint.
type Authorizer struct {
	store     AccountStore
	adminRole string
}

// NewAuthorizer creates the gate with the canonical privileged role name.
func NewAuthorizer(store AccountStore, adminRole string) *Authorizer {
	adminRole = strings.TrimSpace(adminRole)
	if adminRole == "" {
		adminRole = "admin"
	}
	return &Authorizer{store: store, adminRole: adminRole}
}

// AdminRole returns the canonical privileged role name.
func (a *Authorizer) AdminRole() string {
	return a.adminRole
}

// RolesFor resolves the display role set for a user. An account without
// assignments reports the implicit guest role; that default exists for
// display only and is never consulted by Authorize.
func (a *Authorizer) RolesFor(ctx context.Context, userID uint) ([]string, error) {
	names, err := a.store.RoleNamesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []string{entity.DefaultRoleName}, nil
	}
	return names, nil
}

// Authorize decides whether the actor may perform an operation requiring any
// of the given roles. The active flag is checked before roles and any lookup
// failure denies: authorization always fails closed.
func (a *Authorizer) Authorize(ctx context.Context, actorID uint, required ...string) (Decision, error) {
	user, err := a.store.GetUserByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return deny(ReasonInsufficientRole), nil
		}
		return deny(ReasonInsufficientRole), err
	}
	if !user.IsActive {
		return deny(ReasonInactiveAccount), nil
	}
	if len(required) == 0 {
		return allow(), nil
	}

	// Raw assignments, without the display-only guest fallback.
	names, err := a.store.RoleNamesForUser(ctx, actorID)
	if err != nil {
		return deny(ReasonInsufficientRole), err
	}
	held := make(map[string]struct{}, len(names))
	for _, name := range names {
		held[name] = struct{}{}
	}
	for _, want := range required {
		if _, ok := held[want]; ok {
			return allow(), nil
		}
	}
	return deny(ReasonInsufficientRole), nil
}

// AuthorizeTarget is Authorize plus the self-protection rule for destructive
// operations: an actor may never target its own account, regardless of role.
func (a *Authorizer) AuthorizeTarget(ctx context.Context, actorID, targetID uint, required ...string) (Decision, error) {
	if actorID == targetID {
		return deny(ReasonSelfTargetForbidden), nil
	}
	return a.Authorize(ctx, actorID, required...)
}

// RequireAdmin gates an operation on the canonical privileged role.
func (a *Authorizer) RequireAdmin(ctx context.Context, actorID uint) (Decision, error) {
	return a.Authorize(ctx, actorID, a.adminRole)
}
