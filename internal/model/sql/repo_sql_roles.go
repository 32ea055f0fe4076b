package sql

import (
	"context"
	"fmt"
	"strings"

	"studenthub/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListRoles returns the role reference data in id order.
func (r *GormRepository) ListRoles(ctx context.Context) ([]entity.DbRole, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var roles []entity.DbRole
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRoleByName loads a role by its unique name.
func (r *GormRepository) GetRoleByName(ctx context.Context, name string) (*entity.DbRole, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, entity.ErrNotFound
	}
	var role entity.DbRole
	if err := r.db.WithContext(ctx).Where("name = ?", trimmed).First(&role).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

// EnsureRole creates the role if it does not exist yet.
func (r *GormRepository) EnsureRole(ctx context.Context, name string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("role name is empty")
	}
	var role entity.DbRole
	err := r.db.WithContext(ctx).Where("name = ?", trimmed).FirstOrCreate(&role, entity.DbRole{Name: trimmed}).Error
	return translateError(err)
}

// AssignRole adds an assignment; assigning an already-held role is a no-op.
func (r *GormRepository) AssignRole(ctx context.Context, userID, roleID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 || roleID == 0 {
		return entity.ErrNotFound
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.DbUserRole{UserID: userID, RoleID: roleID}).Error
	return translateError(err)
}

// RevokeRole removes an assignment if present.
func (r *GormRepository) RevokeRole(ctx context.Context, userID, roleID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	return translateError(r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&entity.DbUserRole{}).Error)
}

// ReplaceUserRoles swaps a user's assignments for the named set atomically.
func (r *GormRepository) ReplaceUserRoles(ctx context.Context, userID uint, roleNames []string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return entity.ErrNotFound
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entity.DbUserRole{}).Error; err != nil {
			return err
		}
		return assignRolesByName(tx, userID, roleNames)
	})
	return translateError(err)
}

// RoleNamesForUser returns the raw assignment set, in role id order. The
// guest fallback for display belongs to the authorizer, not the store.
func (r *GormRepository) RoleNamesForUser(ctx context.Context, userID uint) ([]string, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entity.DbRole{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id ASC").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// assignRolesByName resolves names and inserts assignments inside the
// caller's transaction. Unknown role names abort the transaction.
func assignRolesByName(tx *gorm.DB, userID uint, roleNames []string) error {
	for _, name := range roleNames {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		var role entity.DbRole
		if err := tx.Where("name = ?", trimmed).First(&role).Error; err != nil {
			return err
		}
		assignment := entity.DbUserRole{UserID: userID, RoleID: role.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignment).Error; err != nil {
			return err
		}
	}
	return nil
}
