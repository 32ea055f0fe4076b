package model

import (
	"context"
	"strings"

	"studenthub/internal/entity"
)

// SeedDefaultRoles ensures the reference roles exist. Roles are static data
// created once; existing rows are left untouched. The configured privileged
// role is included so a renamed admin role is seeded as well.
func SeedDefaultRoles(ctx context.Context, repo Repository, adminRole string) error {
	if repo == nil {
		return nil
	}

	names := make([]string, 0, len(entity.SeedRoleNames)+1)
	names = append(names, entity.SeedRoleNames...)
	if trimmed := strings.TrimSpace(adminRole); trimmed != "" && !containsName(names, trimmed) {
		names = append(names, trimmed)
	}

	for _, name := range names {
		if err := repo.EnsureRole(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func containsName(names []string, name string) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}
	return false
}
