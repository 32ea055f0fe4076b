package sql

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"studenthub/internal/entity"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T, bounds entity.PageBounds) *GormRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&entity.DbUser{},
		&entity.DbRole{},
		&entity.DbUserRole{},
		&entity.DbPost{},
		&entity.DbFile{},
		&entity.DbDiscussion{},
		&entity.DbMessage{},
		&entity.DbStatus{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	repo := NewGormRepository(db, bounds)
	for _, name := range entity.SeedRoleNames {
		if err := repo.EnsureRole(context.Background(), name); err != nil {
			t.Fatalf("failed to seed role %q: %v", name, err)
		}
	}
	return repo
}

func mustCreateUser(t *testing.T, repo *GormRepository, email, username string, active bool, roles ...string) *entity.DbUser {
	t.Helper()
	user := &entity.DbUser{
		Email:        email,
		Username:     username,
		PasswordHash: "x",
		IsActive:     active,
	}
	if err := repo.CreateUser(context.Background(), user, roles); err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

func TestUserLifecycle(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	user := mustCreateUser(t, repo, "a@x.com", "alice", true, "user", "admin")

	loaded, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.ID != user.ID || loaded.Email != "a@x.com" {
		t.Fatalf("unexpected user loaded: %+v", loaded)
	}

	if _, err := repo.GetUserByEmail(ctx, "A@X.COM"); err != nil {
		t.Fatalf("email lookup should be case-insensitive: %v", err)
	}

	names, err := repo.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected two role names, got %v", names)
	}

	if _, err := repo.GetUserByID(ctx, 9999); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	mustCreateUser(t, repo, "a@x.com", "alice", true, "user")

	dup := &entity.DbUser{Email: "a@x.com", Username: "other", PasswordHash: "x", IsActive: true}
	if err := repo.CreateUser(ctx, dup, nil); !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateUserUnknownRoleRollsBack(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	user := &entity.DbUser{Email: "a@x.com", Username: "alice", PasswordHash: "x", IsActive: true}
	if err := repo.CreateUser(ctx, user, []string{"no-such-role"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := repo.GetUserByUsername(ctx, "alice"); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected user insert to be rolled back, got %v", err)
	}
}

func TestDeleteUserRemovesAssignments(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	user := mustCreateUser(t, repo, "b@x.com", "bob", true, "user")

	if err := repo.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.GetUserByID(ctx, user.ID); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	names, err := repo.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no assignments after delete, got %v", names)
	}

	if err := repo.DeleteUser(ctx, user.ID); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListUsersSortAndPage(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	first := mustCreateUser(t, repo, "a@x.com", "a", true, "admin")
	second := mustCreateUser(t, repo, "b@x.com", "b", true, "user")

	params := &entity.UserQuery{BaseParams: entity.BaseParams{
		Page: 1, PageSize: 1, OrderBy: "email", Order: entity.SortAsc,
	}}
	users, meta, err := repo.ListUsers(ctx, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Total != 2 {
		t.Fatalf("expected total 2, got %d", meta.Total)
	}
	if len(users) != 1 || users[0].ID != first.ID {
		t.Fatalf("expected page 1 to hold user %d, got %+v", first.ID, users)
	}

	params.Page = 2
	users, meta, err = repo.ListUsers(ctx, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Total != 2 {
		t.Fatalf("total must not depend on page, got %d", meta.Total)
	}
	if len(users) != 1 || users[0].ID != second.ID {
		t.Fatalf("expected page 2 to hold user %d, got %+v", second.ID, users)
	}
}

func TestListUsersPaginationReassembles(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	emails := []string{"e1@x.com", "e2@x.com", "e3@x.com", "e4@x.com", "e5@x.com"}
	for i, email := range emails {
		mustCreateUser(t, repo, email, email[:2], i%2 == 0, "user")
	}

	seen := make(map[uint]bool)
	var total int64 = -1
	for page := 1; ; page++ {
		users, meta, err := repo.ListUsers(ctx, &entity.UserQuery{BaseParams: entity.BaseParams{
			Page: page, PageSize: 2, OrderBy: "username", Order: entity.SortAsc,
		}})
		if err != nil {
			t.Fatalf("unexpected error on page %d: %v", page, err)
		}
		if total == -1 {
			total = meta.Total
		} else if meta.Total != total {
			t.Fatalf("total changed between pages: %d vs %d", total, meta.Total)
		}
		if len(users) == 0 {
			break
		}
		for _, user := range users {
			if seen[user.ID] {
				t.Fatalf("user %d appeared on two pages", user.ID)
			}
			seen[user.ID] = true
		}
	}
	if int64(len(seen)) != total || len(seen) != len(emails) {
		t.Fatalf("expected %d distinct users across pages, got %d (total %d)", len(emails), len(seen), total)
	}
}

func TestListUsersFilters(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	mustCreateUser(t, repo, "carol@site.org", "carol", true, "admin")
	mustCreateUser(t, repo, "dave@x.com", "dave", false, "user")
	mustCreateUser(t, repo, "erin@x.com", "erin", true)

	// Case-insensitive substring over email and username.
	users, meta, err := repo.ListUsers(ctx, &entity.UserQuery{Keyword: "CAROL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Total != 1 || users[0].Username != "carol" {
		t.Fatalf("expected keyword to match carol, got %+v", users)
	}

	// Role filter walks the assignment join.
	users, _, err = repo.ListUsers(ctx, &entity.UserQuery{Role: "admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 || users[0].Username != "carol" {
		t.Fatalf("expected role filter to return carol, got %+v", users)
	}

	inactive := false
	users, _, err = repo.ListUsers(ctx, &entity.UserQuery{IsActive: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 || users[0].Username != "dave" {
		t.Fatalf("expected is_active filter to return dave, got %+v", users)
	}

	// Unknown sort columns fall back to the default ordering.
	if _, _, err := repo.ListUsers(ctx, &entity.UserQuery{BaseParams: entity.BaseParams{OrderBy: "password_hash; DROP TABLE users"}}); err != nil {
		t.Fatalf("unexpected error for unknown sort field: %v", err)
	}
}

func TestPageBoundsClamping(t *testing.T) {
	repo := newTestRepository(t, entity.PageBounds{Min: 1, Default: 2, Max: 3})
	ctx := context.Background()

	for _, email := range []string{"p1@x.com", "p2@x.com", "p3@x.com", "p4@x.com"} {
		mustCreateUser(t, repo, email, email[:2], true)
	}

	// Oversized request is clamped to max.
	users, meta, err := repo.ListUsers(ctx, &entity.UserQuery{BaseParams: entity.BaseParams{PageSize: 500}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 3 || meta.PageSize != 3 {
		t.Fatalf("expected page size clamped to 3, got %d items (meta %d)", len(users), meta.PageSize)
	}

	// Zero selects the default; negative page floors to 1.
	users, meta, err = repo.ListUsers(ctx, &entity.UserQuery{BaseParams: entity.BaseParams{Page: -4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || meta.Page != 1 {
		t.Fatalf("expected default size 2 on page 1, got %d items (page %d)", len(users), meta.Page)
	}
}

func TestAssignAndRevokeRoles(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	user := mustCreateUser(t, repo, "f@x.com", "frank", true)
	role, err := repo.GetRoleByName(ctx, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.AssignRole(ctx, user.ID, role.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Assigning twice is a no-op, not a conflict.
	if err := repo.AssignRole(ctx, user.ID, role.ID); err != nil {
		t.Fatalf("expected idempotent assign, got %v", err)
	}

	names, err := repo.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 || names[0] != "admin" {
		t.Fatalf("expected [admin], got %v", names)
	}

	if err := repo.RevokeRole(ctx, user.ID, role.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names, err = repo.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no roles after revoke, got %v", names)
	}
}

func TestReplaceUserRoles(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	user := mustCreateUser(t, repo, "g@x.com", "grace", true, "user")

	if err := repo.ReplaceUserRoles(ctx, user.ID, []string{"admin"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names, err := repo.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 || names[0] != "admin" {
		t.Fatalf("expected [admin], got %v", names)
	}

	// Unknown role aborts and keeps the previous set.
	if err := repo.ReplaceUserRoles(ctx, user.ID, []string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
	names, err = repo.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 || names[0] != "admin" {
		t.Fatalf("expected roles unchanged after failed replace, got %v", names)
	}
}

func TestListFilesJoinsOwnerEmail(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	alice := mustCreateUser(t, repo, "alice@x.com", "alice", true, "user")
	bob := mustCreateUser(t, repo, "bob@y.org", "bob", true, "user")

	files := []entity.DbFile{
		{OwnerID: alice.ID, ObjectName: "u1/notes.txt", Filename: "notes.txt", Size: 10},
		{OwnerID: alice.ID, ObjectName: "u1/big.pdf", Filename: "big.pdf", Size: 300},
		{OwnerID: bob.ID, ObjectName: "u2/draft.doc", Filename: "draft.doc", Size: 20},
	}
	for i := range files {
		if err := repo.CreateFile(ctx, &files[i]); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}

	// Keyword matches the owning user's email through the declared join.
	listed, meta, err := repo.ListFiles(ctx, &entity.FileQuery{Keyword: "y.org"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Total != 1 || listed[0].Filename != "draft.doc" || listed[0].OwnerEmail != "bob@y.org" {
		t.Fatalf("expected bob's file with owner email, got %+v", listed)
	}

	// Keyword also matches the filename.
	listed, _, err = repo.ListFiles(ctx, &entity.FileQuery{Keyword: "NOTES"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 1 || listed[0].Filename != "notes.txt" {
		t.Fatalf("expected filename match, got %+v", listed)
	}

	// Owner filter plus size sort.
	listed, _, err = repo.ListFiles(ctx, &entity.FileQuery{
		OwnerID:    alice.ID,
		BaseParams: entity.BaseParams{OrderBy: "size", Order: entity.SortDesc},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 2 || listed[0].Filename != "big.pdf" {
		t.Fatalf("expected alice's files largest first, got %+v", listed)
	}
}

func TestListFilesByOwner(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	owner := mustCreateUser(t, repo, "h@x.com", "henry", true)
	other := mustCreateUser(t, repo, "i@x.com", "iris", true)

	if err := repo.CreateFile(ctx, &entity.DbFile{OwnerID: owner.ID, ObjectName: "a", Filename: "a.txt"}); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := repo.CreateFile(ctx, &entity.DbFile{OwnerID: other.ID, ObjectName: "b", Filename: "b.txt"}); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	listed, meta, err := repo.ListFilesByOwner(ctx, owner.ID, entity.BaseParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Total != 1 || listed[0].Filename != "a.txt" {
		t.Fatalf("expected only the owner's file, got %+v", listed)
	}
}

func TestPublicPostListing(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	author := mustCreateUser(t, repo, "j@x.com", "judy", true)
	posts := []entity.DbPost{
		{AuthorID: author.ID, Title: "public", Content: "x", IsPublic: true},
		{AuthorID: author.ID, Title: "private", Content: "x", IsPublic: false},
	}
	for i := range posts {
		if err := repo.CreatePost(ctx, &posts[i]); err != nil {
			t.Fatalf("failed to create post: %v", err)
		}
	}

	listed, meta, err := repo.ListPublicPosts(ctx, entity.BaseParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Total != 1 || listed[0].Title != "public" {
		t.Fatalf("expected only the public post, got %+v", listed)
	}
}

func TestMessageRequiresDiscussion(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	author := mustCreateUser(t, repo, "k@x.com", "kate", true)

	err := repo.CreateMessage(ctx, &entity.DbMessage{DiscussionID: 42, AuthorID: author.ID, Body: "hi"})
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing discussion, got %v", err)
	}

	discussion := &entity.DbDiscussion{Title: "general", CreatedBy: author.ID}
	if err := repo.CreateDiscussion(ctx, discussion); err != nil {
		t.Fatalf("failed to create discussion: %v", err)
	}
	err = repo.CreateMessage(ctx, &entity.DbMessage{DiscussionID: discussion.ID, AuthorID: author.ID, Body: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatusHistory(t *testing.T) {
	repo := newTestRepository(t, entity.DefaultPageBounds())
	ctx := context.Background()

	user := mustCreateUser(t, repo, "l@x.com", "liam", true)
	for _, text := range []string{"first", "second"} {
		if err := repo.CreateStatus(ctx, &entity.DbStatus{UserID: user.ID, Text: text}); err != nil {
			t.Fatalf("failed to create status: %v", err)
		}
	}

	listed, meta, err := repo.ListStatusesForUser(ctx, user.ID, entity.BaseParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Total != 2 {
		t.Fatalf("expected two statuses, got %d", meta.Total)
	}
	// Equal timestamps fall back to ascending id, so with the default
	// descending sort the later insert may tie; both must still be present.
	if len(listed) != 2 {
		t.Fatalf("expected both statuses, got %+v", listed)
	}
}
