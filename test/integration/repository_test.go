//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxmgr/internal/database"
	"boxmgr/internal/model"
	"boxmgr/internal/repository"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, url, database.Options{MaxConns: 8, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))

	// Each test starts from an empty dataset.
	_, err = db.Pool.Exec(ctx, "TRUNCATE users, categories, boxes, items, box_items, settings RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return db
}

func TestLastAdminGuard(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db.Pool)

	admin, err := users.Create(ctx, "admin", "$2a$10$hash", true)
	require.NoError(t, err)
	regular, err := users.Create(ctx, "bob", "$2a$10$hash", false)
	require.NoError(t, err)

	t.Run("sole admin cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, users.Delete(ctx, admin.ID), model.ErrLastAdmin)
	})

	t.Run("sole admin cannot be demoted", func(t *testing.T) {
		demote := false
		err := users.Update(ctx, admin.ID, model.UserUpdate{IsAdmin: &demote})
		assert.ErrorIs(t, err, model.ErrLastAdmin)
	})

	t.Run("admin removable once another exists", func(t *testing.T) {
		promote := true
		require.NoError(t, users.Update(ctx, regular.ID, model.UserUpdate{IsAdmin: &promote}))
		assert.NoError(t, users.Delete(ctx, admin.ID))
	})
}

func TestLastAdminGuardUnderConcurrentRemovals(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db.Pool)

	// The race window is narrow, so hammer it: each round races deletes
	// and demotions of every admin and checks that exactly one survives.
	const rounds = 25
	const admins = 4

	for round := 0; round < rounds; round++ {
		_, err := db.Pool.Exec(ctx, "TRUNCATE users RESTART IDENTITY CASCADE")
		require.NoError(t, err)

		ids := make([]int64, 0, admins)
		for i := 0; i < admins; i++ {
			u, err := users.Create(ctx, fmt.Sprintf("admin%d", i), "$2a$10$hash", true)
			require.NoError(t, err)
			ids = append(ids, u.ID)
		}

		errs := make(chan error, admins)
		for i, id := range ids {
			go func(i int, id int64) {
				if i%2 == 0 {
					errs <- users.Delete(ctx, id)
					return
				}
				demote := false
				errs <- users.Update(ctx, id, model.UserUpdate{IsAdmin: &demote})
			}(i, id)
		}

		var refused int
		for i := 0; i < admins; i++ {
			if err := <-errs; err != nil {
				require.ErrorIs(t, err, model.ErrLastAdmin)
				refused++
			}
		}

		remaining, err := users.CountAdmins(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, remaining, "round %d: exactly one admin must survive", round)
		assert.Equal(t, 1, refused, "round %d: exactly one removal must be refused", round)
	}
}

func TestCaseInsensitiveUsernames(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db.Pool)

	_, err := users.Create(ctx, "Alice", "$2a$10$hash", false)
	require.NoError(t, err)

	_, err = users.Create(ctx, "alice", "$2a$10$hash", false)
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	found, err := users.FindByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Username)
}

func TestInventoryFlow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	categories := repository.NewCategoryRepository(db.Pool)
	boxes := repository.NewBoxRepository(db.Pool)
	items := repository.NewItemRepository(db.Pool)

	kitchen, err := categories.Create(ctx, "Kitchen", "#ff0000")
	require.NoError(t, err)

	box, err := boxes.Create(ctx, model.CreateBoxRequest{
		Number: 1, Name: "Pots and pans", CategoryID: kitchen.ID,
	})
	require.NoError(t, err)

	t.Run("category with boxes cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, categories.Delete(ctx, kitchen.ID), model.ErrCategoryInUse)
	})

	t.Run("adding the same item accumulates quantity", func(t *testing.T) {
		first, err := items.AddToBox(ctx, box.ID, "Frying pan", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Quantity)

		second, err := items.AddToBox(ctx, box.ID, "frying pan", 2)
		require.NoError(t, err)
		assert.Equal(t, 3, second.Quantity)
	})

	t.Run("bulk add skips items already present", func(t *testing.T) {
		added, err := items.AddNamesToBox(ctx, box.ID, []string{"Frying pan", "Ladle"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Ladle"}, added)
	})

	t.Run("search finds items with category context", func(t *testing.T) {
		results, err := items.Search(ctx, "pan")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Frying pan", results[0].ItemName)
		assert.Equal(t, "Kitchen", results[0].CategoryName)
	})

	t.Run("box delete cascades its contents", func(t *testing.T) {
		require.NoError(t, boxes.Delete(ctx, box.ID))
		assert.NoError(t, categories.Delete(ctx, kitchen.ID))
	})
}

func TestSettingsUpsert(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	settings := repository.NewSettingRepository(db.Pool)

	value, err := settings.GetValue(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, settings.Set(ctx, "anthropic_api_key", "sk-1", "vision key"))
	require.NoError(t, settings.Set(ctx, "anthropic_api_key", "sk-2", "vision key"))

	value, err = settings.GetValue(ctx, "anthropic_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-2", value)
}
