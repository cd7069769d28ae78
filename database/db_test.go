package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestGetConfig_FallsBackToDefault(t *testing.T) {
	store := newTestStore(t)

	cfg, err := store.GetConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig().CompanyName, cfg.CompanyName)
	assert.NotEmpty(t, cfg.Roles)
	assert.NotEmpty(t, cfg.SidebarMenu)
}

func TestSaveConfig_Roundtrip(t *testing.T) {
	store := newTestStore(t)

	cfg := DefaultConfig()
	cfg.CompanyName = "Acme Internal"
	require.NoError(t, store.SaveConfig(cfg))

	loaded, err := store.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "Acme Internal", loaded.CompanyName)
	assert.Len(t, loaded.SidebarMenu, len(cfg.SidebarMenu))
}

func TestUserDocuments(t *testing.T) {
	store := newTestStore(t)

	missing, err := store.GetUser("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	u := &User{ID: "u1", Username: "ana", Name: "Ana", Role: RoleUser, Email: "ana@example.com"}
	require.NoError(t, store.SaveUser(u))

	loaded, err := store.GetUser("u1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "ana", loaded.Username)

	u.Name = "Ana B"
	require.NoError(t, store.SaveUser(u))
	users, err := store.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana B", users[0].Name)

	require.NoError(t, store.DeleteUser("u1"))
	gone, err := store.GetUser("u1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSaveProject_LastWriteWins(t *testing.T) {
	store := newTestStore(t)

	base := Project{
		ID:    "p1",
		Title: "Board",
		Items: []Ticket{{ID: "t1", Title: "Original", Data: map[string]any{"status": "To Do"}}},
	}
	require.NoError(t, store.SaveProject(&base))

	// Two writers load the same document and save conflicting edits.
	first, err := store.GetProject("p1")
	require.NoError(t, err)
	second, err := store.GetProject("p1")
	require.NoError(t, err)

	first.Items[0].Title = "Edited by first"
	first.Items = append(first.Items, Ticket{ID: "t2", Title: "Added by first"})
	require.NoError(t, store.SaveProject(first))

	second.Items[0].Title = "Edited by second"
	require.NoError(t, store.SaveProject(second))

	// The second writer's whole document replaces the first's: the added
	// ticket is gone. No merge happens.
	final, err := store.GetProject("p1")
	require.NoError(t, err)
	require.Len(t, final.Items, 1)
	assert.Equal(t, "Edited by second", final.Items[0].Title)
}

func TestFindProjectByItem(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveProject(&Project{ID: "p1", Items: []Ticket{{ID: "t1"}}}))
	require.NoError(t, store.SaveProject(&Project{ID: "p2", Items: []Ticket{{ID: "t2"}}}))

	found, err := store.FindProjectByItem("t2")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "p2", found.ID)

	none, err := store.FindProjectByItem("t9")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSeed_Idempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Seed())

	users, err := store.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, len(SeedUsers()))

	projects, err := store.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 1)

	// A second seed with existing users is a no-op.
	require.NoError(t, store.DeleteProject(projects[0].ID))
	require.NoError(t, store.Seed())
	projects, err = store.ListProjects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}
