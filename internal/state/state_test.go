package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yourusername/spaces-cli/internal/models"
)

func sampleTree() *models.Tree {
	return models.NewTree("cycle-1", []models.Space{
		{
			ID:        "1",
			IsFocused: true,
			Windows: []models.Window{
				{ID: "100", AppName: "Safari", Title: "Docs", Workspace: "1", IsFocused: true},
			},
		},
		{ID: "2", Windows: []models.Window{{ID: "200", AppName: "Terminal", Workspace: "2"}}},
	})
}

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tree.json")
	store := NewStore(path)

	if err := store.Save(sampleTree()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if snap == nil || snap.Tree == nil {
		t.Fatal("Load() returned no tree")
	}
	if snap.Version != StateVersion {
		t.Errorf("Version = %d, want %d", snap.Version, StateVersion)
	}
	if snap.LastUpdated.IsZero() {
		t.Error("LastUpdated should be set")
	}

	tree := snap.Tree
	if len(tree.Spaces) != 2 {
		t.Fatalf("len(Spaces) = %d, want 2", len(tree.Spaces))
	}
	if tree.CycleID != "cycle-1" {
		t.Errorf("CycleID = %q, want %q", tree.CycleID, "cycle-1")
	}
	w, s := tree.FindWindow("100")
	if w == nil || s.ID != "1" || !w.IsFocused {
		t.Errorf("FindWindow(100) = %+v in %+v", w, s)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after Save")
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))

	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if snap != nil {
		t.Errorf("Load() = %+v, want nil", snap)
	}

	tree, err := store.LoadTree()
	if err != nil || tree != nil {
		t.Errorf("LoadTree() = %v, %v, want nil, nil", tree, err)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(path).Load(); err == nil {
		t.Error("Load() should fail on a corrupt file")
	}
}

func TestStore_LoadMigratesVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	data := `{"tree":{"cycleId":"old","spaces":[{"id":"1","isFocused":true}]}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	snap, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if snap.Version != StateVersion {
		t.Errorf("Version = %d, want %d", snap.Version, StateVersion)
	}
	if snap.Tree.Spaces[0].Windows == nil {
		t.Error("Windows should be normalized to an empty slice")
	}
}

func TestStore_SaveNil(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "tree.json"))
	if err := store.Save(nil); err == nil {
		t.Error("Save(nil) should fail")
	}
}

func TestStore_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	store := NewStore(path)

	// Reset without a file is fine
	if err := store.Reset(); err != nil {
		t.Errorf("Reset() on missing file error: %v", err)
	}

	if err := store.Save(sampleTree()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("state file should be gone after Reset")
	}
}

func TestNewStore_DefaultPath(t *testing.T) {
	store := NewStore("")
	if store.Path() != GetStatePath() {
		t.Errorf("Path() = %q, want %q", store.Path(), GetStatePath())
	}
	if filepath.Base(store.Path()) != DefaultStateFile {
		t.Errorf("Path() = %q, want file %q", store.Path(), DefaultStateFile)
	}
}
