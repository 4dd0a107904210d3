package app

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"coin_dash/internal/domain"

	"github.com/disintegration/imaging"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	content := "storage:\n" +
		"  db_path: " + filepath.Join(dir, "app.db") + "\n" +
		"  assets_dir: " + filepath.Join(dir, "icons") + "\n" +
		"logging:\n" +
		"  dir: " + filepath.Join(dir, "logs") + "\n" +
		"ui:\n" +
		"  theme: light\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestBootstrap_Initialize(t *testing.T) {
	dir := t.TempDir()
	b := NewBootstrap()
	if err := b.Initialize(writeConfig(t, dir), nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer b.Close()

	if b.Client == nil || b.Watchlist == nil || b.Theme == nil || b.Bus == nil {
		t.Fatal("Expected every component to be initialized")
	}
	if b.Theme.Theme() != domain.ThemeLight {
		t.Errorf("Expected configured light theme, got %s", b.Theme.Theme())
	}
	if _, err := os.Stat(filepath.Join(dir, "app.db")); err != nil {
		t.Errorf("Expected database file, got %v", err)
	}
}

func TestBootstrap_SyncAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := imaging.New(64, 64, color.NRGBA{R: 247, G: 147, B: 26, A: 255})
		w.Header().Set("Content-Type", "image/png")
		imaging.Encode(w, img, imaging.PNG)
	}))
	defer server.Close()

	dir := t.TempDir()
	b := NewBootstrap()
	if err := b.Initialize(writeConfig(t, dir), nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer b.Close()

	for _, id := range []string{"bitcoin", "ethereum"} {
		if err := b.Watchlist.Add(domain.MarketCoin{ID: id, Name: id, Image: server.URL + "/" + id + ".png"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	b.Watchlist.Add(domain.MarketCoin{ID: "noimage", Name: "No Image"})

	b.SyncAssets(context.Background())

	for _, e := range b.Watchlist.Entries() {
		if e.ID == "noimage" {
			if e.IconPath != "" {
				t.Errorf("Expected no icon for entry without image, got %q", e.IconPath)
			}
			continue
		}
		if e.IconPath != filepath.Join(dir, "icons", e.ID+".png") {
			t.Errorf("Unexpected icon path for %s: %q", e.ID, e.IconPath)
		}
		if _, err := os.Stat(e.IconPath); err != nil {
			t.Errorf("Expected icon file for %s: %v", e.ID, err)
		}
	}
}
