package infra

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"
)

func newPNGServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		img := imaging.New(64, 64, color.NRGBA{R: 247, G: 147, B: 26, A: 255})
		w.Header().Set("Content-Type", "image/png")
		if err := imaging.Encode(w, img, imaging.PNG); err != nil {
			t.Errorf("encode failed: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestIconDownloader_DownloadAndResize(t *testing.T) {
	var hits atomic.Int32
	server := newPNGServer(t, &hits)

	d, err := NewIconDownloader(t.TempDir())
	if err != nil {
		t.Fatalf("NewIconDownloader failed: %v", err)
	}

	path, err := d.DownloadIcon(context.Background(), "bitcoin", server.URL+"/bitcoin.png")
	if err != nil {
		t.Fatalf("DownloadIcon failed: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("failed to open cached icon: %v", err)
	}
	if b := img.Bounds(); b.Dx() != IconSize || b.Dy() != IconSize {
		t.Errorf("Expected %dx%d icon, got %dx%d", IconSize, IconSize, b.Dx(), b.Dy())
	}

	// Second call is a cache hit
	if _, err := d.DownloadIcon(context.Background(), "bitcoin", server.URL+"/bitcoin.png"); err != nil {
		t.Fatalf("cached DownloadIcon failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("Expected 1 download, got %d", hits.Load())
	}
}

func TestIconDownloader_RejectsTraversal(t *testing.T) {
	d, err := NewIconDownloader(t.TempDir())
	if err != nil {
		t.Fatalf("NewIconDownloader failed: %v", err)
	}

	if _, err := d.DownloadIcon(context.Background(), "../..", "http://example.invalid/x.png"); err == nil {
		t.Error("Expected error for id without safe characters")
	}
	if got := d.GetIconPath("../../etc/passwd"); filepath.Base(got) != "etcpasswd.png" {
		t.Errorf("Unexpected sanitized path %s", got)
	}
}

func TestIconDownloader_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	d, _ := NewIconDownloader(dir)
	if _, err := d.DownloadIcon(context.Background(), "ghost", server.URL); err == nil {
		t.Error("Expected error on 404")
	}
	if _, err := os.Stat(d.GetIconPath("ghost")); !os.IsNotExist(err) {
		t.Error("No file should be written on failure")
	}
}
