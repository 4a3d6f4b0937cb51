package objectstore

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"cat.png", false},
		{"photo_01-final.jpeg", false},
		{"", true},
		{"..", true},
		{".hidden", true},
		{"../etc/passwd", true},
		{"a/b.png", true},
		{"space name.png", true},
	}
	for _, tt := range tests {
		_, err := CleanName(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("CleanName(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidName) {
			t.Errorf("CleanName(%q) error = %v, want ErrInvalidName", tt.in, err)
		}
	}
}

func TestDiskStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	obj, err := s.Put(ctx, "b.png", strings.NewReader("png-bytes"), 9, "image/png")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if obj.Size != 9 || obj.ContentType != "image/png" {
		t.Errorf("Put() = %+v", obj)
	}
	if _, err := s.Put(ctx, "a.jpg", strings.NewReader("jpg"), 3, "image/jpeg"); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "a.jpg" || list[1].Name != "b.png" {
		t.Errorf("List() = %+v", list)
	}

	rc, got, err := s.Get(ctx, "b.png")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "png-bytes" || got.Name != "b.png" {
		t.Errorf("Get() = %q, %+v", body, got)
	}

	if err := s.Delete(ctx, "b.png"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := s.Get(ctx, "b.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "b.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Put(ctx, "../escape.png", strings.NewReader("x"), 1, "image/png"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Put(traversal) error = %v", err)
	}
}

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		in           string
		wantEndpoint string
		wantSecure   bool
		wantErr      bool
	}{
		{"minio:9000", "minio:9000", false, false},
		{"http://minio:9000", "minio:9000", false, false},
		{"https://minio:9000", "minio:9000", true, false},
		{"http://minio:9000/", "minio:9000", false, false},
		{"http://minio:9000/foo", "", false, true},
		{"", "", false, true},
	}

	for _, tt := range tests {
		ep, secure, err := NormaliseEndpoint(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for input %q", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.in, err)
		}
		if ep != tt.wantEndpoint || secure != tt.wantSecure {
			t.Fatalf("NormaliseEndpoint(%q) = (%q,%v), want (%q,%v)", tt.in, ep, secure, tt.wantEndpoint, tt.wantSecure)
		}
	}
}

// TestMinioStore runs against a real server when ODA_TEST_MINIO_ENDPOINT is set.
func TestMinioStore(t *testing.T) {
	endpoint := os.Getenv("ODA_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("ODA_TEST_MINIO_ENDPOINT not set")
	}
	ctx := context.Background()
	s, err := NewMinioStore(ctx, endpoint,
		os.Getenv("ODA_TEST_MINIO_ACCESS_KEY"), os.Getenv("ODA_TEST_MINIO_SECRET_KEY"), "oda-test")
	if err != nil {
		t.Fatalf("NewMinioStore() error = %v", err)
	}

	if _, err := s.Put(ctx, "hello.txt", strings.NewReader("hello"), 5, "text/plain"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	rc, obj, err := s.Get(ctx, "hello.txt")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "hello" || obj.Size != 5 {
		t.Errorf("Get() = %q, %+v", body, obj)
	}
	if err := s.Delete(ctx, "hello.txt"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "hello.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}
