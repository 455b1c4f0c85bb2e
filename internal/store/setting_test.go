package store

import (
	"errors"
	"testing"
)

func TestSettingRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("enabled"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() missing key error = %v, want ErrNotFound", err)
	}

	if err := repo.Set("enabled", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("enabled", "false"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	v, err := repo.Get("enabled")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v != "false" {
		t.Errorf("Get() = %q, want false", v)
	}
}
