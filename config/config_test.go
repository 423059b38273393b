package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/viant/descmatch/match"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg, err := p.Configuration()
	if err != nil {
		t.Fatalf("Configuration failed: %v", err)
	}
	if cfg != match.DefaultConfiguration() {
		t.Fatalf("Configuration() = %v, want %v", cfg, match.DefaultConfiguration())
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	doc := "matching:\n  ratio_threshold: 0.6\n  top_n: 30\nindex:\n  seed: 42\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Matching.RatioThreshold != 0.6 || p.Matching.TopN != 30 || p.Index.Seed != 42 {
		t.Fatalf("Load = %+v, want ratio 0.6 topN 30 seed 42", p)
	}
	if p.Matching.Trees != match.DefaultTreesCount || p.Matching.SearchBudget != match.DefaultSearchBudget {
		t.Fatalf("unset fields lost their defaults: %+v", p.Matching)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "params.yaml")
	want := Default()
	want.Database = "/tmp/features.sqlite"
	want.Matching.Trees = 8
	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}

func TestConfiguration_Invalid(t *testing.T) {
	p := Default()
	p.Matching.RatioThreshold = 1.5
	if _, err := p.Configuration(); !errors.Is(err, match.ErrConfiguration) {
		t.Fatalf("Configuration(ratio 1.5) = %v, want ErrConfiguration", err)
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("matching: [1, 2"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load(malformed) succeeded, want error")
	}
}
