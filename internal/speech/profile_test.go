package speech

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoleProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	body := "speaker_labels: [Doctor, Patient]\nspeaker_map:\n  2: Nurse\ninfer_roles: true\ndoctor_keywords: [inhaler]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadRoleProfile(path)
	if err != nil {
		t.Fatalf("LoadRoleProfile: %v", err)
	}
	if len(cfg.Labels) != 2 || cfg.ExplicitMap[2] != "Nurse" || !cfg.InferRoles {
		t.Fatalf("unexpected profile: %+v", cfg)
	}
	if kw := cfg.doctorKeywords(); len(kw) != 1 || kw[0] != "inhaler" {
		t.Fatalf("doctor keywords: got=%v", kw)
	}
	if kw := cfg.patientKeywords(); len(kw) != len(DefaultPatientKeywords) {
		t.Fatalf("patient keywords should default: got=%d", len(kw))
	}
}

func TestLoadRoleProfileMissing(t *testing.T) {
	if _, err := LoadRoleProfile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
