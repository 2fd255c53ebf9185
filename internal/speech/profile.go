package speech

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRoleProfile reads a YAML role profile, e.g.
//
//	speaker_labels: [Doctor, Patient]
//	speaker_map: {0: Doctor}
//	infer_roles: true
//	doctor_keywords: [prescribe, dosage]
func LoadRoleProfile(path string) (RoleConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RoleConfig{}, fmt.Errorf("read role profile: %w", err)
	}
	var cfg RoleConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return RoleConfig{}, fmt.Errorf("parse role profile %s: %w", path, err)
	}
	return cfg, nil
}
