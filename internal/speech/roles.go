package speech

import (
	"strconv"
	"strings"
)

const (
	RoleDoctor  = "Doctor"
	RolePatient = "Patient"
)

// DefaultDoctorKeywords mark clinical-action language.
var DefaultDoctorKeywords = []string{
	"prescribe", "medication", "take", "dosage", "follow-up", "schedule",
	"diagnosis", "assessment", "plan", "capsule", "tablet", "appointment",
	"antibiotic", "syrup", "recommend", "review", "visit", "emergency",
}

// DefaultPatientKeywords mark first-person symptom and complaint language.
// Trailing spaces are significant.
var DefaultPatientKeywords = []string{
	"i ", "my ", "me ", "feel", "pain", "fever", "cough", "can i", "should i",
	"i'll", "i am", "i have", "symptom", "book",
}

// RoleConfig drives role resolution for one deployment. It is passed per
// call; nothing here is process-global.
type RoleConfig struct {
	// ExplicitMap fixes speaker ids to roles.
	ExplicitMap map[int]string `yaml:"speaker_map"`
	// Labels names speakers positionally: Labels[id].
	Labels []string `yaml:"speaker_labels"`
	// InferRoles enables keyword scoring for ids left unresolved.
	InferRoles      bool     `yaml:"infer_roles"`
	DoctorKeywords  []string `yaml:"doctor_keywords"`
	PatientKeywords []string `yaml:"patient_keywords"`
}

// DefaultRoleConfig infers Doctor/Patient with the built-in keyword lists.
func DefaultRoleConfig() RoleConfig {
	return RoleConfig{InferRoles: true}
}

// WantsDoctorPatient reports whether unresolved ids should be scored.
func (c RoleConfig) WantsDoctorPatient() bool {
	if c.InferRoles {
		return true
	}
	var doctor, patient bool
	for _, l := range c.Labels {
		switch strings.ToLower(strings.TrimSpace(l)) {
		case "doctor":
			doctor = true
		case "patient":
			patient = true
		}
	}
	if doctor && patient {
		return true
	}
	for _, role := range c.ExplicitMap {
		if strings.Contains(role, RoleDoctor) || strings.Contains(role, RolePatient) {
			return true
		}
	}
	return false
}

func (c RoleConfig) doctorKeywords() []string {
	if len(c.DoctorKeywords) > 0 {
		return c.DoctorKeywords
	}
	return DefaultDoctorKeywords
}

func (c RoleConfig) patientKeywords() []string {
	if len(c.PatientKeywords) > 0 {
		return c.PatientKeywords
	}
	return DefaultPatientKeywords
}

// RoleMap maps speaker ids to roles for one transcript.
type RoleMap map[int]string

type roleScore struct {
	doctor  int
	patient int
}

// ResolveRoles computes a fresh RoleMap and returns relabeled copies of the
// segments. Resolution order: explicit map, positional labels, then keyword
// scoring for whatever remains (when enabled). Ids left unresolved keep
// their default label.
func ResolveRoles(segments []Segment, cfg RoleConfig) (RoleMap, []Segment) {
	ids := speakerOrder(segments)
	roles := RoleMap{}

	for _, id := range ids {
		if role, ok := cfg.ExplicitMap[id]; ok && strings.TrimSpace(role) != "" {
			roles[id] = strings.TrimSpace(role)
			continue
		}
		if id >= 0 && id < len(cfg.Labels) && strings.TrimSpace(cfg.Labels[id]) != "" {
			roles[id] = strings.TrimSpace(cfg.Labels[id])
		}
	}

	unresolved := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := roles[id]; !ok {
			unresolved = append(unresolved, id)
		}
	}
	if len(unresolved) > 0 && cfg.WantsDoctorPatient() {
		for id, role := range inferRoles(segments, unresolved, cfg) {
			roles[id] = role
		}
	}

	out := make([]Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		if seg.SpeakerID == nil {
			continue
		}
		if role, ok := roles[*seg.SpeakerID]; ok {
			out[i].SpeakerLabel = role
		}
	}
	return roles, out
}

// inferRoles scores ids in first-seen order. With exactly two ids the larger
// doctor margin wins; a tie makes the first-seen id the Patient. Otherwise
// each id is Doctor when doctor >= patient.
func inferRoles(segments []Segment, ids []int, cfg RoleConfig) RoleMap {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	scores := make(map[int]*roleScore, len(ids))
	for _, id := range ids {
		scores[id] = &roleScore{}
	}
	doctorKW, patientKW := cfg.doctorKeywords(), cfg.patientKeywords()
	for _, seg := range segments {
		if seg.SpeakerID == nil || !want[*seg.SpeakerID] {
			continue
		}
		s := scores[*seg.SpeakerID]
		s.doctor += countKeywords(seg.Text, doctorKW)
		s.patient += countKeywords(seg.Text, patientKW)
	}

	out := RoleMap{}
	if len(ids) == 2 {
		a, b := ids[0], ids[1]
		marginA := scores[a].doctor - scores[a].patient
		marginB := scores[b].doctor - scores[b].patient
		if marginA > marginB {
			out[a], out[b] = RoleDoctor, RolePatient
		} else {
			out[a], out[b] = RolePatient, RoleDoctor
		}
		return out
	}
	for _, id := range ids {
		if scores[id].doctor >= scores[id].patient {
			out[id] = RoleDoctor
		} else {
			out[id] = RolePatient
		}
	}
	return out
}

// countKeywords counts keywords contained in text, each at most once.
func countKeywords(text string, keywords []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}

func speakerOrder(segments []Segment) []int {
	seen := map[int]bool{}
	out := []int{}
	for _, seg := range segments {
		if seg.SpeakerID == nil || seen[*seg.SpeakerID] {
			continue
		}
		seen[*seg.SpeakerID] = true
		out = append(out, *seg.SpeakerID)
	}
	return out
}

// ParseSpeakerLabels parses "Doctor,Patient" into a positional list.
func ParseSpeakerLabels(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseSpeakerMap parses "0=Doctor,1=Patient". Malformed pairs are skipped.
func ParseSpeakerMap(raw string) map[int]string {
	out := map[int]string{}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || strings.TrimSpace(v) == "" {
			continue
		}
		out[id] = strings.TrimSpace(v)
	}
	return out
}
