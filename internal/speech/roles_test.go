package speech

import "testing"

func seg(id int, text string) Segment {
	return newSegment(intPtr(id), floatPtr(0), floatPtr(1), text)
}

func TestResolveRolesHeuristicTwoSpeakers(t *testing.T) {
	segs := []Segment{
		seg(1, "My head has pain and a fever."),
		seg(0, "Please take this tablet twice daily."),
	}
	roles, out := ResolveRoles(segs, DefaultRoleConfig())
	if roles[0] != RoleDoctor || roles[1] != RolePatient {
		t.Fatalf("unexpected roles: %v", roles)
	}
	if out[0].SpeakerLabel != RolePatient || out[1].SpeakerLabel != RoleDoctor {
		t.Fatalf("unexpected labels: %q %q", out[0].SpeakerLabel, out[1].SpeakerLabel)
	}
	if segs[0].SpeakerLabel != "Speaker 1" {
		t.Fatalf("input mutated: %q", segs[0].SpeakerLabel)
	}
}

func TestResolveRolesTieMakesFirstSeenPatient(t *testing.T) {
	segs := []Segment{seg(2, "Okay."), seg(5, "Alright."), seg(2, "Sure.")}
	roles, _ := ResolveRoles(segs, DefaultRoleConfig())
	if roles[2] != RolePatient || roles[5] != RoleDoctor {
		t.Fatalf("tie-break: got=%v want 2=Patient 5=Doctor", roles)
	}
}

func TestResolveRolesLabelsAndExplicitMap(t *testing.T) {
	segs := []Segment{seg(0, "Hello."), seg(1, "Hi."), seg(2, "I have a cough.")}

	roles, _ := ResolveRoles(segs, RoleConfig{Labels: []string{"Clinician", "Parent"}})
	if roles[0] != "Clinician" || roles[1] != "Parent" {
		t.Fatalf("labels: got=%v", roles)
	}
	if _, ok := roles[2]; ok {
		t.Fatalf("id 2 should stay unresolved without inference: %v", roles)
	}

	roles, out := ResolveRoles(segs, RoleConfig{
		ExplicitMap: map[int]string{0: "Nurse"},
		Labels:      []string{"Doctor", "Patient"},
		InferRoles:  true,
	})
	if roles[0] != "Nurse" || roles[1] != "Patient" || roles[2] != RolePatient {
		t.Fatalf("explicit over labels: got=%v", roles)
	}
	if out[0].SpeakerLabel != "Nurse" {
		t.Fatalf("unexpected label: %q", out[0].SpeakerLabel)
	}
}

func TestResolveRolesManySpeakersIndependent(t *testing.T) {
	segs := []Segment{
		seg(0, "Please take this tablet."),
		seg(1, "My cough is bad."),
		seg(2, "Okay."),
	}
	roles, _ := ResolveRoles(segs, DefaultRoleConfig())
	want := RoleMap{0: RoleDoctor, 1: RolePatient, 2: RoleDoctor}
	for id, role := range want {
		if roles[id] != role {
			t.Fatalf("speaker %d: got=%q want=%q", id, roles[id], role)
		}
	}
}

func TestResolveRolesLeavesUntaggedSegments(t *testing.T) {
	flat := []Segment{newSegment(nil, nil, nil, "I feel sick.")}
	roles, out := ResolveRoles(flat, DefaultRoleConfig())
	if len(roles) != 0 || out[0].SpeakerLabel != "Speaker" {
		t.Fatalf("got roles=%v label=%q", roles, out[0].SpeakerLabel)
	}
}

func TestWantsDoctorPatient(t *testing.T) {
	cases := []struct {
		name string
		cfg  RoleConfig
		want bool
	}{
		{"infer", RoleConfig{InferRoles: true}, true},
		{"labels", RoleConfig{Labels: []string{"patient", "Doctor"}}, true},
		{"explicit", RoleConfig{ExplicitMap: map[int]string{3: "Doctor"}}, true},
		{"other labels", RoleConfig{Labels: []string{"A", "B"}}, false},
		{"empty", RoleConfig{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.WantsDoctorPatient(); got != tc.want {
				t.Fatalf("got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestParseSpeakerConfig(t *testing.T) {
	labels := ParseSpeakerLabels(" Doctor, ,Patient ")
	if len(labels) != 2 || labels[0] != "Doctor" || labels[1] != "Patient" {
		t.Fatalf("labels: got=%v", labels)
	}
	m := ParseSpeakerMap("0=Doctor, 1 = Patient ,x=Nurse,2=,bogus")
	if len(m) != 2 || m[0] != "Doctor" || m[1] != "Patient" {
		t.Fatalf("map: got=%v", m)
	}
}
