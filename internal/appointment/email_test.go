package appointment

import (
	"strings"
	"testing"
)

func TestComposeFillsTemplate(t *testing.T) {
	email := Compose(" Follow-up in 2 weeks ", "Rest; follow-up in 2 weeks")
	if email.Subject != "Medical Appointment Confirmation" {
		t.Fatalf("unexpected subject: %q", email.Subject)
	}
	for _, want := range []string{
		"Dear Patient,",
		"APPOINTMENT DETAILS:\nFollow-up in 2 weeks\n",
		"FULL TREATMENT PLAN:\nRest; follow-up in 2 weeks\n",
		"• Please arrive 15 minutes early for check-in",
		"Best regards,\nMedical Team",
		"This is an automated message. Please do not reply to this email.",
	} {
		if !strings.Contains(email.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, email.Body)
		}
	}
	if again := Compose(" Follow-up in 2 weeks ", "Rest; follow-up in 2 weeks"); again != email {
		t.Fatalf("compose is not deterministic")
	}
}
