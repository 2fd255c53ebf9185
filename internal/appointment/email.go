package appointment

import (
	"strings"
	"text/template"
)

const Subject = "Medical Appointment Confirmation"

// Email is a composed appointment confirmation.
type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var bodyTemplate = template.Must(template.New("appointment").Parse(`Dear Patient,

This is a confirmation of your upcoming medical appointment based on your recent consultation.

APPOINTMENT DETAILS:
{{.Appointment}}

FULL TREATMENT PLAN:
{{.Plan}}

IMPORTANT REMINDERS:
• Please arrive 15 minutes early for check-in
• Bring your ID and insurance card
• Bring a list of current medications
• If you need to reschedule, please contact us at least 24 hours in advance

If you have any questions or concerns, please don't hesitate to contact our office.

Best regards,
Medical Team

---
This is an automated message. Please do not reply to this email.
`))

// Compose fills the confirmation template. It makes no oracle call.
func Compose(appointment, plan string) Email {
	var b strings.Builder
	// The template only interpolates strings; Execute cannot fail here.
	_ = bodyTemplate.Execute(&b, struct{ Appointment, Plan string }{
		Appointment: strings.TrimSpace(appointment),
		Plan:        strings.TrimSpace(plan),
	})
	return Email{Subject: Subject, Body: b.String()}
}
