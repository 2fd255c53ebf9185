package clinical

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/clinicscribe-backend/internal/observability"
	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

const (
	stagePlan = "plan"

	// None is the "nothing found" sentinel for both plan sections.
	None = "none"

	medicinesMarker   = "MEDICINES_FOUND:"
	appointmentMarker = "APPOINTMENT_FOUND:"
)

// PlanExtraction holds the two actionable sections of a treatment plan.
type PlanExtraction struct {
	Medicines     string   `json:"medicines"`
	MedicineItems []string `json:"medicine_items"`
	Appointment   string   `json:"appointment"`
}

func (p PlanExtraction) HasAppointment() bool {
	return !isNone(p.Appointment)
}

func (p PlanExtraction) HasMedicines() bool {
	return !isNone(p.Medicines)
}

func noPlanActions() PlanExtraction {
	return PlanExtraction{Medicines: None, Appointment: None}
}

type PlanExtractor struct {
	log     *logger.Logger
	gen     Generator
	metrics *observability.Metrics
}

func NewPlanExtractor(log *logger.Logger, gen Generator, metrics *observability.Metrics) *PlanExtractor {
	return &PlanExtractor{log: log.With("service", "PlanExtractor"), gen: gen, metrics: metrics}
}

// Extract asks the oracle for the medicines and appointment sections of plan.
// Any failure reads as "nothing found".
func (p *PlanExtractor) Extract(ctx context.Context, plan string) PlanExtraction {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(plan) == "" {
		return noPlanActions()
	}
	ctx, span := observability.StartSpan(ctx, "clinical.plan")
	start := time.Now()
	raw, err := p.gen.GenerateText(ctx, planSystemPrompt, planUserPrompt(plan))
	p.metrics.ObserveOracle(observability.OracleText, stagePlan, time.Since(start), err)
	observability.EndSpan(span, err)
	if err != nil {
		p.log.Error("Plan analysis failed", "session_id", ctxutil.SessionID(ctx), "error", err.Error())
		p.metrics.IncFallback(stagePlan, "oracle_error")
		return noPlanActions()
	}
	out := ParsePlanResponse(raw)
	if !strings.Contains(raw, appointmentMarker) {
		p.metrics.IncFallback(stagePlan, "missing_marker")
	}
	p.log.Info("Plan analyzed",
		"session_id", ctxutil.SessionID(ctx),
		"has_appointment", out.HasAppointment(),
		"medicines", len(out.MedicineItems),
	)
	return out
}

// ParsePlanResponse reads the MEDICINES_FOUND / APPOINTMENT_FOUND sections.
// The appointment is everything after its marker; medicines run from their
// marker up to the appointment marker or the end of the text.
func ParsePlanResponse(text string) PlanExtraction {
	out := noPlanActions()
	text = StripFence(text)

	if _, after, ok := strings.Cut(text, appointmentMarker); ok {
		if appt := strings.TrimSpace(after); !isNone(appt) {
			out.Appointment = appt
		}
	}
	if _, after, ok := strings.Cut(text, medicinesMarker); ok {
		section, _, _ := strings.Cut(after, appointmentMarker)
		if meds := strings.TrimSpace(section); !isNone(meds) {
			out.Medicines = meds
			out.MedicineItems = ParseMedicines(meds)
		}
	}
	return out
}

// ParseMedicines splits a medicines section into entries: on ";" first, then
// on line breaks, else the whole text is one entry. Empty entries and entries
// restating a section marker are dropped.
func ParseMedicines(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part != "" && !hasPrefixFold(part, "medicines_found", "appointment_found") {
			out = append(out, part)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !hasPrefixFold(line, "medicines", "appointment") {
			out = append(out, line)
		}
	}
	if len(out) > 0 {
		return out
	}
	if whole := strings.TrimSpace(text); whole != "" {
		return []string{whole}
	}
	return nil
}

func hasPrefixFold(s string, prefixes ...string) bool {
	lower := strings.ToLower(s)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// isNone treats blanks and "none" (optionally quoted or bracketed) as absent.
func isNone(s string) bool {
	s = strings.Trim(strings.TrimSpace(s), `"'[]().`)
	return s == "" || strings.EqualFold(s, None)
}
