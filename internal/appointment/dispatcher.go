package appointment

import (
	"context"
	"net/mail"
	"strings"

	"github.com/yungbote/clinicscribe-backend/internal/clinical"
	"github.com/yungbote/clinicscribe-backend/internal/observability"
	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

type Status string

const (
	StatusWarning       Status = "warning"
	StatusNoAppointment Status = "no_appointment"
	StatusPreview       Status = "preview"
	StatusSent          Status = "sent"
	StatusFailed        Status = "failed"
)

// PlanAnalyzer finds the appointment in a plan section. *clinical.PlanExtractor
// satisfies it.
type PlanAnalyzer interface {
	Extract(ctx context.Context, plan string) clinical.PlanExtraction
}

type Request struct {
	PlanText     string
	Recipient    string
	Send         bool
	OverrideBody string
}

type Result struct {
	Status      Status   `json:"status"`
	Message     string   `json:"message"`
	Detail      string   `json:"result,omitempty"`
	Appointment string   `json:"appointment,omitempty"`
	Medicines   []string `json:"medicines,omitempty"`
	Email       *Email   `json:"email,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type Dispatcher struct {
	log     *logger.Logger
	plans   PlanAnalyzer
	mailer  Mailer
	metrics *observability.Metrics
}

func NewDispatcher(log *logger.Logger, plans PlanAnalyzer, mailer Mailer, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{log: log.With("service", "AppointmentDispatcher"), plans: plans, mailer: mailer, metrics: metrics}
}

// ProcessAppointment validates the request, finds the appointment, composes
// the confirmation and, when req.Send is set, hands it to the mailer once.
func (d *Dispatcher) ProcessAppointment(ctx context.Context, req Request) Result {
	ctx = ctxutil.Default(ctx)
	res := d.process(ctx, req)
	d.metrics.IncAppointmentResult(string(res.Status))
	d.log.Info("Appointment processed", "session_id", ctxutil.SessionID(ctx), "status", string(res.Status))
	return res
}

func (d *Dispatcher) process(ctx context.Context, req Request) Result {
	plan := strings.TrimSpace(req.PlanText)
	if plan == "" || strings.EqualFold(plan, clinical.NotAvailable) {
		return Result{Status: StatusWarning, Message: "No plan section available to process."}
	}
	to := strings.TrimSpace(req.Recipient)
	if req.Send {
		if to == "" {
			return Result{Status: StatusWarning, Message: "A recipient email address is required to send the appointment."}
		}
		if _, err := mail.ParseAddress(to); err != nil {
			return Result{Status: StatusWarning, Message: "The recipient email address is not valid."}
		}
	}

	found := d.plans.Extract(ctx, plan)
	if !found.HasAppointment() {
		return Result{Status: StatusNoAppointment, Message: "No appointment found.", Medicines: found.MedicineItems}
	}

	email := Compose(found.Appointment, plan)
	if !req.Send {
		return Result{
			Status:      StatusPreview,
			Message:     "Email content generated for preview",
			Appointment: found.Appointment,
			Medicines:   found.MedicineItems,
			Email:       &email,
		}
	}

	if body := strings.TrimSpace(req.OverrideBody); body != "" {
		email.Body = req.OverrideBody
	}
	if d.mailer == nil {
		return Result{Status: StatusFailed, Message: "Failed to send appointment email", Appointment: found.Appointment, Error: "email service not configured"}
	}
	msg, err := d.mailer.Send(ctx, to, email)
	if err != nil {
		d.log.Error("Appointment email failed", "session_id", ctxutil.SessionID(ctx), "recipient", to, "error", err.Error())
		return Result{
			Status:      StatusFailed,
			Message:     "Failed to send appointment email",
			Appointment: found.Appointment,
			Email:       &email,
			Error:       err.Error(),
		}
	}
	return Result{
		Status:      StatusSent,
		Message:     "Appointment email sent successfully",
		Appointment: found.Appointment,
		Medicines:   found.MedicineItems,
		Email:       &email,
		Detail:      msg,
	}
}

// Delivered reports whether r ended in a successful send.
func (r Result) Delivered() bool {
	return r.Status == StatusSent
}
