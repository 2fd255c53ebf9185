package appointment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/yungbote/clinicscribe-backend/internal/appointment"
	"github.com/yungbote/clinicscribe-backend/internal/appointment/mocks"
	"github.com/yungbote/clinicscribe-backend/internal/clinical"
	clinicalmocks "github.com/yungbote/clinicscribe-backend/internal/clinical/mocks"
	apperr "github.com/yungbote/clinicscribe-backend/internal/pkg/errors"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

const (
	plan         = "Amoxicillin 500mg TID x7 days. Follow-up in 2 weeks for blood pressure check."
	planResponse = "MEDICINES_FOUND: Amoxicillin 500mg TID x7 days\nAPPOINTMENT_FOUND: Follow-up in 2 weeks for blood pressure check"
)

type fixture struct {
	gen        *clinicalmocks.MockGenerator
	mailer     *mocks.MockMailer
	reg        *prometheus.Registry
	dispatcher *appointment.Dispatcher
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	gen := clinicalmocks.NewMockGenerator(ctrl)
	mailer := mocks.NewMockMailer(ctrl)
	reg := prometheus.NewRegistry()
	metrics := newMetrics(reg)
	plans := clinical.NewPlanExtractor(logger.Nop(), gen, metrics)
	return fixture{
		gen:        gen,
		mailer:     mailer,
		reg:        reg,
		dispatcher: appointment.NewDispatcher(logger.Nop(), plans, mailer, metrics),
	}
}

func TestInvalidInputRejectedBeforeOracle(t *testing.T) {
	cases := []struct {
		name string
		req  appointment.Request
	}{
		{"n/a plan", appointment.Request{PlanText: "n/a", Recipient: "pat@example.com", Send: true}},
		{"N/A plan", appointment.Request{PlanText: " N/A ", Send: false}},
		{"empty plan", appointment.Request{PlanText: "", Recipient: "pat@example.com", Send: true}},
		{"missing recipient", appointment.Request{PlanText: plan, Send: true}},
		{"bad recipient", appointment.Request{PlanText: plan, Recipient: "not-an-email", Send: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			res := f.dispatcher.ProcessAppointment(context.Background(), tc.req)
			assert.Equal(t, appointment.StatusWarning, res.Status)
			assert.Nil(t, res.Email)
		})
	}
}

func TestNoAppointmentFound(t *testing.T) {
	f := newFixture(t)
	f.gen.EXPECT().GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("MEDICINES_FOUND: Ibuprofen 200mg as needed\nAPPOINTMENT_FOUND: none", nil)

	res := f.dispatcher.ProcessAppointment(context.Background(), appointment.Request{PlanText: plan, Recipient: "pat@example.com", Send: true})
	assert.Equal(t, appointment.StatusNoAppointment, res.Status)
	assert.Equal(t, []string{"Ibuprofen 200mg as needed"}, res.Medicines)
	assert.Nil(t, res.Email)
}

func TestOracleFailureReadsAsNoAppointment(t *testing.T) {
	f := newFixture(t)
	f.gen.EXPECT().GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("unavailable"))

	res := f.dispatcher.ProcessAppointment(context.Background(), appointment.Request{PlanText: plan, Send: false})
	assert.Equal(t, appointment.StatusNoAppointment, res.Status)
}

func TestPreviewDoesNotSend(t *testing.T) {
	f := newFixture(t)
	f.gen.EXPECT().GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).Return(planResponse, nil)
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	res := f.dispatcher.ProcessAppointment(context.Background(), appointment.Request{PlanText: plan, Send: false})
	assert.Equal(t, appointment.StatusPreview, res.Status)
	require.NotNil(t, res.Email)
	assert.Contains(t, res.Email.Body, "Follow-up in 2 weeks for blood pressure check")
	assert.Contains(t, res.Email.Body, plan)
	assert.Equal(t, []string{"Amoxicillin 500mg TID x7 days"}, res.Medicines)

	assert.Equal(t, float64(1), appointmentResults(t, f.reg, "preview"))
}

func TestSendUsesOverrideBodyOnce(t *testing.T) {
	f := newFixture(t)
	f.gen.EXPECT().GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).Return(planResponse, nil)
	f.mailer.EXPECT().
		Send(gomock.Any(), "pat@example.com", appointment.Email{Subject: appointment.Subject, Body: "Edited by Dr. Lee"}).
		Return("Email sent to pat@example.com", nil).
		Times(1)

	res := f.dispatcher.ProcessAppointment(context.Background(), appointment.Request{
		PlanText:     plan,
		Recipient:    "pat@example.com",
		Send:         true,
		OverrideBody: "Edited by Dr. Lee",
	})
	assert.Equal(t, appointment.StatusSent, res.Status)
	assert.True(t, res.Delivered())
	assert.Equal(t, "Email sent to pat@example.com", res.Detail)
}

func TestSendGeneratedBodyWithoutOverride(t *testing.T) {
	f := newFixture(t)
	f.gen.EXPECT().GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).Return(planResponse, nil)
	want := appointment.Compose("Follow-up in 2 weeks for blood pressure check", plan)
	f.mailer.EXPECT().Send(gomock.Any(), "pat@example.com", want).Return("ok", nil)

	res := f.dispatcher.ProcessAppointment(context.Background(), appointment.Request{PlanText: plan, Recipient: "pat@example.com", Send: true, OverrideBody: "   "})
	assert.Equal(t, appointment.StatusSent, res.Status)
}

func TestDeliveryFailureIsSurfaced(t *testing.T) {
	for name, sendErr := range map[string]error{
		"provider": errors.New("sendgrid http 503"),
		"disabled": apperr.ErrEmailDisabled,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.gen.EXPECT().GenerateText(gomock.Any(), gomock.Any(), gomock.Any()).Return(planResponse, nil)
			f.mailer.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return("", sendErr).Times(1)

			res := f.dispatcher.ProcessAppointment(context.Background(), appointment.Request{PlanText: plan, Recipient: "pat@example.com", Send: true})
			assert.Equal(t, appointment.StatusFailed, res.Status)
			assert.Equal(t, sendErr.Error(), res.Error)
			assert.False(t, res.Delivered())
		})
	}
}
