package appointment_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yungbote/clinicscribe-backend/internal/observability"
)

func newMetrics(reg *prometheus.Registry) *observability.Metrics {
	return observability.NewMetrics(reg)
}

// appointmentResults reads one status series of the appointment result counter.
func appointmentResults(t *testing.T, reg *prometheus.Registry, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "clinicscribe_appointment_results_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" && lp.GetValue() == status {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
