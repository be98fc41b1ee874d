package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/mat"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg, []string{"S", "I"})
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	rec.OnStep(0, 0, mat.NewDense(2, 2, []float64{90, 80, 10, 20}))
	rec.OnStep(1, 1, mat.NewDense(2, 2, []float64{85, 70, 15, 30}))

	if got := testutil.ToFloat64(rec.steps); got != 2 {
		t.Errorf("expected 2 steps, got %g", got)
	}
	if got := testutil.ToFloat64(rec.runs); got != 1 {
		t.Errorf("expected 1 run, got %g", got)
	}
	if got := testutil.ToFloat64(rec.population.WithLabelValues("I")); got != 45 {
		t.Errorf("expected I population 45, got %g", got)
	}
	if got := testutil.ToFloat64(rec.simTime); got != 1 {
		t.Errorf("expected simulated time 1, got %g", got)
	}
}

func TestRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRecorder(reg, []string{"S"}); err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if _, err := NewRecorder(reg, []string{"S"}); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg, []string{"S"})
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	rec.OnStep(0, 0, mat.NewDense(1, 1, []float64{7}))

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body := w.Body.String()
	if !strings.Contains(body, `chainsim_compartment_population{compartment="S"} 7`) {
		t.Errorf("metrics output missing population gauge:\n%s", body)
	}
}
