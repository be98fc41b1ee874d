package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/chainsim/internal/chainbinom"
	"gonum.org/v1/gonum/mat"
)

func testTrajectory() *chainbinom.Trajectory {
	return &chainbinom.Trajectory{
		Times: []float64{0, 0.5, 1},
		States: []*mat.Dense{
			mat.NewDense(2, 3, []float64{10, 10, 10, 1, 1, 1}),
			mat.NewDense(2, 3, []float64{9, 10, 8, 2, 1, 3}),
			mat.NewDense(2, 3, []float64{7, 9, 8, 4, 2, 3}),
		},
	}
}

func testMeta() RunMetadata {
	return RunMetadata{
		Model:        "si",
		Seed:         42,
		Start:        0,
		End:          1.5,
		Dt:           0.5,
		Compartments: []string{"S", "I"},
		Metrics:      map[string]float64{"peak_I": 3},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	traj := testTrajectory()
	runID, err := st.Save(testMeta(), traj)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != "si" || meta.Seed != 42 || meta.Replicas != 3 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["peak_I"] != 3 {
		t.Errorf("expected peak_I 3, got %f", meta.Metrics["peak_I"])
	}

	loaded, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if loaded.Len() != 3 {
		t.Fatalf("expected 3 time points, got %d", loaded.Len())
	}
	for i := range traj.States {
		if loaded.Times[i] != traj.Times[i] {
			t.Errorf("time %d = %g, want %g", i, loaded.Times[i], traj.Times[i])
		}
		if !mat.Equal(loaded.States[i], traj.States[i]) {
			t.Errorf("state %d differs after round trip", i)
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(testMeta(), testTrajectory())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(testMeta(), testTrajectory())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if first == second {
		t.Error("run ids collide")
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(testMeta(), testTrajectory())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "trajectory.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, runID, "trajectory.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	if len(lines) != 1+3*3 {
		t.Errorf("expected 10 csv lines, got %d", len(lines))
	}
	if string(lines[0]) != "time,replica,S,I" {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestStoreSaveRejectsMismatchedCompartments(t *testing.T) {
	meta := testMeta()
	meta.Compartments = []string{"S", "I", "R"}
	if _, err := New(t.TempDir()).Save(meta, testTrajectory()); err == nil {
		t.Error("expected error for compartment mismatch")
	}
}

func TestLoadTrajectoryCorrupt(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runID, err := st.Save(testMeta(), testTrajectory())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	csvPath := filepath.Join(tmpDir, runID, "trajectory.csv")
	if err := os.WriteFile(csvPath, []byte("time,replica,S,I\n0,0,1,1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := st.LoadTrajectory(runID); !errors.Is(err, ErrCorruptRun) {
		t.Errorf("expected ErrCorruptRun, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, testMeta(), testTrajectory()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Model != "si" || len(data.Times) != 3 {
		t.Errorf("unexpected export header: %+v", data.RunMetadata)
	}
	if got := data.States[2][1][1]; got != 2 {
		t.Errorf("states[2][I][1] = %g, want 2", got)
	}
}
