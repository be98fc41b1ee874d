package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/chainsim/internal/chainbinom"
	"gonum.org/v1/gonum/mat"
)

var ErrCorruptRun = errors.New("storage: corrupt run data")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Model        string             `json:"model"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Start        float64            `json:"start"`
	End          float64            `json:"end"`
	Dt           float64            `json:"dt"`
	Replicas     int                `json:"replicas"`
	Compartments []string           `json:"compartments"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and trajectory.csv into a new run directory. The CSV
// has one row per (time, replica) with a column per compartment.
func (s *Store) Save(meta RunMetadata, traj *chainbinom.Trajectory) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	stamp := now.UnixNano()
	var runID, runDir string
	for {
		runID = fmt.Sprintf("%s_%d", meta.Model, stamp)
		runDir = filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		stamp++
	}

	meta.ID = runID
	meta.Timestamp = now
	if _, n := traj.Dims(); n > 0 {
		meta.Replicas = n
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, "trajectory.csv"), meta.Compartments, traj); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrajectory(path string, compartments []string, traj *chainbinom.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"time", "replica"}, compartments...)
	if err := w.Write(header); err != nil {
		return err
	}

	for t, x := range traj.States {
		rows, units := x.Dims()
		if rows != len(compartments) {
			return fmt.Errorf("state has %d compartments, metadata lists %d", rows, len(compartments))
		}
		ts := strconv.FormatFloat(traj.Times[t], 'g', -1, 64)
		for n := 0; n < units; n++ {
			record := make([]string, 0, len(header))
			record = append(record, ts, strconv.Itoa(n))
			for c := 0; c < rows; c++ {
				record = append(record, strconv.FormatFloat(x.At(c, n), 'f', -1, 64))
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the readable runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads trajectory.csv back into memory.
func (s *Store) LoadTrajectory(runID string) (*chainbinom.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	traj := &chainbinom.Trajectory{}
	if len(records) < 2 {
		return traj, nil
	}

	compartments := len(records[0]) - 2
	if compartments != len(meta.Compartments) || meta.Replicas < 1 {
		return nil, fmt.Errorf("%w: %s header has %d compartments", ErrCorruptRun, runID, compartments)
	}
	body := records[1:]
	if len(body)%meta.Replicas != 0 {
		return nil, fmt.Errorf("%w: %s has %d rows for %d replicas", ErrCorruptRun, runID, len(body), meta.Replicas)
	}

	for start := 0; start < len(body); start += meta.Replicas {
		t, err := strconv.ParseFloat(body[start][0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRun, err)
		}
		x := mat.NewDense(compartments, meta.Replicas, nil)
		for n := 0; n < meta.Replicas; n++ {
			record := body[start+n]
			for c := 0; c < compartments; c++ {
				v, err := strconv.ParseFloat(record[c+2], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", ErrCorruptRun, err)
				}
				x.Set(c, n, v)
			}
		}
		traj.Times = append(traj.Times, t)
		traj.States = append(traj.States, x)
	}

	return traj, nil
}
