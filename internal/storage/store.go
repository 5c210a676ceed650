package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/cuspsim/internal/dynamo"
	"github.com/san-kum/cuspsim/internal/field"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{"step", "time", "particle", "x", "y", "z", "vx", "vy", "vz"}

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
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Integrator  string             `json:"integrator"`
	Evaluator   string             `json:"evaluator"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	MicroSteps  int                `json:"micro_steps"`
	ScaleFactor float64            `json:"scale_factor"`
	Particles   int                `json:"particles"`
	Coils       []field.Loop       `json:"coils"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Duration is the simulated time covered by the run.
func (m RunMetadata) Duration() float64 {
	return m.Dt * float64(m.Steps) * float64(m.MicroSteps)
}

// Save writes meta and history under a fresh run ID and returns the ID.
// meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, history []dynamo.Snapshot) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%s_%d", meta.Scenario, meta.Integrator, now.UnixNano())
	meta.Timestamp = now
	if len(history) > 0 {
		meta.Particles = len(history[0].Particles)
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), history); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeTrajectory(path string, history []dynamo.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}

	for _, snap := range history {
		for i, p := range snap.Particles {
			row := []string{
				strconv.Itoa(snap.Step),
				formatFloat(snap.Time),
				strconv.Itoa(i),
				formatFloat(p.Position.X),
				formatFloat(p.Position.Y),
				formatFloat(p.Position.Z),
				formatFloat(p.Velocity.X),
				formatFloat(p.Velocity.Y),
				formatFloat(p.Velocity.Z),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List returns the metadata of every stored run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads the snapshots of a stored run back in step order.
func (s *Store) LoadTrajectory(runID string) ([]dynamo.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(trajectoryHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	history := make([]dynamo.Snapshot, 0)
	for line, record := range records {
		if line == 0 {
			continue
		}

		vals := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s line %d: %w", runID, line+1, err)
			}
			vals[j] = v
		}

		step := int(vals[0])
		if n := len(history); n == 0 || history[n-1].Step != step {
			history = append(history, dynamo.Snapshot{Step: step, Time: vals[1]})
		}
		snap := &history[len(history)-1]
		snap.Particles = append(snap.Particles, dynamo.Electron{
			Position: r3.Vec{X: vals[3], Y: vals[4], Z: vals[5]},
			Velocity: r3.Vec{X: vals[6], Y: vals[7], Z: vals[8]},
		})
	}

	return history, nil
}
