package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/ibsim/internal/beam"
	"github.com/san-kum/ibsim/internal/report"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Scheme    string    `json:"scheme"`
	Mode      string    `json:"mode"`
	Timestamp time.Time `json:"timestamp"`

	Particles float64 `json:"particles"`
	Coupling  float64 `json:"coupling"`
	Threshold float64 `json:"threshold,omitempty"`
	Dt        float64 `json:"dt,omitempty"`

	Steps     int                `json:"steps"`
	Budget    int                `json:"budget"`
	Converged bool               `json:"converged"`
	Valid     bool               `json:"valid"`
	Final     Final              `json:"final"`
	Rates     beam.Rates         `json:"rates"`
	Constants beam.Constants     `json:"constants"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Final is the last sample of a run.
type Final struct {
	T    float64 `json:"t"`
	Ex   float64 `json:"ex"`
	Ey   float64 `json:"ey"`
	Sigs float64 `json:"sigs"`
	Sige float64 `json:"sige"`
}

func (f Final) Point() beam.Point {
	return beam.Point{T: f.T, Ex: f.Ex, Ey: f.Ey, Sigs: f.Sigs, Sige: f.Sige}
}

// Save writes metadata.json and trajectory.csv into a new run directory.
// Run fields of meta are filled from result; ID and Timestamp are assigned
// when empty.
func (s *Store) Save(meta RunMetadata, result *beam.Result) (RunMetadata, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	meta.Scheme = result.Scheme
	meta.Steps = result.Steps
	meta.Budget = result.Budget
	meta.Converged = result.Converged
	meta.Valid = result.Valid
	meta.Rates = result.FinalRates
	meta.Constants = result.Constants
	meta.Metrics = result.Metrics
	if result.Trajectory.Len() > 0 {
		p := result.Final()
		meta.Final = Final{T: p.T, Ex: p.Ex, Ey: p.Ey, Sigs: p.Sigs, Sige: p.Sige}
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return meta, err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return meta, err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return meta, err
	}
	defer csvFile.Close()

	if err := report.WriteCSV(csvFile, result.Trajectory); err != nil {
		return meta, err
	}
	return meta, csvFile.Close()
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

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
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
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*beam.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	tr, err := report.ReadCSV(f)
	if err != nil {
		return nil, err
	}

	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	report.RestoreEnergySpread(tr, meta.Final.Point())
	return tr, nil
}

// Export assembles the JSON export of a stored run.
func Export(meta *RunMetadata, tr *beam.Trajectory) report.Export {
	return report.Export{
		ID:         meta.ID,
		Model:      meta.Model,
		Scheme:     meta.Scheme,
		Steps:      meta.Steps,
		Budget:     meta.Budget,
		Converged:  meta.Converged,
		Valid:      meta.Valid,
		Constants:  meta.Constants,
		FinalRates: meta.Rates,
		Trajectory: tr,
		Sige2:      tr.Sige2(),
		Metrics:    meta.Metrics,
	}
}
