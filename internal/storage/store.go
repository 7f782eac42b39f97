// Package storage lays out the output directory: figures, tables and
// simulation runs.
//
//	<root>/figures/*.png
//	<root>/tables/*.csv
//	<root>/runs/<id>/metadata.json
//	<root>/runs/<id>/states.csv
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/dragonlab/internal/dataset"
	"github.com/san-kum/dragonlab/internal/dynamo"
	"github.com/san-kum/dragonlab/internal/population"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	for _, d := range []string{s.FiguresDir(), s.TablesDir(), s.RunsDir()} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Root() string       { return s.baseDir }
func (s *Store) FiguresDir() string { return filepath.Join(s.baseDir, "figures") }
func (s *Store) TablesDir() string  { return filepath.Join(s.baseDir, "tables") }
func (s *Store) RunsDir() string    { return filepath.Join(s.baseDir, "runs") }

func (s *Store) FigurePath(name string) string { return filepath.Join(s.FiguresDir(), name) }
func (s *Store) TablePath(name string) string  { return filepath.Join(s.TablesDir(), name) }

// WriteTable saves t as tables/<name> and returns the path.
func (s *Store) WriteTable(name string, t *dataset.Table) (string, error) {
	path := s.TablePath(name)
	if err := t.SaveCSV(path); err != nil {
		return "", fmt.Errorf("write table %s: %w", name, err)
	}
	return path, nil
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	T0         float64            `json:"t0"`
	T1         float64            `json:"t1"`
	Samples    int                `json:"samples"`
	Params     population.Params  `json:"params"`
	Initial    []float64          `json:"initial"`
	R0         *float64           `json:"r0,omitempty"`
	StepsTaken int                `json:"steps_taken"`
	Rejected   int                `json:"rejected"`
	Metrics    map[string]float64 `json:"metrics"`
}

// SaveRun writes the metadata and sampled states of a run under a fresh
// id and returns it. Non-finite metrics are left out of the metadata.
func (s *Store) SaveRun(meta RunMetadata, result *dynamo.Result) (string, error) {
	if meta.Preset == "" {
		meta.Preset = "custom"
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	runID := fmt.Sprintf("%s_%d", meta.Preset, meta.Timestamp.Unix())
	runDir := filepath.Join(s.RunsDir(), runID)
	for n := 2; ; n++ {
		if _, err := os.Stat(runDir); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", meta.Preset, meta.Timestamp.Unix(), n)
		runDir = filepath.Join(s.RunsDir(), runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.StepsTaken = result.StepsTaken
	meta.Rejected = result.Rejected
	meta.Metrics = make(map[string]float64, len(result.Metrics))
	for k, v := range result.Metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			meta.Metrics[k] = v
		}
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteStates(csvFile, result.Times, result.States); err != nil {
		return "", err
	}
	return runID, csvFile.Close()
}

// WriteStates writes a time column followed by one column per stage.
func WriteStates(out io.Writer, times []float64, states []dynamo.State) error {
	w := csv.NewWriter(out)

	header := []string{"time"}
	for i := 0; len(states) > 0 && i < len(states[0]); i++ {
		header = append(header, stageName(i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func stageName(i int) string {
	if i < len(population.Stages) {
		return population.Stages[i]
	}
	return fmt.Sprintf("x%d", i)
}

// ListRuns returns the metadata of every run, newest first.
func (s *Store) ListRuns() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.RunsDir())
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
		meta, err := s.LoadRun(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) LoadRun(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunsDir(), runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads the sampled states of a run.
func (s *Store) LoadStates(runID string) ([]dynamo.State, []float64, error) {
	file, err := os.Open(filepath.Join(s.RunsDir(), runID, "states.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []dynamo.State{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s: row %d column %d: %w", runID, i+1, j, err)
			}
			vals[j] = v
		}
		times = append(times, vals[0])
		states = append(states, dynamo.State(vals[1:]))
	}
	return states, times, nil
}

// ExportData is the JSON export of a run.
type ExportData struct {
	Run    RunMetadata `json:"run"`
	Stages []string    `json:"stages"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes a stored run as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.LoadRun(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:    *meta,
		Stages: population.Stages,
		Times:  times,
		States: make([][]float64, len(states)),
	}
	for i, st := range states {
		data.States[i] = st
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
