package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/cuspsim/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Duration  float64           `json:"duration"`
	Snapshots []dynamo.Snapshot `json:"snapshots"`
}

func ExportJSON(w io.Writer, meta RunMetadata, history []dynamo.Snapshot) error {
	data := ExportData{
		RunMetadata: meta,
		Duration:    meta.Duration(),
		Snapshots:   history,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportRun writes a stored run as JSON.
func (s *Store) ExportRun(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	history, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, *meta, history)
}
