package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/adcl/internal/changelog"
	"github.com/alfredjeanlab/adcl/internal/model"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string             `json:"version"`
	Type        string             `json:"type"`
	Timestamp   time.Time          `json:"timestamp"`
	LoadID      string             `json:"load_id"`
	Project     string             `json:"project"`
	Selected    string             `json:"selected_version"`
	LoadedAt    time.Time          `json:"loaded_at"`
	RecordCount int                `json:"record_count"`
	Diagnostics *model.Diagnostics `json:"diagnostics,omitempty"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string        `json:"type"`
	Data *model.Record `json:"data"`
}

// exportNow is replaced in tests.
var exportNow = time.Now

// ExportJSONL writes snap as JSONL to w: a header line, then one line per
// record in dataset order.
func ExportJSONL(snap *changelog.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   exportNow().UTC(),
		LoadID:      snap.LoadID,
		Project:     snap.Project,
		Selected:    snap.Version,
		LoadedAt:    snap.LoadedAt,
		RecordCount: len(snap.Records),
		Diagnostics: snap.Diagnostics,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, r := range snap.Records {
		if err := enc.Encode(record{Type: "record", Data: r}); err != nil {
			return fmt.Errorf("encode record %s: %w", r.Code, err)
		}
	}
	return nil
}
