package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is the persisted form of a published event. Payload is the JSON
// body that went out on the bus.
type Event struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	Project   string          `json:"project"`
	Version   string          `json:"version,omitempty"`
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Detail summarises the payload for listings: the row counts of an
// import, or the load id and record count of a load. Other payloads
// yield "".
func (e *Event) Detail() string {
	var p struct {
		Structure    *int   `json:"structure"`
		Dependencies *int   `json:"dependencies"`
		LoadID       string `json:"load_id"`
		Records      int    `json:"records"`
	}
	if len(e.Payload) == 0 || json.Unmarshal(e.Payload, &p) != nil {
		return ""
	}
	switch {
	case p.LoadID != "":
		return fmt.Sprintf("%s, %d records", p.LoadID, p.Records)
	case p.Structure != nil || p.Dependencies != nil:
		var s, d int
		if p.Structure != nil {
			s = *p.Structure
		}
		if p.Dependencies != nil {
			d = *p.Dependencies
		}
		return fmt.Sprintf("%d structure rows, %d dependencies", s, d)
	}
	return ""
}
