package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanProject(row scannable) (*model.Project, error) {
	var p model.Project
	if err := row.Scan(&p.Name, &p.Internal, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProjects(rows *sql.Rows) ([]*model.Project, error) {
	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// scanStructureRow scans path, name, labels and the changed flag.
func scanStructureRow(row scannable) (*model.StructureRow, error) {
	var r model.StructureRow
	if err := row.Scan(&r.Path, &r.Name, pq.Array(&r.Labels), &r.Changed); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanStructureRows(rows *sql.Rows) ([]*model.StructureRow, error) {
	var out []*model.StructureRow
	for rows.Next() {
		r, err := scanStructureRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanDependencyRow(row scannable) (*model.DependencyRow, error) {
	var r model.DependencyRow
	err := row.Scan(
		&r.Path,
		&r.Name,
		pq.Array(&r.Labels),
		&r.Added,
		&r.UsedByPath,
		pq.Array(&r.UsedByLabels),
		&r.UsedByName,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanDependencyRows(rows *sql.Rows) ([]*model.DependencyRow, error) {
	var out []*model.DependencyRow
	for rows.Next() {
		r, err := scanDependencyRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanEvent(row scannable) (*model.Event, error) {
	var (
		e       model.Event
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.Project, &e.Version, &e.Actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// jsonbBytes returns nil for an empty payload so the column stores NULL.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
