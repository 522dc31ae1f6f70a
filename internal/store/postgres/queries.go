package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// defaultEventLimit bounds ListEvents when the caller passes no limit.
const defaultEventLimit = 100

func queryCreateProject(ctx context.Context, db executor, p *model.Project) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO projects (name, internal)
		VALUES ($1, $2)
		RETURNING created_at`,
		p.Name, p.Internal,
	).Scan(&p.CreatedAt)
}

func queryGetProject(ctx context.Context, db executor, name string) (*model.Project, error) {
	row := db.QueryRowContext(ctx, `SELECT name, internal, created_at FROM projects WHERE name = $1`, name)
	return scanProject(row)
}

func queryListProjects(ctx context.Context, db executor) ([]*model.Project, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, internal, created_at
		FROM projects
		WHERE internal = TRUE
		ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

// queryAddVersion appends version to the project's ordered version list.
// Adding an existing version is a no-op.
func queryAddVersion(ctx context.Context, db executor, project, version string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO versions (project, version, position)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1 FROM versions WHERE project = $1
		ON CONFLICT (project, version) DO NOTHING`,
		project, version,
	)
	return err
}

func queryListVersions(ctx context.Context, db executor, project string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT version
		FROM versions
		WHERE project = $1
		ORDER BY position ASC`,
		project,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(versions) <= 1 {
		return []string{}, nil
	}
	return versions[1:], nil
}

func queryPutStructure(ctx context.Context, db executor, project, version string, r *model.StructureRow) error {
	tag := ""
	if r.Changed {
		tag = version
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO structure_nodes (project, version, path, name, labels)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project, version, path) DO UPDATE SET
			name = EXCLUDED.name,
			labels = EXCLUDED.labels`,
		project, tag, r.Path, r.Name, pq.Array(r.Labels),
	)
	return err
}

func queryPutDependency(ctx context.Context, db executor, project, version string, r *model.DependencyRow) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO dependencies (
			project, version, path, name, labels, added,
			used_by_path, used_by_labels, used_by_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (project, version, used_by_path, path, added) DO UPDATE SET
			name = EXCLUDED.name,
			labels = EXCLUDED.labels,
			used_by_labels = EXCLUDED.used_by_labels,
			used_by_name = EXCLUDED.used_by_name`,
		project, version, r.Path, r.Name, pq.Array(r.Labels), r.Added,
		r.UsedByPath, pq.Array(r.UsedByLabels), r.UsedByName,
	)
	return err
}

// queryListChangedStructure returns every node changed in version plus every
// version-independent node, in insertion order.
func queryListChangedStructure(ctx context.Context, db executor, project, version string) ([]*model.StructureRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT path, name, labels, version <> ''
		FROM structure_nodes
		WHERE project = $1 AND (version = $2 OR version = '')
		ORDER BY seq ASC`,
		project, version,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStructureRows(rows)
}

func queryListChangedDependencies(ctx context.Context, db executor, project, version string) ([]*model.DependencyRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT path, name, labels, added, used_by_path, used_by_labels, used_by_name
		FROM dependencies
		WHERE project = $1 AND version = $2
		ORDER BY id ASC`,
		project, version,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDependencyRows(rows)
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, project, version, actor, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		e.Topic, e.Project, e.Version, e.Actor, jsonbBytes(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryListEvents(ctx context.Context, db executor, project string, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, project, version, actor, payload, created_at
		FROM events
		WHERE project = $1
		ORDER BY created_at ASC
		LIMIT $2`,
		project, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}
