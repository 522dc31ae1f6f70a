package main

import (
	"context"
	"testing"

	"github.com/alfredjeanlab/adcl/internal/client"
	"github.com/alfredjeanlab/adcl/internal/model"
)

// fakeClient is an in-memory ChangelogClient. Nil responses answer 404.
type fakeClient struct {
	summary  *model.ChangelogSummary
	records  []*model.Record
	tree     *model.TreeResponse
	graph    *model.GraphResponse
	projects []*model.Project
	versions []string
	events   []*model.Event

	lastSel     model.Selection
	lastView    *client.ViewRequest
	lastImport  *model.ChangeSet
	lastCreate  *client.CreateProjectRequest
	treeCalls   int
	summaryHits int
}

var _ client.ChangelogClient = (*fakeClient)(nil)

var notFound = &client.APIError{StatusCode: 404, Message: "changelog not found"}

// useFake installs c as both CLI clients for the duration of the test.
func useFake(t *testing.T, c *fakeClient) {
	t.Helper()
	prevC, prevV := changelogClient, viewClient
	changelogClient, viewClient = c, c
	t.Cleanup(func() { changelogClient, viewClient = prevC, prevV })
}

func (f *fakeClient) LoadChangelog(_ context.Context, sel model.Selection) (*model.ChangelogSummary, error) {
	f.lastSel = sel
	if f.summary == nil {
		return nil, notFound
	}
	return f.summary, nil
}

func (f *fakeClient) GetTree(_ context.Context, req *client.ViewRequest) (*model.TreeResponse, error) {
	f.lastView = req
	f.treeCalls++
	if f.tree == nil {
		return nil, notFound
	}
	return f.tree, nil
}

func (f *fakeClient) GetGraph(_ context.Context, req *client.ViewRequest) (*model.GraphResponse, error) {
	f.lastView = req
	if f.graph == nil {
		return nil, notFound
	}
	return f.graph, nil
}

func (f *fakeClient) Health(context.Context) (string, error) { return "ok", nil }

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) ListProjects(context.Context) ([]*model.Project, error) {
	return f.projects, nil
}

func (f *fakeClient) CreateProject(_ context.Context, req *client.CreateProjectRequest) (*model.Project, error) {
	f.lastCreate = req
	internal := req.Internal == nil || *req.Internal
	return &model.Project{Name: req.Name, Internal: internal}, nil
}

func (f *fakeClient) ListVersions(context.Context, string) ([]string, error) {
	return f.versions, nil
}

func (f *fakeClient) ImportChanges(_ context.Context, project, version string, cs *model.ChangeSet) (*client.ImportResult, error) {
	f.lastImport = cs
	return &client.ImportResult{
		Project:      project,
		Version:      version,
		Structure:    len(cs.Structure),
		Dependencies: len(cs.Dependencies),
	}, nil
}

func (f *fakeClient) ListEvents(context.Context, string, int) ([]*model.Event, error) {
	return f.events, nil
}

func (f *fakeClient) GetChangelog(context.Context) (*model.ChangelogSummary, error) {
	f.summaryHits++
	if f.summary == nil {
		return nil, notFound
	}
	return f.summary, nil
}

func (f *fakeClient) GetRecords(context.Context) ([]*model.Record, error) {
	if f.summary == nil {
		return nil, notFound
	}
	return f.records, nil
}
