package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursegrade/coursegrade-api/internal/models"
	appErrors "github.com/coursegrade/coursegrade-api/pkg/errors"
)

type mockScaleRepo struct {
	scales map[string]*models.GradeScale
	names  map[string]string
}

func (m *mockScaleRepo) List(ctx context.Context) ([]models.GradeScale, error) {
	out := make([]models.GradeScale, 0, len(m.scales))
	for _, scale := range m.scales {
		out = append(out, *scale)
	}
	return out, nil
}

func (m *mockScaleRepo) FindByID(ctx context.Context, id string) (*models.GradeScale, error) {
	if scale, ok := m.scales[id]; ok {
		return scale, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScaleRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	id, ok := m.names[name]
	if !ok {
		return false, nil
	}
	return id != excludeID, nil
}

func (m *mockScaleRepo) Create(ctx context.Context, scale *models.GradeScale) error {
	if m.scales == nil {
		m.scales = make(map[string]*models.GradeScale)
		m.names = make(map[string]string)
	}
	scale.ID = "sc1"
	m.scales[scale.ID] = scale
	m.names[scale.Name] = scale.ID
	return nil
}

func (m *mockScaleRepo) Update(ctx context.Context, scale *models.GradeScale) error {
	m.scales[scale.ID] = scale
	m.names[scale.Name] = scale.ID
	return nil
}

func (m *mockScaleRepo) Delete(ctx context.Context, id string) error {
	delete(m.scales, id)
	return nil
}

func passFailRequest() SaveScaleRequest {
	return SaveScaleRequest{
		Name: "pass-fail",
		Entries: []ScaleEntryRequest{
			{MinPercent: 0, Letter: "Fail"},
			{MinPercent: 0.7, Letter: "Pass"},
		},
	}
}

func TestScaleCreateAndResolve(t *testing.T) {
	repo := &mockScaleRepo{}
	svc := NewScaleService(repo, nil, nil)

	scale, err := svc.Create(context.Background(), passFailRequest())
	require.NoError(t, err)
	require.NotEmpty(t, scale.ID)
	require.Len(t, scale.Entries, 2)

	resolver, err := svc.Resolver(context.Background(), scale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pass", resolver.Resolve(0.85))
	assert.Equal(t, "Fail", resolver.Resolve(0.69))
}

func TestScaleCreateRejectsDuplicateName(t *testing.T) {
	repo := &mockScaleRepo{}
	svc := NewScaleService(repo, nil, nil)

	_, err := svc.Create(context.Background(), passFailRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), passFailRequest())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestScaleCreateRejectsEmptyEntries(t *testing.T) {
	svc := NewScaleService(&mockScaleRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), SaveScaleRequest{Name: "empty"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScaleUpdateKeepsName(t *testing.T) {
	repo := &mockScaleRepo{}
	svc := NewScaleService(repo, nil, nil)

	created, err := svc.Create(context.Background(), passFailRequest())
	require.NoError(t, err)

	req := passFailRequest()
	req.Entries = append(req.Entries, ScaleEntryRequest{MinPercent: 0.9, Letter: "High Pass"})
	updated, err := svc.Update(context.Background(), created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Len(t, updated.Entries, 3)
}

func TestScaleUpdateUnknownID(t *testing.T) {
	svc := NewScaleService(&mockScaleRepo{}, nil, nil)

	_, err := svc.Update(context.Background(), "missing", passFailRequest())
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScaleDelete(t *testing.T) {
	repo := &mockScaleRepo{}
	svc := NewScaleService(repo, nil, nil)

	created, err := svc.Create(context.Background(), passFailRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.Error(t, err)
}

func TestScaleDefaultCoversFullRange(t *testing.T) {
	svc := NewScaleService(&mockScaleRepo{}, nil, nil)

	scale := svc.Default()
	require.NotEmpty(t, scale.Entries)
	assert.Equal(t, "default", scale.Name)
	assert.Equal(t, 0.0, scale.Entries[0].MinPercent)
	assert.Equal(t, "F", scale.Entries[0].Letter)
	assert.Equal(t, "A+", scale.Entries[len(scale.Entries)-1].Letter)
}
