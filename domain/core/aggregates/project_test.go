package aggregates

import (
	"encoding/json"
	"testing"

	"slidecanvas/domain/config"
	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	p, err := NewProject("  Quarterly review ", nil)
	require.NoError(t, err)

	assert.Equal(t, "Quarterly review", p.Name())
	assert.Equal(t, 0, p.Version())
	assert.Equal(t, 20.0, p.Settings().GridSize)
	assert.Equal(t, p.ID(), p.Canvas().ProjectID())

	_, err = NewProject(" ", nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestProject_CommitViewportClampsScale(t *testing.T) {
	p, err := NewProject("deck", config.DefaultDomainConfig())
	require.NoError(t, err)

	require.NoError(t, p.CommitViewport(valueobjects.Viewport{X: 10, Y: 20, Scale: 50, Width: 800, Height: 600}))
	assert.Equal(t, 10.0, p.Viewport().Scale)
}

func TestProject_UpdateSettings(t *testing.T) {
	p, err := NewProject("deck", nil)
	require.NoError(t, err)

	s := p.Settings()
	s.Transition = "spin"
	assert.Error(t, p.UpdateSettings(s))

	s.Transition = "fade"
	s.PreferredEngine = "impress"
	require.NoError(t, p.UpdateSettings(s))
	assert.Equal(t, "impress", p.Settings().PreferredEngine)
}

func TestProject_SerializeRoundTrip(t *testing.T) {
	p, err := NewProject("deck", nil)
	require.NoError(t, err)

	c := p.Canvas()
	a, err := c.CreateNode(NodeSpec{ID: "a", Type: entities.NodeTypeHeading})
	require.NoError(t, err)
	b, err := c.CreateNode(NodeSpec{ID: "b", Type: entities.NodeTypeCode, Position: valueobjects.Point{X: 400}})
	require.NoError(t, err)
	_, err = c.Connect(a.ID(), b.ID(), ConnectionSpec{})
	require.NoError(t, err)
	require.NoError(t, p.CommitViewport(valueobjects.Viewport{X: -40, Y: 12, Scale: 1.5, Width: 1024, Height: 768}))
	p.MarkSaved()

	raw, err := json.Marshal(p.Serialize())
	require.NoError(t, err)

	var doc ProjectDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	restored, err := DeserializeProject(doc, nil)
	require.NoError(t, err)

	assert.Equal(t, p.ID(), restored.ID())
	assert.Equal(t, 1, restored.Version())
	assert.Equal(t, p.Viewport(), restored.Viewport())
	assert.Equal(t, p.Settings(), restored.Settings())
	assert.Equal(t, 2, restored.Canvas().NodeCount())
	assert.True(t, restored.Canvas().HasConnectionBetween(a.ID(), b.ID()))
	assert.Equal(t, 0, restored.DroppedConnections())
}

func TestDeserializeProject_Defaults(t *testing.T) {
	doc := ProjectDocument{ID: "p1", Name: "bare"}

	p, err := DeserializeProject(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Viewport().Scale)
	assert.Equal(t, 20.0, p.Settings().GridSize)
	assert.Equal(t, "slide", p.Settings().Transition)
	assert.False(t, p.CreatedAt().IsZero())

	_, err = DeserializeProject(ProjectDocument{Name: "no id"}, nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestProject_CloneIsIndependent(t *testing.T) {
	p, err := NewProject("deck", nil)
	require.NoError(t, err)
	_, err = p.Canvas().CreateNode(NodeSpec{ID: "a"})
	require.NoError(t, err)

	clone := p.Clone()
	_, err = clone.Canvas().CreateNode(NodeSpec{ID: "b"})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Canvas().NodeCount())
	assert.Equal(t, 2, clone.Canvas().NodeCount())
}
