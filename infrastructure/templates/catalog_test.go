package templates

import (
	"testing"
	"testing/fstest"

	"slidecanvas/application/services"
	"slidecanvas/domain/config"
	"slidecanvas/domain/core/aggregates"
	"slidecanvas/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_ListsSortedWithCounts(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	infos := c.List()
	require.Len(t, infos, 3)
	assert.Equal(t, "branching-story", infos[0].Name)
	assert.Equal(t, "grid-gallery", infos[1].Name)
	assert.Equal(t, "title-agenda", infos[2].Name)

	assert.Equal(t, 6, infos[0].NodeCount)
	assert.Equal(t, 6, infos[0].ConnectionCount)
	assert.Equal(t, 0, infos[1].ConnectionCount)
	assert.NotEmpty(t, infos[2].Description)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestBuiltin_EveryTemplateApplies(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	for _, info := range c.List() {
		t.Run(info.Name, func(t *testing.T) {
			tmpl, ok := c.Get(info.Name)
			require.True(t, ok)

			canvas := aggregates.NewCanvas(valueobjects.NewProjectID(), config.DefaultDomainConfig())
			created, err := services.ApplyTemplate(canvas, tmpl, valueobjects.Point{X: 50, Y: 50})
			require.NoError(t, err)
			assert.Len(t, created, info.NodeCount)
			assert.Equal(t, info.ConnectionCount, canvas.ConnectionCount())
		})
	}
}

func TestLoad_NameFallsBackToFileAndRejectsDuplicates(t *testing.T) {
	c, err := Load(fstest.MapFS{
		"solo.yaml": {Data: []byte("nodes:\n  - {ref: a, type: text, x: 0, y: 0}\n")},
	})
	require.NoError(t, err)
	tmpl, ok := c.Get("solo")
	require.True(t, ok)
	assert.Equal(t, 1, tmpl.NodeCount)

	_, err = Load(fstest.MapFS{
		"a.yaml": {Data: []byte("name: same\n")},
		"b.yaml": {Data: []byte("name: same\n")},
	})
	assert.ErrorContains(t, err, "duplicate template name")

	_, err = Load(fstest.MapFS{"bad.yaml": {Data: []byte("nodes: {")}})
	assert.ErrorContains(t, err, "failed to parse template bad.yaml")
}
