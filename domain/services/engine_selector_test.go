package services

import (
	"testing"

	"slidecanvas/domain/core/entities"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTypes = []entities.NodeType{
	entities.NodeTypeText, entities.NodeTypeHeading, entities.NodeTypeImage, entities.NodeTypeCode,
	entities.NodeTypeList, entities.NodeTypeTable, entities.NodeTypeChart,
}

func TestRecommend_PrefersFullySupportingEngine(t *testing.T) {
	nodes := []*entities.Node{
		mustNode(t, "h", entities.NodeTypeHeading, 0, 0),
		mustNode(t, "chart", entities.NodeTypeChart, 300, 0),
	}
	partial := EngineCapabilities{ID: "partial", Name: "Partial", SupportedTypes: []entities.NodeType{entities.NodeTypeHeading}}
	full := EngineCapabilities{ID: "full", Name: "Full", SupportedTypes: allTypes}

	s := NewEngineSelector(nil)
	require.NoError(t, s.Register(partial))
	require.NoError(t, s.Register(full))

	rec, err := s.Recommend(nodes, nil)
	require.NoError(t, err)

	assert.Equal(t, "full", rec.EngineID)
	assert.Equal(t, []string{"partial"}, rec.Alternatives)
	assert.Equal(t, ReasonNodeBased, rec.Reason)
	require.Len(t, rec.Scores, 2)
	assert.Greater(t, rec.Scores[1].Score, rec.Scores[0].Score)
	assert.False(t, rec.Scores[0].Valid)
	assert.Equal(t, 1, rec.Scores[0].Issues)
}

func TestRecommend_TiesGoToFirstRegistered(t *testing.T) {
	nodes := []*entities.Node{mustText(t, "a", 0, 0)}
	s := NewEngineSelector(nil)
	require.NoError(t, s.Register(EngineCapabilities{ID: "first", SupportedTypes: allTypes}))
	require.NoError(t, s.Register(EngineCapabilities{ID: "second", SupportedTypes: allTypes}))

	rec, err := s.Recommend(nodes, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", rec.EngineID)
	assert.Equal(t, rec.Scores[0].Score, rec.Scores[1].Score)
}

func TestRecommend_ConnectionAwareBonus(t *testing.T) {
	root := mustText(t, "root", 0, 0)
	kids := []*entities.Node{mustText(t, "k1", 300, 0), mustText(t, "k2", 300, 200), mustText(t, "k3", 300, 400)}
	nodes := append([]*entities.Node{root}, kids...)
	var conns []*entities.Connection
	for _, k := range kids {
		conns = append(conns, mustConn(t, root, k))
	}

	linear := EngineCapabilities{ID: "linear", SupportedTypes: allTypes, Features: EngineFeatures{Linear: true}}
	spatial := EngineCapabilities{ID: "spatial", SupportedTypes: allTypes, Features: EngineFeatures{Spatial: true}}

	s := NewEngineSelector(nil)
	require.NoError(t, s.Register(linear))
	require.NoError(t, s.Register(spatial))

	rec, err := s.Recommend(nodes, conns)
	require.NoError(t, err)
	assert.Equal(t, "spatial", rec.EngineID)
	assert.Equal(t, ReasonConnectionAware, rec.Reason)
	assert.Equal(t, FlowBranching, rec.Flow.Style)
	assert.Equal(t, 10+1+5, rec.Score)
}

func TestScore_Breakdown(t *testing.T) {
	nodes := []*entities.Node{
		mustNode(t, "t", entities.NodeTypeText, 0, 0),
		mustNode(t, "t2", entities.NodeTypeText, 0, 200),
		mustNode(t, "c", entities.NodeTypeChart, 300, 0),
		mustNode(t, "tbl", entities.NodeTypeTable, 600, 0),
	}
	caps := EngineCapabilities{
		ID:             "e",
		SupportedTypes: []entities.NodeType{entities.NodeTypeText},
		Features:       EngineFeatures{Overview: true, Fragments: true, CustomCSS: true},
	}

	got := NewEngineSelector(nil).Score(caps, nodes, FlowAnalysis{Style: FlowSpatial})
	// -2 issues, +5 features, +1 supported present type
	assert.Equal(t, 4, got.Score)
	assert.Equal(t, 2, got.Issues)
}

func TestValidateNodes(t *testing.T) {
	caps := EngineCapabilities{ID: "impress", Name: "Impress", SupportedTypes: []entities.NodeType{entities.NodeTypeText}}
	issues := ValidateNodes(caps, []*entities.Node{
		mustText(t, "ok", 0, 0),
		mustNode(t, "tbl", entities.NodeTypeTable, 0, 0),
	})

	require.Len(t, issues, 1)
	assert.Equal(t, "tbl", issues[0].NodeID)
	assert.Equal(t, "unsupported_type", issues[0].Issue)
	assert.Contains(t, issues[0].Message, "table")
}

func TestEngineSelector_Registration(t *testing.T) {
	s := NewEngineSelector(nil)

	_, err := s.Recommend(nil, nil)
	assert.True(t, pkgerrors.IsValidation(err))

	assert.Error(t, s.Register(EngineCapabilities{}))
	require.NoError(t, s.Register(EngineCapabilities{ID: "reveal"}))
	assert.True(t, pkgerrors.IsConflict(s.Register(EngineCapabilities{ID: "reveal"})))

	_, ok := s.Engine("reveal")
	assert.True(t, ok)
	assert.Len(t, s.Engines(), 1)
}
