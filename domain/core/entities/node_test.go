package entities

import (
	"math"
	"testing"

	"slidecanvas/domain/core/valueobjects"
	pkgerrors "slidecanvas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T, id string, x, y float64) *Node {
	t.Helper()
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	n, err := NewNode(nodeID, NodeTypeText, valueobjects.Point{X: x, Y: y},
		valueobjects.Size{Width: 200, Height: 100}, DefaultContent(NodeTypeText), DefaultStyle(NodeTypeText))
	require.NoError(t, err)
	return n
}

func TestNewNode_Validation(t *testing.T) {
	id := valueobjects.NewNodeID()
	size := valueobjects.Size{Width: 10, Height: 10}

	tests := []struct {
		name     string
		id       valueobjects.NodeID
		nodeType NodeType
		position valueobjects.Point
		size     valueobjects.Size
		code     string
	}{
		{"missing id", valueobjects.NodeID{}, NodeTypeText, valueobjects.Point{}, size, ""},
		{"unknown type", id, NodeType("video"), valueobjects.Point{}, size, ""},
		{"NaN position", id, NodeTypeText, valueobjects.Point{X: math.NaN()}, size, pkgerrors.CodeInvalidPosition},
		{"zero size", id, NodeTypeText, valueobjects.Point{}, valueobjects.Size{}, pkgerrors.CodeInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNode(tt.id, tt.nodeType, tt.position, tt.size, Content{}, Style{})
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			if tt.code != "" {
				assert.True(t, pkgerrors.HasCode(err, tt.code))
			}
		})
	}
}

func TestNode_Geometry(t *testing.T) {
	n := newTestNode(t, "n1", 100, 50)

	assert.Equal(t, valueobjects.Rect{X: 100, Y: 50, Width: 200, Height: 100}, n.Bounds())
	assert.Equal(t, valueobjects.Point{X: 200, Y: 100}, n.Center())
	assert.True(t, n.ContainsPoint(valueobjects.Point{X: 300, Y: 150}))
	assert.False(t, n.ContainsPoint(valueobjects.Point{X: 99, Y: 60}))
}

func TestNode_Mutations(t *testing.T) {
	n := newTestNode(t, "n1", 0, 0)
	v := n.Version()

	require.NoError(t, n.MoveTo(valueobjects.Point{X: 40, Y: 60}))
	assert.Equal(t, valueobjects.Point{X: 40, Y: 60}, n.Position())
	assert.Error(t, n.MoveTo(valueobjects.Point{X: math.Inf(-1)}))

	assert.Error(t, n.Resize(valueobjects.Size{Width: -1, Height: 5}))
	require.NoError(t, n.Resize(valueobjects.Size{Width: 50, Height: 20}))

	require.NoError(t, n.ChangeType(NodeTypeHeading))
	assert.Equal(t, NodeTypeHeading, n.Type())

	order := 3
	n.SetOrder(&order)
	order = 9
	got, ok := n.Order()
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	n.SetOrder(nil)
	_, ok = n.Order()
	assert.False(t, ok)

	assert.Greater(t, n.Version(), v)
}

func TestNode_ContentIsCopied(t *testing.T) {
	n := newTestNode(t, "n1", 0, 0)
	items := []string{"a", "b"}
	n.UpdateContent(Content{Items: items})

	items[0] = "changed"
	assert.Equal(t, "a", n.Content().Items[0])

	c := n.Content()
	c.Items[1] = "changed"
	assert.Equal(t, "b", n.Content().Items[1])
}

func TestNode_SnapshotRoundTrip(t *testing.T) {
	n := newTestNode(t, "n1", 12, 34)
	order := 2
	n.SetOrder(&order)
	n.UpdateContent(Content{Headers: []string{"h"}, Rows: [][]string{{"x"}}})

	restored, err := ReconstructNode(n.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, n.Snapshot(), restored.Snapshot())
}

func TestReconstructNode_RejectsInvalid(t *testing.T) {
	_, err := ReconstructNode(NodeData{ID: "", Type: NodeTypeText, Size: valueobjects.Size{Width: 1, Height: 1}})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = ReconstructNode(NodeData{ID: "n1", Type: NodeTypeText})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidSize))
}

func TestDefaults(t *testing.T) {
	for _, nt := range AllNodeTypes {
		assert.False(t, DefaultContent(nt).IsZero(), "content for %s", nt)
		assert.False(t, DefaultStyle(nt).IsZero(), "style for %s", nt)
	}
	assert.Equal(t, 1, DefaultContent(NodeTypeHeading).Level)
	assert.True(t, Content{}.IsZero())

	_, err := ParseNodeType("chart")
	assert.NoError(t, err)
	_, err = ParseNodeType("video")
	assert.Error(t, err)
}
