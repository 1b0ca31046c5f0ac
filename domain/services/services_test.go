package services

import (
	"testing"

	"slidecanvas/domain/core/entities"
	"slidecanvas/domain/core/valueobjects"

	"github.com/stretchr/testify/require"
)

func mustNode(t testing.TB, id string, nodeType entities.NodeType, x, y float64) *entities.Node {
	t.Helper()
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	n, err := entities.NewNode(nodeID, nodeType, valueobjects.Point{X: x, Y: y},
		valueobjects.Size{Width: 200, Height: 100}, entities.DefaultContent(nodeType), entities.DefaultStyle(nodeType))
	require.NoError(t, err)
	return n
}

func mustText(t testing.TB, id string, x, y float64) *entities.Node {
	t.Helper()
	return mustNode(t, id, entities.NodeTypeText, x, y)
}

func mustConn(t testing.TB, from, to *entities.Node) *entities.Connection {
	t.Helper()
	c, err := entities.NewConnection(valueobjects.NewConnectionID(), from.ID(), to.ID(),
		entities.ConnectionTypeFlow, entities.DefaultConnectionStyle())
	require.NoError(t, err)
	return c
}

func ids(nodes []*entities.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID().String()
	}
	return out
}
