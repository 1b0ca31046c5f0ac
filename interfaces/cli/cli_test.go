package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storyYAML = `id: 7b0c1e2a-4a55-4a41-9d4b-3f2b4a6f9c01
name: Launch story
nodes:
  - id: intro
    type: heading
    position: {x: 0, y: 0}
    size: {width: 300, height: 120}
    content: {text: Launch, level: 1}
  - id: problem
    type: text
    position: {x: 400, y: 0}
    size: {width: 300, height: 120}
    content: {text: The problem}
  - id: demo
    type: code
    position: {x: 800, y: 0}
    size: {width: 300, height: 160}
    content: {code: "fmt.Println(1)", language: go}
connections:
  - id: c1
    start_node_id: intro
    end_node_id: problem
  - id: c2
    start_node_id: problem
    end_node_id: demo
  - id: c3
    start_node_id: demo
    end_node_id: ghost
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config-dir", t.TempDir(), "--env", "test"))
	err := cmd.Execute()
	return out.String(), err
}

func writeStory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "story.yaml")
	require.NoError(t, os.WriteFile(path, []byte(storyYAML), 0o644))
	return path
}

func TestAnalyze(t *testing.T) {
	out, err := run(t, "analyze", writeStory(t))
	require.NoError(t, err)

	assert.Contains(t, out, "dropped 1 connection")
	assert.Contains(t, out, "analysis of Launch story")
	assert.Contains(t, out, "intro → problem → demo")
	assert.Contains(t, out, "recommended:")
	assert.Contains(t, out, "reveal")
	assert.Contains(t, out, "impress")
}

func TestRender_WritesFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "deck.html")
	out, err := run(t, "render", writeStory(t), "--engine", "reveal", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "3 slides on reveal")

	html, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Launch story")
}

func TestRender_UnknownEngine(t *testing.T) {
	_, err := run(t, "render", writeStory(t), "--engine", "keynote")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keynote")
}

func TestSnapshot_Stdout(t *testing.T) {
	out, err := run(t, "snapshot", writeStory(t), "--width", "640", "--height", "360")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "<svg"), out)
	assert.Contains(t, out, `width="640"`)
	assert.Contains(t, out, "[go] fmt.Println(1)")
}

func TestSnapshot_RejectsSize(t *testing.T) {
	_, err := run(t, "snapshot", writeStory(t), "--width", "0")
	assert.Error(t, err)
}

func TestTemplates(t *testing.T) {
	out, err := run(t, "templates")
	require.NoError(t, err)
	for _, name := range []string{"branching-story", "grid-gallery", "title-agenda"} {
		assert.Contains(t, out, name)
	}
}

func TestReadDocument_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"7b0c1e2a-4a55-4a41-9d4b-3f2b4a6f9c01","name":"J","nodes":[],"connections":[]}`), 0o644))
	doc, err := readDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "J", doc.Name)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, err = readDocument(path)
	assert.Error(t, err)
}
