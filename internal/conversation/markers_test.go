package conversation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMarkers_EmptyPathReturnsDefaults(t *testing.T) {
	m, err := LoadMarkers("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMarkers(), m)
}

func TestLoadMarkers_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.yaml")
	content := `interview_start:
  - "contame qué viste"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadMarkers(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"contame qué viste"}, m.InterviewStart)
	// unset fields keep defaults
	assert.Equal(t, DefaultMarkers().InterviewOngoing, m.InterviewOngoing)
}

func TestLoadMarkers_MissingFile(t *testing.T) {
	_, err := LoadMarkers(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMarkers_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interview_start: {nope"), 0o644))

	_, err := LoadMarkers(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal markers")
}
