package imaging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
)

func TestSnapshot(t *testing.T) {
	root := t.TempDir()
	params := fitParams()

	images, err := RenderAll(stageInputs(t, params))
	require.NoError(t, err)

	res, err := Snapshot(root, images, params)
	require.NoError(t, err)

	assert.Equal(t, root, filepath.Dir(res.Dir))
	_, err = uuid.Parse(filepath.Base(res.Dir))
	assert.NoError(t, err, "snapshot directory is named by a uuid")

	require.Len(t, res.Files, len(Stages())+1)
	for _, stage := range Stages() {
		path := filepath.Join(res.Dir, stage+"_snapshot.png")
		assert.Contains(t, res.Files, path)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	data, err := os.ReadFile(filepath.Join(res.Dir, "params.json"))
	require.NoError(t, err)
	var got horizon.ParameterSet
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, params, got)
	assert.Equal(t, params, res.Params)
}

func TestSnapshot_DistinctDirectories(t *testing.T) {
	root := t.TempDir()
	images, err := RenderAll(stageInputs(t, fitParams()))
	require.NoError(t, err)

	first, err := Snapshot(root, images, fitParams())
	require.NoError(t, err)
	second, err := Snapshot(root, images, fitParams())
	require.NoError(t, err)

	assert.NotEqual(t, first.Dir, second.Dir)
}

func TestSnapshot_UnwritableRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := Snapshot(file, nil, fitParams())
	assert.Error(t, err)
}
