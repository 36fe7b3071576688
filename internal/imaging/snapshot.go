package imaging

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
)

// SnapshotResult lists the files written by Snapshot.
type SnapshotResult struct {
	// Dir is the directory the snapshot was written to.
	Dir string `json:"dir"`

	// Files are the written paths, sorted.
	Files []string `json:"files"`

	// Params is the parameter set the images were produced with.
	Params horizon.ParameterSet `json:"params"`
}

// Snapshot writes every stage image and the parameters under a fresh
// directory root/<uuid>. Images are saved as <stage>_snapshot.png and the
// parameters as params.json.
func Snapshot(root string, images map[string]image.Image, params horizon.ParameterSet) (*SnapshotResult, error) {
	dir := filepath.Join(root, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	stages := make([]string, 0, len(images))
	for stage := range images {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	files := make([]string, 0, len(images)+1)
	for _, stage := range stages {
		path := filepath.Join(dir, stage+"_snapshot.png")
		if err := imaging.Save(images[stage], path); err != nil {
			return nil, fmt.Errorf("failed to save %s: %w", stage, err)
		}
		files = append(files, path)
	}

	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}
	paramsPath := filepath.Join(dir, "params.json")
	if err := os.WriteFile(paramsPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write params: %w", err)
	}
	files = append(files, paramsPath)
	sort.Strings(files)

	return &SnapshotResult{Dir: dir, Files: files, Params: params}, nil
}
