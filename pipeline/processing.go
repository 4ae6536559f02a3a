package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/serisow/codedoc/finder"
)

// uploadPurpose is the purpose tag the hosted storage API expects for files
// destined for vector-store indexing.
const uploadPurpose = "assistants"

type uploadItem struct {
	// displayPath keys the recorded identifier; absPath is what gets read.
	displayPath string
	absPath     string
}

// uploadSet is the accumulated (path, identifier) outcome of the processing
// stage; persistence of the index happens in the upload stage.
type uploadSet struct {
	ids    []string
	byPath map[string]string
}

// runProcessingStage uploads artifacts to hosted storage one by one,
// accumulating the opaque identifiers per path.
func runProcessingStage(ctx context.Context, pctx *Context, files []finder.FileRecord) (StageResult, uploadSet) {
	stage := StageResult{Stage: StageProcessing}

	items := collectUploadItems(pctx, files)

	set := uploadSet{byPath: make(map[string]string, len(items))}
	for _, item := range items {
		result := ProcessingResult{InputPath: item.displayPath}

		id, err := pctx.VectorStore.UploadFile(ctx, item.absPath, uploadPurpose)
		if err != nil {
			result.Error = err.Error()
			stage.Append(result)
			pctx.Logger.Error("Failed to upload file",
				slog.String("path", item.displayPath),
				slog.String("error", result.Error))
			continue
		}

		result.FileID = id
		result.Success = true
		stage.Append(result)
		set.byPath[item.displayPath] = id
		set.ids = append(set.ids, id)
	}

	return stage, set
}

// collectUploadItems picks, per discovered file, the enhanced output when it
// exists and the original otherwise, then appends every generated
// supplementary and metadata document.
func collectUploadItems(pctx *Context, files []finder.FileRecord) []uploadItem {
	var items []uploadItem

	for _, rec := range files {
		enhanced := filepath.Join(pctx.EnhancedDir(), filepath.FromSlash(rec.Path))
		if _, err := os.Stat(enhanced); err == nil {
			items = append(items, uploadItem{displayPath: rec.Path, absPath: enhanced})
		} else {
			items = append(items, uploadItem{
				displayPath: rec.Path,
				absPath:     filepath.Join(pctx.Config.InputDir, filepath.FromSlash(rec.Path)),
			})
		}
	}

	for _, dir := range []string{pctx.SupplementaryDir(), pctx.TutorialsDir(), pctx.MetadataDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
				continue
			}
			abs := filepath.Join(dir, entry.Name())
			rel, err := filepath.Rel(pctx.Config.OutputDir, abs)
			if err != nil {
				rel = entry.Name()
			}
			items = append(items, uploadItem{displayPath: filepath.ToSlash(rel), absPath: abs})
		}
	}

	return items
}

func writeFileIDs(pctx *Context, fileIDs map[string]string) error {
	path := filepath.Join(pctx.VectorStoreDir(), "file_ids.json")

	if err := os.MkdirAll(pctx.VectorStoreDir(), 0755); err != nil {
		return &IOError{Path: path, Err: err}
	}

	data, err := json.MarshalIndent(fileIDs, "", "  ")
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}
