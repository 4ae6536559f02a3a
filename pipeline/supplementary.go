package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/serisow/codedoc/finder"
	"github.com/serisow/codedoc/llm_service"
	"github.com/serisow/codedoc/prompts"
)

// sampledInput is the bounded slice of the codebase fed into project-level
// prompts: concatenated samples plus two structural views of the file list.
type sampledInput struct {
	contentSamples     string
	fileStructure      string
	directoryStructure string
}

func runSupplementaryStage(ctx context.Context, pctx *Context, files []finder.FileRecord) StageResult {
	stage := StageResult{Stage: StageSupplementary}

	samples := loadSamples(pctx, files)

	// FAQ
	stage.Append(generateAndPersist(ctx, pctx, "project_faq",
		filepath.Join(pctx.SupplementaryDir(), "project_faq.md"),
		prompts.FAQ, map[string]string{
			"project_name":    pctx.Config.ProjectName,
			"num_questions":   strconv.Itoa(pctx.Config.NumQuestions),
			"content_samples": samples.contentSamples,
		}))

	// Architecture diagram
	stage.Append(generateAndPersist(ctx, pctx, "architecture",
		filepath.Join(pctx.SupplementaryDir(), "architecture.md"),
		prompts.ArchitectureDiagram, map[string]string{
			"project_name":        pctx.Config.ProjectName,
			"directory_structure": samples.directoryStructure,
			"content_samples":     samples.contentSamples,
		}))

	// Tutorials: topics first, then one body per topic.
	topics, usage, err := generateTutorialTopics(ctx, pctx, samples.fileStructure, pctx.Config.NumTutorials)
	topicsResult := ProcessingResult{InputPath: "tutorial_topics", Usage: usage}
	if err != nil {
		topicsResult.Error = err.Error()
		pctx.Logger.Error("Failed to generate tutorial topics", slog.String("error", err.Error()))
	} else {
		topicsResult.Success = true
	}
	stage.Append(topicsResult)

	for i, topic := range topics {
		name := fmt.Sprintf("tutorial: %s", topic)
		outPath := filepath.Join(pctx.TutorialsDir(), fmt.Sprintf("%02d-%s.md", i+1, slugify(topic)))
		stage.Append(generateAndPersist(ctx, pctx, name, outPath,
			prompts.TutorialBody, map[string]string{
				"project_name":    pctx.Config.ProjectName,
				"tutorial_topic":  topic,
				"content_samples": samples.contentSamples,
			}))
	}

	return stage
}

// generateAndPersist renders, generates and writes one supplementary
// document, mapping any failure into the returned result.
func generateAndPersist(ctx context.Context, pctx *Context, name, outPath string, tmpl prompts.Template, vars map[string]string) ProcessingResult {
	result := ProcessingResult{InputPath: name}

	content, usage, err := generateDocument(ctx, pctx, tmpl, vars)
	result.Usage = usage
	if err != nil {
		result.Error = err.Error()
		pctx.Logger.Error("Failed to generate supplementary document",
			slog.String("document", name),
			slog.String("error", result.Error))
		return result
	}

	if err := writeOutputFile(outPath, content); err != nil {
		result.Error = (&IOError{Path: outPath, Err: err}).Error()
		return result
	}

	result.OutputPath = outPath
	result.Success = true
	pctx.Logger.Info("Generated supplementary document",
		slog.String("document", name),
		slog.Int("total_tokens", usage.TotalTokens))
	return result
}

// generateDocument is the pure transformation (prompt inputs) -> text;
// persistence stays with the caller.
func generateDocument(ctx context.Context, pctx *Context, tmpl prompts.Template, vars map[string]string) (string, llm_service.Usage, error) {
	system, user, err := prompts.Render(tmpl, vars)
	if err != nil {
		return "", llm_service.Usage{}, &ConfigurationError{Reason: err.Error()}
	}

	completion, err := pctx.LLM.Generate(ctx, completionRequest(pctx, system, user))
	if err != nil {
		return "", llm_service.Usage{}, &ProviderError{Path: "supplementary", Err: err}
	}

	return completion.Content, completion.Usage, nil
}

// generateTutorialTopics enforces the exact-count contract: over-production
// is truncated, under-production triggers a single re-request, and a
// persistent shortfall fails the item.
func generateTutorialTopics(ctx context.Context, pctx *Context, fileStructure string, count int) ([]string, llm_service.Usage, error) {
	var usage llm_service.Usage
	vars := map[string]string{
		"project_name":   pctx.Config.ProjectName,
		"num_tutorials":  strconv.Itoa(count),
		"file_structure": fileStructure,
	}

	for attempt := 1; attempt <= 2; attempt++ {
		raw, u, err := generateDocument(ctx, pctx, prompts.TutorialTopics, vars)
		usage.Add(u)
		if err != nil {
			return nil, usage, err
		}

		topics := prompts.ParseTopics(raw)
		if len(topics) >= count {
			return topics[:count], usage, nil
		}

		pctx.Logger.Warn("Tutorial topics under-produced, re-requesting",
			slog.Int("attempt", attempt),
			slog.Int("wanted", count),
			slog.Int("got", len(topics)))
	}

	return nil, usage, fmt.Errorf("expected %d tutorial topics, provider kept under-producing", count)
}

// loadSamples concatenates the first files in traversal order, each capped
// at the byte budget, and builds the structural views from the full list.
func loadSamples(pctx *Context, files []finder.FileRecord) sampledInput {
	cfg := pctx.Config

	var samples strings.Builder
	sampled := 0
	for _, rec := range files {
		if sampled >= cfg.SampleFileCount {
			break
		}

		content, err := readTextFile(cfg.InputDir, rec.Path)
		if err != nil {
			// Binary or unreadable files simply drop out of the sample.
			pctx.Logger.Debug("Skipping file in supplementary sample",
				slog.String("path", rec.Path),
				slog.String("error", err.Error()))
			continue
		}

		if len(content) > cfg.SampleMaxBytes {
			content = content[:cfg.SampleMaxBytes] + "\n... (truncated)"
		}

		fmt.Fprintf(&samples, "--- %s ---\n%s\n\n", rec.Path, content)
		sampled++
	}

	paths := make([]string, len(files))
	for i, rec := range files {
		paths[i] = rec.Path
	}

	return sampledInput{
		contentSamples:     samples.String(),
		fileStructure:      strings.Join(paths, "\n"),
		directoryStructure: directoryTree(paths),
	}
}

// directoryTree renders the set of parent directories with their files, one
// level of indentation per path segment.
func directoryTree(paths []string) string {
	byDir := make(map[string][]string)
	for _, p := range paths {
		dir := path.Dir(p)
		byDir[dir] = append(byDir[dir], path.Base(p))
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var tree strings.Builder
	for _, dir := range dirs {
		indent := ""
		if dir != "." {
			indent = strings.Repeat("  ", strings.Count(dir, "/")+1)
			fmt.Fprintf(&tree, "%s/\n", dir)
		}
		for _, name := range byDir[dir] {
			fmt.Fprintf(&tree, "%s%s\n", indent, name)
		}
	}
	return tree.String()
}

var slugReplacer = strings.NewReplacer(" ", "-", "/", "-", ":", "", ",", "", "'", "", "\"", "")

func slugify(topic string) string {
	slug := strings.ToLower(strings.TrimSpace(topic))
	slug = slugReplacer.Replace(slug)
	if runes := []rune(slug); len(runes) > 60 {
		slug = string(runes[:60])
	}
	return slug
}
