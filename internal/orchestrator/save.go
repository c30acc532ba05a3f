package orchestrator

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mj1618/autodoc-cli/internal/analysis"
	"github.com/mj1618/autodoc-cli/internal/model"
)

var nameRe = regexp.MustCompile(`[^a-z0-9-_]+`)

// sanitizeName neutralizes path separators and parent-directory references
// before the name touches the filesystem, then slugs what is left.
func sanitizeName(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")
	s = strings.ToLower(s)
	s = nameRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	if len(s) > 40 {
		s = strings.TrimRight(s[:40], "-")
	}
	if s == "" {
		s = "capture"
	}
	return s
}

// save writes the run artifacts: one directory per run holding step images
// and the concatenated analysis document. Failure here is terminal and is
// not retried automatically.
func (o *Orchestrator) save(ctx context.Context) error {
	o.setState(func(s *State) {
		succeeded, failed := analysis.Summarize(o.results)
		*s = State{Phase: PhaseSaving, Succeeded: succeeded, Failed: failed}
	})

	location, err := o.writeArtifacts()
	if err != nil {
		return o.terminate(ctx, fmt.Errorf("%w: %v", model.ErrSaveFailed, err))
	}

	o.mu.Lock()
	succeeded, failed := analysis.Summarize(o.results)
	o.running = false
	o.state = State{Phase: PhaseCompleted, Succeeded: succeeded, Failed: failed, Location: location}
	snapshot := o.state
	o.mu.Unlock()
	o.notify(snapshot)
	return nil
}

func (o *Orchestrator) writeArtifacts() (string, error) {
	o.mu.Lock()
	job := o.job
	captured := o.captured
	results := make([]model.ImageProcessingResult, len(o.results))
	copy(results, o.results)
	o.mu.Unlock()

	return WriteRun(o.cfg.OutputRoot, job.OutputName, captured, results)
}

// WriteRun writes one run's artifact directory under root: step_<n>.png for
// each frame in order, plus documentation.md built from the analysis
// results. It returns the created directory.
func WriteRun(root, name string, captured []image.Image, results []model.ImageProcessingResult) (string, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(home, "Documents", "autodoc")
	}

	dirName := fmt.Sprintf("%s-%s", sanitizeName(name), time.Now().Format("2006-01-02-150405"))
	dir := filepath.Join(root, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	// Step images are named by their 1-based capture order.
	for i, frame := range captured {
		path := filepath.Join(dir, fmt.Sprintf("step_%d.png", i+1))
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		if err := png.Encode(f, frame); err != nil {
			f.Close()
			return "", fmt.Errorf("encode %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}
	}

	doc := buildDocument(name, results)
	docPath := filepath.Join(dir, "documentation.md")
	if err := os.WriteFile(docPath, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return dir, nil
}

// buildDocument concatenates per-step analysis text in step order. Results
// arrive sorted by index, so the document never reflects provider
// completion order.
func buildDocument(title string, results []model.ImageProcessingResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, r := range results {
		fmt.Fprintf(&b, "## Step %d\n\n", r.Index+1)
		switch r.Status {
		case model.StatusSuccess:
			b.WriteString(strings.TrimSpace(r.Text))
		default:
			fmt.Fprintf(&b, "_Analysis unavailable for this step (%s)._", r.Error)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}
