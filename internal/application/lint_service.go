package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/diagnostics"
	"golang.org/x/sync/errgroup"
)

// LintOptions selects which scripts a lint run covers.
type LintOptions struct {
	// Paths are files or directories; empty means the whole workspace.
	Paths []string
	// Changed limits the run to modified and untracked scripts.
	Changed bool
	// Record appends a summary of the run to the lint history.
	Record bool
}

// LintService orchestrates the lint pipeline:
// load config → resolve targets → scan in parallel → apply config → record.
type LintService struct {
	scanner      domain.ScriptScanner
	configLoader domain.ConfigLoader
	git          domain.GitInfo
	history      domain.LintHistory
	parallel     int
}

func NewLintService(
	scanner domain.ScriptScanner,
	configLoader domain.ConfigLoader,
	git domain.GitInfo,
	history domain.LintHistory,
	parallel int,
) *LintService {
	if parallel < 1 {
		parallel = 1
	}
	return &LintService{
		scanner:      scanner,
		configLoader: configLoader,
		git:          git,
		history:      history,
		parallel:     parallel,
	}
}

// LintWorkspace lints the scripts selected by opts under root. Files are
// reported in path order regardless of scheduling.
func (s *LintService) LintWorkspace(ctx context.Context, root string, opts LintOptions) (*domain.LintReport, error) {
	cfg, err := s.configLoader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	targets, err := s.targets(root, cfg, opts)
	if err != nil {
		return nil, err
	}
	slog.Debug("linting", "root", root, "files", len(targets), "parallel", s.parallel)

	files := make([]domain.FileFindings, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, rel := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(absPath(root, rel))
			if err != nil {
				return fmt.Errorf("reading %s: %w", rel, err)
			}
			doc := domain.NewDocument(string(data))
			files[i] = domain.FileFindings{
				Path:     rel,
				Findings: cfg.Apply(diagnostics.ScanDocument(doc)),
				Lines:    doc.Lines(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &domain.LintReport{Files: files}
	if opts.Record {
		if err := s.record(root, report); err != nil {
			return report, fmt.Errorf("recording history: %w", err)
		}
	}
	return report, nil
}

// LintText scans an in-memory document with the workspace config applied.
// A broken config falls back to the defaults so editing keeps working.
func (s *LintService) LintText(root, text string) []domain.Finding {
	cfg := domain.DefaultLintConfig()
	if root != "" {
		loaded, err := s.configLoader.Load(root)
		if err != nil {
			slog.Warn("ignoring workspace config", "root", root, "error", err)
		} else {
			cfg = loaded
		}
	}
	return cfg.Apply(diagnostics.Scan(text))
}

// History returns the recorded lint summaries for root.
func (s *LintService) History(root string) ([]domain.LintSummary, error) {
	return s.history.Load(root)
}

func (s *LintService) targets(root string, cfg domain.LintConfig, opts LintOptions) ([]string, error) {
	if opts.Changed {
		changed, err := s.git.ChangedScripts(root)
		if err != nil {
			return nil, fmt.Errorf("listing changed scripts: %w", err)
		}
		var out []string
		for _, rel := range changed {
			if !cfg.IsExcluded(rel) {
				out = append(out, rel)
			}
		}
		return out, nil
	}

	if len(opts.Paths) == 0 {
		files, err := s.scanner.Scan(root, cfg)
		if err != nil {
			return nil, fmt.Errorf("scanning workspace: %w", err)
		}
		return files, nil
	}

	seen := map[string]bool{}
	var out []string
	add := func(rel string) {
		if !seen[rel] {
			seen[rel] = true
			out = append(out, rel)
		}
	}
	for _, p := range opts.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			if !domain.IsNushellScript(abs) {
				return nil, fmt.Errorf("%s: %w", p, domain.ErrNotNushellScript)
			}
			add(relToRoot(root, abs))
			continue
		}
		files, err := s.scanner.Scan(abs, cfg)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		for _, f := range files {
			add(relToRoot(root, filepath.Join(abs, filepath.FromSlash(f))))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *LintService) record(root string, report *domain.LintReport) error {
	errs, warns, infos := report.Counts()
	entry := domain.LintSummary{
		Timestamp: time.Now().UTC(),
		Files:     len(report.Files),
		Errors:    errs,
		Warnings:  warns,
		Infos:     infos,
	}
	if hash, err := s.git.CommitHash(root); err == nil {
		entry.CommitHash = hash
	}
	return s.history.Save(root, entry)
}
