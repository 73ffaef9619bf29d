package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/diagnostics"
	"github.com/nix-mox/moxlint/internal/domain/quickfix"
)

// FixService applies quick fixes and formatter edits to scripts on disk.
type FixService struct {
	lint *LintService
}

func NewFixService(lint *LintService) *FixService {
	return &FixService{lint: lint}
}

// Fix applies every available quick fix to the selected scripts. With
// dryRun set nothing is written.
func (s *FixService) Fix(ctx context.Context, root string, opts LintOptions, dryRun bool) ([]domain.FileEdits, error) {
	cfg, err := s.lint.configLoader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return s.rewrite(ctx, root, cfg, opts, dryRun, func(doc domain.Document) []domain.Edit {
		return quickfix.FixAll(cfg.Apply(diagnostics.ScanDocument(doc)), doc)
	})
}

// Format applies the formatter to the selected scripts. With dryRun set
// nothing is written, which is how a check-only run works.
func (s *FixService) Format(ctx context.Context, root string, opts LintOptions, dryRun bool) ([]domain.FileEdits, error) {
	cfg, err := s.lint.configLoader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return s.rewrite(ctx, root, cfg, opts, dryRun, quickfix.Format)
}

func (s *FixService) rewrite(
	ctx context.Context,
	root string,
	cfg domain.LintConfig,
	opts LintOptions,
	dryRun bool,
	plan func(domain.Document) []domain.Edit,
) ([]domain.FileEdits, error) {
	targets, err := s.lint.targets(root, cfg, opts)
	if err != nil {
		return nil, err
	}

	var out []domain.FileEdits
	for _, rel := range targets {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		path := absPath(root, rel)
		info, err := os.Stat(path)
		if err != nil {
			return out, fmt.Errorf("reading %s: %w", rel, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return out, fmt.Errorf("reading %s: %w", rel, err)
		}

		doc := domain.NewDocument(string(data))
		edits := plan(doc)
		if len(edits) == 0 {
			continue
		}
		fe := domain.FileEdits{Path: rel, Edits: edits}

		if !dryRun {
			text, err := quickfix.Apply(doc, edits)
			if err != nil {
				return out, fmt.Errorf("applying edits to %s: %w", rel, err)
			}
			if err := os.WriteFile(path, []byte(text), info.Mode().Perm()); err != nil {
				return out, fmt.Errorf("writing %s: %w", rel, err)
			}
			fe.Written = true
			slog.Info("rewrote script", "path", rel, "edits", len(edits))
		}
		out = append(out, fe)
	}
	return out, nil
}
