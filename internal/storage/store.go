// Package storage keeps rendered artifacts under one root directory and
// archives the package published alongside each of them.
package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/export"
	"github.com/orgball2608/reel-studio/internal/mediaio"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

const (
	artifactsDir = "artifacts"
	packagesDir  = "packages"
)

type Store struct {
	log  logger.Logger
	root string
}

var _ export.Sink = (*Store)(nil)

func NewStore(log logger.Logger, root string) (*Store, error) {
	s := &Store{log: log.WithComponent("storage"), root: root}
	for _, dir := range []string{s.ArtifactsDir(), filepath.Join(root, packagesDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s", dir)
		}
	}
	return s, nil
}

// ArtifactsDir is where encoders write their output.
func (s *Store) ArtifactsDir() string {
	return filepath.Join(s.root, artifactsDir)
}

func (s *Store) Name() string {
	return "storage"
}

// Publish archives the package manifest next to the stored artifact so the
// composition can be re-rendered later.
func (s *Store) Publish(_ context.Context, pkg domain.Package) error {
	path := mediaio.Resolve("", pkg.Artifact.URI)
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(errors.ErrNotFound, "artifact %s", pkg.Artifact.URI)
	}
	dir := filepath.Join(s.root, packagesDir, pkg.ProjectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create package directory")
	}
	body, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode package")
	}
	name := filepath.Join(dir, artifactName(path)+".json")
	if err := os.WriteFile(name, body, 0o644); err != nil {
		return errors.Wrap(err, "write package")
	}
	s.log.Info("Package archived", "project", pkg.ProjectID, "path", name)
	return nil
}

// Sweep removes artifacts last modified before cutoff unless keep holds
// their URI, along with their archived packages. It returns how many
// artifacts were removed.
func (s *Store) Sweep(ctx context.Context, cutoff time.Time, keep map[string]bool) (int, error) {
	entries, err := os.ReadDir(s.ArtifactsDir())
	if err != nil {
		return 0, errors.Wrap(err, "list artifacts")
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		path := filepath.Join(s.ArtifactsDir(), entry.Name())
		if keep[mediaio.URI(path)] {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			s.log.Warn("Failed to remove artifact", "path", path, "error", err)
			continue
		}
		s.removePackages(artifactName(path))
		removed++
	}
	return removed, nil
}

func (s *Store) removePackages(name string) {
	matches, err := filepath.Glob(filepath.Join(s.root, packagesDir, "*", name+".json"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			s.log.Warn("Failed to remove package", "path", m, "error", err)
		}
	}
}

// artifactName strips the extension and any staging dot prefix.
func artifactName(path string) string {
	base := filepath.Base(path)
	return strings.TrimPrefix(strings.TrimSuffix(base, filepath.Ext(base)), ".")
}
