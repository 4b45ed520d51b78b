package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dtnitsch/bbs-archive-parser/models"
	"gopkg.in/yaml.v3"
)

// Directory reads documents stored as <dir>/<reid>.yaml, one RawDocument per
// file. It is used for fixtures and offline inspection.
type Directory struct {
	dir string
}

// OpenDirectory returns a Directory source rooted at dir.
func OpenDirectory(dir string) (*Directory, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &Directory{dir: dir}, nil
}

// ReadFile decodes a single RawDocument from a YAML file.
func ReadFile(path string) (*models.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc := &models.RawDocument{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return doc, nil
}

func (d *Directory) files() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	var names []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (d *Directory) Count(_ context.Context, reids []string) (int, error) {
	if len(reids) > 0 {
		return len(reids), nil
	}
	names, err := d.files()
	return len(names), err
}

func (d *Directory) Documents(ctx context.Context, reids []string, fn func(*models.RawDocument) error) error {
	var paths []string
	if len(reids) > 0 {
		for _, r := range reids {
			paths = append(paths, filepath.Join(d.dir, strings.TrimSpace(r)+".yaml"))
		}
	} else {
		names, err := d.files()
		if err != nil {
			return err
		}
		for _, n := range names {
			paths = append(paths, filepath.Join(d.dir, n))
		}
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := ReadFile(p)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

func (d *Directory) Document(_ context.Context, reid string) (*models.RawDocument, error) {
	return ReadFile(filepath.Join(d.dir, strings.TrimSpace(reid)+".yaml"))
}

func (d *Directory) Close(context.Context) error { return nil }
