package seed

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
)

// Options tune how seed files are rendered.
type Options struct {
	Values map[string]interface{}
	Funcs  template.FuncMap
}

// LoadPath loads seeds from a single YAML file or from every YAML file under
// a directory.
func LoadPath(ctx context.Context, p string, opts Options) ([]extensions.Entry, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to stat seed path %s: %w", p, err)
	}

	if info.IsDir() {
		return LoadFS(ctx, os.DirFS(p), ".", opts)
	}
	return LoadFS(ctx, os.DirFS(filepath.Dir(p)), filepath.Base(p), opts)
}

// LoadFS renders and parses the seed files under root in lexical order.
// Files that render to whitespace are skipped. An id defined by two files is
// an error.
func LoadFS(ctx context.Context, fsys fs.FS, root string, opts Options) ([]extensions.Entry, error) {
	if root == "" {
		root = "."
	}

	files, err := ListFiles(fsys, root)
	if err != nil {
		return nil, err
	}

	fileSystem := &FileSystem{fsys: fsys, rootPath: seedDir(fsys, root)}

	var entries []extensions.Entry
	seen := make(map[string]string)
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		rendered, err := RenderTemplate(ctx, data, opts.Values, fileSystem, opts.Funcs)
		if err != nil {
			return nil, fmt.Errorf("failed to render seed %s: %w", name, err)
		}
		if strings.TrimSpace(string(rendered)) == "" {
			continue
		}

		parsed, err := extensions.LoadEntriesYAML(rendered)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", name, err)
		}
		for _, e := range parsed {
			if prev, ok := seen[e.ID]; ok {
				return nil, fmt.Errorf("%w: extension %s defined in both %s and %s", apperrors.ErrInvalid, e.ID, prev, name)
			}
			seen[e.ID] = name
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// ListFiles returns the YAML files under root. A root naming a file returns
// that file alone.
func ListFiles(fsys fs.FS, root string) ([]string, error) {
	if _, err := fs.Stat(fsys, root); err != nil {
		return nil, fmt.Errorf("seed root %q does not exist: %w", root, err)
	}

	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(p, ".yaml") || strings.HasSuffix(p, ".yml") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk seeds: %w", err)
	}

	return files, nil
}

func seedDir(fsys fs.FS, root string) string {
	if info, err := fs.Stat(fsys, root); err == nil && !info.IsDir() {
		return path.Dir(root)
	}
	return root
}
