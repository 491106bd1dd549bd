package seed

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/google/uuid"

	"github.com/garunski/extension-conductor/pkg/framework/webstore"
)

// TemplateContext is the data a seed template executes against.
type TemplateContext struct {
	Values map[string]interface{} // .Values.appName, .Values.appVersion, ...
	Files  *FileSystem            // .Files.Get
}

// FileSystem gives templates read access to files next to the seeds.
type FileSystem struct {
	fsys     fs.FS
	rootPath string
}

// Get reads a file relative to the seed root, "" when it cannot.
func (f *FileSystem) Get(name string) string {
	if f == nil || f.fsys == nil {
		return ""
	}

	data, err := fs.ReadFile(f.fsys, path.Join(f.rootPath, name))
	if err != nil {
		return ""
	}
	return string(data)
}

// buildTemplateFuncMap merges the sprig functions (without env access), the
// seed helpers and customFuncs, which take priority.
func buildTemplateFuncMap(customFuncs template.FuncMap) template.FuncMap {
	funcMap := template.FuncMap{
		"defaultIfEmpty": func(value, defaultValue string) string {
			if value == "" {
				return defaultValue
			}
			return value
		},
		// storeURL canonicalizes a listing URL or bare id, "" when unknown.
		"storeURL": webstore.NormalizeURL,
		"crxURL": func(id string) string {
			u, _ := webstore.CRXURL(id, "")
			return u
		},
	}

	sprigFuncs := sprig.FuncMap()
	delete(sprigFuncs, "env")
	delete(sprigFuncs, "expandenv")
	for k, v := range sprigFuncs {
		funcMap[k] = v
	}

	funcMap["uuidv5"] = func(namespaceUUID, name string) string {
		if namespaceUUID == "" {
			namespaceUUID = uuid.NameSpaceURL.String()
		}
		nsUUID, err := uuid.Parse(namespaceUUID)
		if err != nil {
			return ""
		}
		return uuid.NewSHA1(nsUUID, []byte(name)).String()
	}

	for k, v := range customFuncs {
		funcMap[k] = v
	}

	return funcMap
}

// RenderTemplate executes a seed file as a text/template.
func RenderTemplate(ctx context.Context, seedBytes []byte, values map[string]interface{}, files *FileSystem, customFuncs template.FuncMap) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if values == nil {
		values = make(map[string]interface{})
	}
	templateCtx := &TemplateContext{
		Values: values,
		Files:  files,
	}

	tmpl, err := template.New("seed").Funcs(buildTemplateFuncMap(customFuncs)).Option("missingkey=zero").Parse(string(seedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateCtx); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.Bytes(), nil
}
