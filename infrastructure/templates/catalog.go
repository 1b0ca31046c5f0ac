// Package templates serves the built-in canvas templates. Templates are YAML
// documents embedded into the binary.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"slidecanvas/application/ports"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var builtin embed.FS

// Catalog is a read-only ports.TemplateCatalog
type Catalog struct {
	templates map[string]ports.Template
	infos     []ports.TemplateInfo
}

var _ ports.TemplateCatalog = (*Catalog)(nil)

// Builtin loads the embedded catalogue
func Builtin() (*Catalog, error) {
	sub, err := fs.Sub(builtin, "catalog")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every .yaml file at the root of fsys. Names must be unique.
func Load(fsys fs.FS) (*Catalog, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	c := &Catalog{templates: make(map[string]ports.Template, len(files))}
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", file, err)
		}
		var t ports.Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		if t.Name == "" {
			t.Name = trimExt(file)
		}
		if _, dup := c.templates[t.Name]; dup {
			return nil, fmt.Errorf("duplicate template name %q in %s", t.Name, file)
		}
		t.NodeCount = len(t.Nodes)
		t.ConnectionCount = len(t.Connections)
		c.templates[t.Name] = t
		c.infos = append(c.infos, t.TemplateInfo)
	}
	sort.Slice(c.infos, func(i, j int) bool { return c.infos[i].Name < c.infos[j].Name })
	return c, nil
}

func (c *Catalog) List() []ports.TemplateInfo {
	return append([]ports.TemplateInfo(nil), c.infos...)
}

func (c *Catalog) Get(name string) (ports.Template, bool) {
	t, ok := c.templates[name]
	return t, ok
}

func trimExt(file string) string {
	return file[:len(file)-len(path.Ext(file))]
}
