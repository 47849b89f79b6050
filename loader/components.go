package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	schemaloader "github.com/usna78/dbix-class-schema-loader"
)

// componentSet is the resolved form of the components option. The json and
// stringer components are built in; every other name must resolve to a
// <name>.go.tmpl file somewhere on the search path.
type componentSet struct {
	json      bool
	stringer  bool
	templates []*template.Template
}

func resolveComponents(names []string) (*componentSet, error) {
	set := &componentSet{}
	for _, name := range names {
		switch name {
		case "json":
			set.json = true
		case "stringer":
			set.stringer = true
		default:
			tmpl, err := loadComponentTemplate(name)
			if err != nil {
				return nil, err
			}
			set.templates = append(set.templates, tmpl)
		}
	}
	return set, nil
}

// loadComponentTemplate walks the search path for <name>.go.tmpl. The first
// hit wins, matching how earlier search directories shadow later ones.
func loadComponentTemplate(name string) (*template.Template, error) {
	dirs := schemaloader.SearchDirs()
	for _, dir := range dirs {
		path := filepath.Join(dir, name+".go.tmpl")
		content, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrComponentFailed, name, err)
		}
		tmpl, err := template.New(name).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrComponentFailed, name, err)
		}
		return tmpl, nil
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w: %s (no search directories configured)", ErrUnknownComponent, name)
	}
	return nil, fmt.Errorf("%w: %s (searched %s)", ErrUnknownComponent, name, strings.Join(dirs, ", "))
}

// render executes every template component against the table model and
// returns the concatenated output for the generated section.
func (s *componentSet) render(data *TableModel) ([]byte, error) {
	if len(s.templates) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	for _, tmpl := range s.templates {
		buf.WriteByte('\n')
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrComponentFailed, tmpl.Name(), err)
		}
		if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}
