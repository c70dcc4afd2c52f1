package batch

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON schema job files are validated against.
func Schema() []byte {
	return schemaJSON
}

// Job is a batch of plots over one data file.
type Job struct {
	Data      string         `yaml:"data" json:"data"`
	Sheet     string         `yaml:"sheet,omitempty" json:"sheet,omitempty"`
	OutputDir string         `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
	Format    string         `yaml:"format,omitempty" json:"format,omitempty"`
	Theme     string         `yaml:"theme,omitempty" json:"theme,omitempty"`
	Style     *StyleOverride `yaml:"style,omitempty" json:"style,omitempty"`
	Plots     []Plot         `yaml:"plots" json:"plots"`
}

// LoadJob reads and validates a YAML or JSON job file. Relative data and
// output paths are resolved against the file's directory.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}

	job, err := ParseJob(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)

	if !filepath.IsAbs(job.Data) {
		job.Data = filepath.Join(base, job.Data)
	}

	if job.OutputDir == "" {
		job.OutputDir = base
	} else if !filepath.IsAbs(job.OutputDir) {
		job.OutputDir = filepath.Join(base, job.OutputDir)
	}

	return job, nil
}

// ParseJob decodes a YAML (or JSON) document, checks it against Schema and
// names unnamed plots "{kind}-{index}".
func ParseJob(data []byte) (*Job, error) {
	var doc any

	unmarshalErr := yaml.Unmarshal(data, &doc)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("parse job: %w", unmarshalErr)
	}

	doc = normalize(doc)

	validateErr := validateDocument(doc)
	if validateErr != nil {
		return nil, validateErr
	}

	// Round-trip through JSON so the typed decode sees exactly what the
	// schema accepted.
	raw, marshalErr := json.Marshal(doc)
	if marshalErr != nil {
		return nil, fmt.Errorf("encode job: %w", marshalErr)
	}

	var job Job

	decodeErr := json.Unmarshal(raw, &job)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode job: %w", decodeErr)
	}

	if len(job.Plots) == 0 {
		return nil, ErrEmptyPlotsList
	}

	seen := make(map[string]bool, len(job.Plots))

	for i := range job.Plots {
		p := &job.Plots[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("%s-%d", p.Kind, i+1)
		}

		if seen[p.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlot, p.Name)
		}

		seen[p.Name] = true
	}

	return &job, nil
}

// ValidatePlot checks a single plot against the plot part of Schema.
func ValidatePlot(p Plot) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode plot: %w", err)
	}

	var doc any

	if err = json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode plot: %w", err)
	}

	return validateDocument(map[string]any{"data": "-", "plots": []any{doc}})
}

func validateDocument(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate job: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, verr.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidJob, strings.Join(msgs, "; "))
}

// normalize converts the map[any]any nodes some YAML inputs produce into
// map[string]any, which JSON encoding requires.
func normalize(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = normalize(child)
		}

		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = normalize(child)
		}

		return out
	case []any:
		for i, child := range node {
			node[i] = normalize(child)
		}

		return node
	default:
		return v
	}
}
