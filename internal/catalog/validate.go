package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

const schemaURL = "https://warncodes.local/catalog.schema.json"

// Problem is a single defect found in a catalog document.
type Problem struct {
	Category domain.Category `json:"category,omitempty"`
	Index    int             `json:"index"` // -1 when the problem is not tied to an entry
	Code     string          `json:"code,omitempty"`
	Message  string          `json:"message"`
}

func (p Problem) String() string {
	var b strings.Builder
	if p.Category != "" {
		b.WriteString(string(p.Category))
		if p.Index >= 0 {
			fmt.Fprintf(&b, "[%d]", p.Index)
		}
		if p.Code != "" {
			fmt.Fprintf(&b, " code %s", p.Code)
		}
		b.WriteString(": ")
	}
	b.WriteString(p.Message)
	return b.String()
}

// ValidationError reports every problem found while loading a document.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid catalog: " + e.Problems[0].String()
	}
	return fmt.Sprintf("invalid catalog: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("catalog schema load failed: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("catalog schema compile failed: %w", err)
	}
	return s, nil
})

// Validate checks a document against the catalog schema and the rules the
// schema cannot express. It returns all problems; an empty result means the
// document is valid.
func Validate(doc []byte, f Format) []Problem {
	normalized, err := toJSON(doc, f)
	if err != nil {
		return []Problem{{Index: -1, Message: err.Error()}}
	}

	schema, err := compileSchema()
	if err != nil {
		return []Problem{{Index: -1, Message: err.Error()}}
	}

	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return []Problem{{Index: -1, Message: fmt.Sprintf("parse document: %v", err)}}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return []Problem{{Index: -1, Message: "parse document: unexpected data after the top-level object"}}
	}

	var problems []Problem
	if err := schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return []Problem{{Index: -1, Message: err.Error()}}
		}
		problems = append(problems, schemaProblems(verr, instance)...)
	}

	var raw rawDocument
	if err := json.Unmarshal(normalized, &raw); err != nil {
		// The schema lets through numbers such as 1.0 that do not fit the
		// entry fields.
		return append(problems, Problem{Index: -1, Message: fmt.Sprintf("parse document: %v", err)})
	}
	return append(problems, semanticProblems(&raw)...)
}

// semanticProblems enforces per-category uniqueness of codes and restricts
// null levels to test entries.
func semanticProblems(d *rawDocument) []Problem {
	var problems []Problem
	for _, c := range domain.Categories() {
		seen := make(map[string]int)
		for i, e := range *d.slot(c) {
			if e.Code != "" {
				if first, dup := seen[e.Code]; dup {
					problems = append(problems, Problem{
						Category: c, Index: i, Code: e.Code,
						Message: fmt.Sprintf("duplicate code, first defined at index %d", first),
					})
				} else {
					seen[e.Code] = i
				}
			}
			if e.Level == nil && c != domain.CategoryTestwarnungen {
				problems = append(problems, Problem{
					Category: c, Index: i, Code: e.Code,
					Message: "level is required outside testwarnungen",
				})
			}
		}
	}
	return problems
}

// schemaProblems flattens a schema error tree into its leaf causes.
func schemaProblems(verr *jsonschema.ValidationError, instance any) []Problem {
	var leaves []*jsonschema.ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			leaves = append(leaves, e)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)

	problems := make([]Problem, 0, len(leaves))
	seen := make(map[string]bool)
	for _, leaf := range leaves {
		p := problemAt(leaf.InstanceLocation, instance)
		p.Message = leaf.Message
		key := p.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		problems = append(problems, p)
	}
	return problems
}

// problemAt resolves a JSON pointer like "/warnungen/3/level" to a Problem
// with category, index and, when available, the entry's code.
func problemAt(pointer string, instance any) Problem {
	p := Problem{Index: -1}
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return p
	}
	p.Category = domain.Category(parts[0])
	if len(parts) < 2 {
		return p
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil {
		return p
	}
	p.Index = i

	root, _ := instance.(map[string]any)
	items, _ := root[parts[0]].([]any)
	if i < len(items) {
		if entry, ok := items[i].(map[string]any); ok {
			if code, ok := entry["code"].(string); ok {
				p.Code = code
			}
		}
	}
	return p
}

// toJSON converts a document to JSON bytes so every format is validated by
// the same schema.
func toJSON(doc []byte, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return doc, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("parse yaml document: %w", err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("convert yaml document: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot load catalog from %s", f)
	}
}
