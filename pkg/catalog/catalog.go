// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"healing-guide/internal/common/validation"
)

var schema = validation.MustCompile("library-catalog", documentSchema)

// Problem is one reason a catalog cannot be indexed.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return p.Field + ": " + p.Message
}

// LoadCatalog reads and validates a catalog file. Validation problems are
// returned alongside the decoded catalog so callers can report all of them.
func LoadCatalog(path string) (*Catalog, []Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Parse(data)
}

// Parse validates raw against the catalog schema, decodes it and applies
// the checks a schema cannot express.
func Parse(raw []byte) (*Catalog, []Problem, error) {
	result := schema.ValidateBytes(raw)
	if !result.Valid {
		problems := make([]Problem, 0, len(result.Errors))
		for _, e := range result.Errors {
			problems = append(problems, Problem{Field: e.Field, Message: e.Message})
		}
		return nil, problems, nil
	}

	var cat Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &cat, Check(&cat), nil
}

// Check applies the semantic rules: unique ids, trimmed titles and
// absolute http(s) or site-relative urls.
func Check(cat *Catalog) []Problem {
	var problems []Problem
	seen := make(map[string]int, len(cat.Items))

	for i, item := range cat.Items {
		field := fmt.Sprintf("items.%d", i)

		if first, dup := seen[item.ID]; dup {
			problems = append(problems, Problem{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate id %q, first used by items.%d", item.ID, first),
			})
		} else {
			seen[item.ID] = i
		}

		if strings.TrimSpace(item.Title) != item.Title {
			problems = append(problems, Problem{Field: field + ".title", Message: "has leading or trailing whitespace"})
		}
		if item.Category != strings.ToLower(item.Category) {
			problems = append(problems, Problem{Field: field + ".category", Message: "must be lowercase"})
		}
		if item.URL != "" && !validURL(item.URL) {
			problems = append(problems, Problem{Field: field + ".url", Message: "must be an http(s) url or start with /"})
		}
		if item.ContentType == "video" && item.URL == "" {
			problems = append(problems, Problem{Field: field + ".url", Message: "is required for videos"})
		}
	}
	return problems
}

func validURL(raw string) bool {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Categories returns the distinct categories in catalog order.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range c.Items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}
