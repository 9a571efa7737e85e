// pkg/catalog/schema.go
package catalog

import "healing-guide/internal/models"

// Catalog is the editorial source of the content library.
type Catalog struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Items       []Entry `json:"items"`
}

type Entry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	ContentType string   `json:"contentType"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	// Published defaults to true when omitted.
	Published *bool `json:"published,omitempty"`
}

// ContentTypes lists the media kinds the site can render.
var ContentTypes = []string{"article", "video", "audio", "pdf", "recipe"}

// Item converts the entry to the stored library row.
func (e Entry) Item() *models.LibraryItem {
	published := true
	if e.Published != nil {
		published = *e.Published
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.LibraryItem{
		ID:          e.ID,
		Title:       e.Title,
		Category:    e.Category,
		ContentType: e.ContentType,
		Description: e.Description,
		URL:         e.URL,
		Tags:        tags,
		IsPublished: published,
	}
}

var documentSchema = map[string]interface{}{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"type":     "object",
	"required": []interface{}{"version", "items"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string", "minLength": 1},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"items": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":                 "object",
				"required":             []interface{}{"id", "title", "category", "contentType"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"id": map[string]interface{}{
						"type":    "string",
						"pattern": "^[a-z0-9]+(-[a-z0-9]+)*$",
					},
					"title":       map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 200},
					"category":    map[string]interface{}{"type": "string", "minLength": 1},
					"contentType": map[string]interface{}{"type": "string", "enum": toInterfaces(ContentTypes)},
					"description": map[string]interface{}{"type": "string"},
					"url":         map[string]interface{}{"type": "string"},
					"tags": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string", "minLength": 1},
						"uniqueItems": true,
					},
					"published": map[string]interface{}{"type": "boolean"},
				},
			},
		},
	},
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
