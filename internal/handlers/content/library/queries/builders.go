// internal/handlers/content/library/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrMissingIndex = errors.New("index name is required")

// LibraryQuery is one page of published library items. Page is 1-based.
type LibraryQuery struct {
	Index    string
	Category string
	Search   string
	Page     int
	Size     int
}

func (q LibraryQuery) From() int {
	return (q.Page - 1) * q.Size
}

// BuildSearch turns q into a search request against the library index.
func BuildSearch(q LibraryQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}

	body, err := json.Marshal(buildLibraryQuery(q))
	if err != nil {
		return nil, fmt.Errorf("marshal library query: %w", err)
	}

	from, size := q.From(), q.Size
	return &esapi.SearchRequest{
		Index:          []string{q.Index},
		Body:           bytes.NewReader(body),
		From:           &from,
		Size:           &size,
		TrackTotalHits: true,
	}, nil
}

func buildLibraryQuery(q LibraryQuery) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"is_published": true}},
	}

	if q.Search != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Search,
				"fields": []string{"title^3", "description^2", "tags"},
				"type":   "best_fields",
			},
		})
	}
	if q.Category != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category": q.Category},
		})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
	// Relevance order when searching, newest first otherwise.
	if q.Search == "" {
		body["sort"] = []interface{}{
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		}
	}
	return body
}

// IndexMapping is the mapping the library indexer creates the index with.
var IndexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":           map[string]interface{}{"type": "keyword"},
			"title":        map[string]interface{}{"type": "text"},
			"description":  map[string]interface{}{"type": "text"},
			"category":     map[string]interface{}{"type": "keyword"},
			"content_type": map[string]interface{}{"type": "keyword"},
			"url":          map[string]interface{}{"type": "keyword", "index": false},
			"tags":         map[string]interface{}{"type": "keyword"},
			"is_published": map[string]interface{}{"type": "boolean"},
			"created_at":   map[string]interface{}{"type": "date"},
		},
	},
}
