// internal/handlers/content/library/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"healing-guide/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.LibraryItem `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Execute runs q and decodes the hits into a page.
func Execute(ctx context.Context, esClient *elasticsearch.Client, q LibraryQuery) (*models.LibraryPage, error) {
	req, err := BuildSearch(q)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("search query failed: %s: %s", res.Status(), raw)
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	page := &models.LibraryPage{
		Items: make([]models.LibraryItem, 0, len(r.Hits.Hits)),
		Total: r.Hits.Total.Value,
		Page:  q.Page,
		Size:  q.Size,
	}
	for _, hit := range r.Hits.Hits {
		item := hit.Source
		if item.Tags == nil {
			item.Tags = []string{}
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}
