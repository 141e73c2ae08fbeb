// Package catalog serves the curated list of featured AI tools shipped with
// the binary.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pmaxcam/review-website/internal/domain"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

//go:embed tools.json
var toolsJSON []byte

// Catalog is an immutable, in-memory tool list. It is safe for concurrent use.
type Catalog struct {
	tools []domain.Tool
	byID  map[int]int
}

// Load parses the embedded tool list.
func Load() (*Catalog, error) {
	return Parse(toolsJSON)
}

// Parse builds a catalog from a JSON array of tools. Duplicate ids are rejected.
func Parse(data []byte) (*Catalog, error) {
	var tools []domain.Tool
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("decode tools catalog: %w", err)
	}

	byID := make(map[int]int, len(tools))
	for i, t := range tools {
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tool id %d", t.ID)
		}
		if t.Badges == nil {
			tools[i].Badges = []string{}
		}
		byID[t.ID] = i
	}

	return &Catalog{tools: tools, byID: byID}, nil
}

// List returns one page of tools, optionally filtered to a category compared
// case-insensitively, with the filtered total.
func (c *Catalog) List(category string, page pagination.Params) ([]domain.Tool, int) {
	filtered := c.tools
	if category != "" {
		filtered = make([]domain.Tool, 0, len(c.tools))
		for _, t := range c.tools {
			if strings.EqualFold(t.Category, category) {
				filtered = append(filtered, t)
			}
		}
	}
	return pagination.Window(filtered, page), len(filtered)
}

// Get returns the tool with id.
func (c *Catalog) Get(id int) (domain.Tool, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Tool{}, false
	}
	return c.tools[i], true
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	return len(c.tools)
}
