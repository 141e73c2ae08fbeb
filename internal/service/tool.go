package service

import (
	"strconv"

	"github.com/pmaxcam/review-website/internal/catalog"
	"github.com/pmaxcam/review-website/internal/domain"
	apperrors "github.com/pmaxcam/review-website/pkg/errors"
	"github.com/pmaxcam/review-website/pkg/pagination"
)

// ToolListResult is one page of featured tools.
type ToolListResult struct {
	Tools      []domain.Tool       `json:"tools"`
	Pagination pagination.Envelope `json:"pagination"`
}

// ToolService serves the featured tools catalog.
type ToolService struct {
	catalog *catalog.Catalog
}

// NewToolService creates a tool service over c.
func NewToolService(c *catalog.Catalog) *ToolService {
	return &ToolService{catalog: c}
}

// ListTools returns one page of tools, optionally restricted to category.
func (s *ToolService) ListTools(category string, page pagination.Params) *ToolListResult {
	tools, total := s.catalog.List(category, page)
	return &ToolListResult{Tools: tools, Pagination: pagination.NewEnvelope(page, total)}
}

// GetTool looks up a tool by its numeric id.
func (s *ToolService) GetTool(id string) (*domain.Tool, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, apperrors.NotFoundMessage("Tool not found")
	}
	tool, ok := s.catalog.Get(n)
	if !ok {
		return nil, apperrors.NotFoundMessage("Tool not found")
	}
	return &tool, nil
}
