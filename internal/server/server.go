// Package server exposes the crashsearch engine over HTTP for the dashboard.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cognicore/crashsearch/pkg/crashsearch"
	"github.com/cognicore/crashsearch/pkg/crashsearch/filter"
	"github.com/cognicore/crashsearch/pkg/crashsearch/internalerr"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// Handler serves the dashboard API.
type Handler struct {
	engine *crashsearch.Engine
	vocabs *vocab.Vocabularies
}

// NewHandler creates the API handler.
func NewHandler(engine *crashsearch.Engine, vocabs *vocab.Vocabularies) *Handler {
	return &Handler{engine: engine, vocabs: vocabs}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/meta", h.Meta)
		api.POST("/search", h.Search)
		api.POST("/report", h.Report)
	}

	return r
}

// Meta handles GET /api/meta: the per-category canonical values the
// dashboard renders as dropdown options.
func (h *Handler) Meta(c *gin.Context) {
	meta := make(map[string][]string, len(vocab.Categories()))
	for _, cat := range vocab.Categories() {
		meta[string(cat)] = h.vocabs.Canonicals(cat)
	}
	c.JSON(http.StatusOK, meta)
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// Search handles POST /api/search: parse the free-text query and return the
// structured filters plus the match count. An oversized query is the only
// client error; unparseable text just returns empty filters.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, internalerr.ErrQueryTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query too long"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filters": result.Filters,
		"count":   result.Count,
		"rows":    result.Rows,
	})
}

// ReportRequest is the body of POST /api/report. Filters carries the
// dropdown selections; Query, when non-empty, is parsed and its bound
// categories override the corresponding dropdowns, the way the dashboard's
// generate callback behaves.
type ReportRequest struct {
	Filters filter.Set `json:"filters"`
	Query   string     `json:"query"`
}

// Report handles POST /api/report.
func (h *Handler) Report(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := req.Filters
	if req.Query != "" {
		parsed, err := h.engine.Interpret(req.Query)
		if err != nil {
			if errors.Is(err, internalerr.ErrQueryTooLong) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "query too long"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		set = set.Merge(parsed)
	}

	rep, err := h.engine.GenerateReport(c.Request.Context(), set)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rep)
}
