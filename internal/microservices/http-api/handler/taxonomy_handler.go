package handler

import (
	"net/http"

	"reviewhub/internal/config"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// TaxonomyHandler serves categories or genres, depending on the service
// and path it is built with.
type TaxonomyHandler struct {
	service  service.TaxonomyService
	kind     policy.Resource
	path     string
	settings config.Settings
}

func NewTaxonomyHandler(svc service.TaxonomyService, kind policy.Resource, path string, settings config.Settings) *TaxonomyHandler {
	return &TaxonomyHandler{service: svc, kind: kind, path: path, settings: settings}
}

func (h *TaxonomyHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group(h.path)
	{
		group.GET("", h.List)
		group.POST("", middleware.Authorize(policy.ActionCreate, h.kind), h.Create)
		group.DELETE("/:slug", middleware.Authorize(policy.ActionDelete, h.kind), h.Delete)
	}
}

// List entries, optionally filtered by ?search=<name fragment>
// GET /api/v1/categories, /api/v1/genres
func (h *TaxonomyHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c, h.settings)
	ctx, cancel := requestContext(c)
	defer cancel()

	items, total, err := h.service.List(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(items, dto.FromModelToNameSlugResponse), total, page, pageSize))
}

// Create an entry (admin only)
// POST /api/v1/categories, /api/v1/genres
func (h *TaxonomyHandler) Create(c *gin.Context) {
	var req dto.NameSlugRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.service.Create(ctx, middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToNameSlugResponse(item))
}

// Delete an entry by slug (admin only)
// DELETE /api/v1/categories/:slug, /api/v1/genres/:slug
func (h *TaxonomyHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.service.Delete(ctx, middleware.ActorFrom(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
