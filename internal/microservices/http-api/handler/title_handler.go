package handler

import (
	"net/http"
	"strconv"
	"strings"

	"reviewhub/internal/apperr"
	"reviewhub/internal/config"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
	settings     config.Settings
}

func NewTitleHandler(titleService service.TitleService, settings config.Settings) *TitleHandler {
	return &TitleHandler{titleService: titleService, settings: settings}
}

func (h *TitleHandler) RegisterRoutes(router *gin.RouterGroup) {
	titles := router.Group("/titles")
	{
		titles.GET("", h.List)
		titles.POST("", middleware.Authorize(policy.ActionCreate, policy.ResourceTitle), h.Create)
		titles.GET("/:title_id", h.Get)
		titles.PATCH("/:title_id", middleware.Authorize(policy.ActionUpdate, policy.ResourceTitle), h.Update)
		titles.DELETE("/:title_id", middleware.Authorize(policy.ActionDelete, policy.ResourceTitle), h.Delete)
	}
}

// List titles
// GET /api/v1/titles?category=&genre=&name=&year=&ordering=-rating,name
func (h *TitleHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c, h.settings)
	filter := dto.TitleFilter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.ValidationField("year", "Enter a whole number."))
			return
		}
		filter.Year = &year
	}
	if raw := c.Query("ordering"); raw != "" {
		for _, key := range strings.Split(raw, ",") {
			if key = strings.TrimSpace(key); key != "" {
				filter.Ordering = append(filter.Ordering, key)
			}
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	titles, total, err := h.titleService.List(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(titles, dto.FromModelToTitleResponse), total, page, pageSize))
}

// Get a title with its rating
// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	title, err := h.titleService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToTitleResponse(title))
}

// Create a title (admin only)
// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	title, err := h.titleService.Create(ctx, middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToTitleResponse(title))
}

// Update a title (admin only)
// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}
	var req dto.UpdateTitleRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	title, err := h.titleService.Update(ctx, middleware.ActorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToTitleResponse(title))
}

// Delete a title with its reviews and comments (admin only)
// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.titleService.Delete(ctx, middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
