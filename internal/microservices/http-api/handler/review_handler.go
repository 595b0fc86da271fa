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

type ReviewHandler struct {
	reviewService service.ReviewService
	settings      config.Settings
}

func NewReviewHandler(reviewService service.ReviewService, settings config.Settings) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, settings: settings}
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/titles/:title_id/reviews")
	{
		reviews.GET("", h.List)
		reviews.POST("", middleware.Authorize(policy.ActionCreate, policy.ResourceReview), h.Create)
		reviews.GET("/:review_id", h.Get)
		reviews.PATCH("/:review_id", middleware.RequireAuthenticated(), h.Update)
		reviews.DELETE("/:review_id", middleware.RequireAuthenticated(), h.Delete)
	}
}

// List reviews of a title, newest first
// GET /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := parseID(c, "title_id")
	if !ok {
		return
	}
	page, pageSize := parsePage(c, h.settings)
	ctx, cancel := requestContext(c)
	defer cancel()

	reviews, total, err := h.reviewService.List(ctx, titleID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(reviews, dto.FromModelToReviewResponse), total, page, pageSize))
}

// GET /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := parentIDs(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviewService.Get(ctx, titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToReviewResponse(review))
}

// Create a review; one per author and title
// POST /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := parseID(c, "title_id")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviewService.Create(ctx, middleware.ActorFrom(c), titleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToReviewResponse(review))
}

// PATCH /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := parentIDs(c)
	if !ok {
		return
	}
	var req dto.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviewService.Update(ctx, middleware.ActorFrom(c), titleID, reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToReviewResponse(review))
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := parentIDs(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.reviewService.Delete(ctx, middleware.ActorFrom(c), titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
