package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"reviewhub/internal/apperr"
	"reviewhub/internal/config"
	"reviewhub/internal/validators"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError renders err as {"error": ..., "details": {...}} with the
// status of its apperr code. Unexpected errors are attached to the gin
// context so the request logger records the cause.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Code == apperr.CodeInternal || appErr.Code == apperr.CodeUnavailable {
		_ = c.Error(err)
	}
	body := gin.H{"error": appErr.Message}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(appErr.HTTPStatus(), body)
}

// bindJSON decodes the body into obj and writes a 400 on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if details := validators.FieldErrors(err); details != nil {
			respondError(c, apperr.ValidationDetails(details))
		} else {
			respondError(c, apperr.Validation("invalid request body: "+err.Error()))
		}
		return false
	}
	return true
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
		return 0, false
	}
	return id, true
}

// parsePage reads page and page_size, falling back to defaults on bad input.
func parsePage(c *gin.Context, settings config.Settings) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(settings.DefaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = settings.DefaultPageSize
	}
	if pageSize > settings.MaxPageSize {
		pageSize = settings.MaxPageSize
	}
	return page, pageSize
}
