package handler

import (
	"fmt"
	"net/http"

	"reviewhub/internal/config"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// meUsername addresses the caller's own profile under /users.
const meUsername = "me"

type UserHandler struct {
	userService service.UserService
	settings    config.Settings
}

func NewUserHandler(userService service.UserService, settings config.Settings) *UserHandler {
	return &UserHandler{userService: userService, settings: settings}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.Authorize(policy.ActionList, policy.ResourceUser), h.List)
		users.POST("", middleware.Authorize(policy.ActionCreate, policy.ResourceUser), h.Create)
		// "me" is a reserved username, so /users/me is routed here too
		users.GET("/:username", authorizeUser(policy.ActionRetrieve), h.Get)
		users.PATCH("/:username", authorizeUser(policy.ActionUpdate), h.Update)
		users.DELETE("/:username", authorizeUser(policy.ActionDelete), h.Delete)
	}
}

// List users, optionally filtered by ?search=<username prefix>
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c, h.settings)
	ctx, cancel := requestContext(c)
	defer cancel()

	users, total, err := h.userService.List(ctx, middleware.ActorFrom(c), c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(dto.MapSlice(users, dto.FromModelToUserResponse), total, page, pageSize))
}

// Create a user
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.Create(ctx, middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToUserResponse(user))
}

// Get a user by username
// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	if c.Param("username") == meUsername {
		h.Me(c)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.Get(ctx, middleware.ActorFrom(c), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Update a user by username
// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	if c.Param("username") == meUsername {
		h.UpdateMe(c)
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.Update(ctx, middleware.ActorFrom(c), c.Param("username"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Delete a user by username
// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	if c.Param("username") == meUsername {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": fmt.Sprintf("Method %q not allowed.", c.Request.Method)})
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.userService.Delete(ctx, middleware.ActorFrom(c), c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's profile
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.Me(ctx, middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// UpdateMe edits the caller's profile; a submitted role is ignored
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.UpdateMe(ctx, middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// authorizeUser checks /users/:username against the user resource, or the
// caller's own profile for "me". DELETE on "me" is left to the handler,
// which answers 405.
func authorizeUser(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := policy.ResourceUser
		if c.Param("username") == meUsername {
			if action == policy.ActionDelete {
				c.Next()
				return
			}
			kind = policy.ResourceMe
		}
		middleware.Authorize(action, kind)(c)
	}
}
