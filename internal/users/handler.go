package users

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campusbridge/connect/internal/models"
	"github.com/campusbridge/connect/pkg/response"
)

// CreateRequest is the body for POST /users.
type CreateRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	UUID      string `json:"uuid"`
	SISUserID string `json:"sis_user_id"`
	Role      string `json:"role"`
}

// Handler handles user HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a user handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /users. An absent UUID is generated so credential
// derivation always has a stable source.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := models.Role(req.Role)
	switch role {
	case models.RoleAdmin, models.RoleTeacher, models.RoleStudent:
	case "":
		role = models.RoleStudent
	default:
		response.BadRequest(c, "invalid role")
		return
	}

	u := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		UUID:      req.UUID,
		SISUserID: req.SISUserID,
		Role:      role,
	}
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	if err := h.repo.Create(c.Request.Context(), u); err != nil {
		response.Internal(c, "failed to create user")
		return
	}
	response.Created(c, u)
}

// GetByID handles GET /users/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if u == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, u)
}

// List handles GET /users.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}
