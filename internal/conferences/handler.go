package conferences

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campusbridge/connect/internal/connect"
	"github.com/campusbridge/connect/internal/models"
	"github.com/campusbridge/connect/internal/users"
	"github.com/campusbridge/connect/pkg/queue"
	"github.com/campusbridge/connect/pkg/response"
)

// CreateRequest is the body for POST /conferences.
type CreateRequest struct {
	Title               string  `json:"title" binding:"required"`
	CourseCode          string  `json:"course_code"`
	ParentCourseCode    string  `json:"parent_course_code"`
	RootAccountGlobalID int64   `json:"root_account_global_id"`
	StartAt             string  `json:"start_at" binding:"required"`
	EndAt               *string `json:"end_at"`
	CreatedBy           int64   `json:"created_by" binding:"required"`
}

// Handler handles conference HTTP endpoints.
type Handler struct {
	repo       *Repository
	users      *users.Repository
	controller *Controller
	jobs       *queue.Queue
	logger     *zap.Logger
}

// NewHandler creates a conference handler.
func NewHandler(repo *Repository, userRepo *users.Repository, controller *Controller, jobs *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, users: userRepo, controller: controller, jobs: jobs, logger: logger}
}

// Create handles POST /conferences.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		response.BadRequest(c, "invalid start_at")
		return
	}
	var endAt *time.Time
	if req.EndAt != nil {
		t, err := time.Parse(time.RFC3339, *req.EndAt)
		if err != nil {
			response.BadRequest(c, "invalid end_at")
			return
		}
		endAt = &t
	}

	conf := &models.Conference{
		Title:               req.Title,
		CourseCode:          req.CourseCode,
		ParentCourseCode:    req.ParentCourseCode,
		RootAccountGlobalID: req.RootAccountGlobalID,
		StartAt:             startAt,
		EndAt:               endAt,
		CreatedBy:           req.CreatedBy,
	}
	if err := h.repo.Create(c.Request.Context(), conf); err != nil {
		response.Internal(c, "failed to create conference")
		return
	}
	response.Created(c, conf)
}

// GetByID handles GET /conferences/:id.
func (h *Handler) GetByID(c *gin.Context) {
	conf, ok := h.conference(c)
	if !ok {
		return
	}
	response.OK(c, conf)
}

// List handles GET /conferences.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list conferences")
		return
	}
	response.OK(c, list)
}

// Initiate handles POST /conferences/:id/initiate. On success it returns
// the conference key and schedules an archive sync.
func (h *Handler) Initiate(c *gin.Context) {
	conf, ok := h.conference(c)
	if !ok {
		return
	}

	key, err := h.controller.Initiate(c.Request.Context(), conf)
	if err != nil {
		h.remoteError(c, err)
		return
	}

	if h.jobs != nil {
		if err := h.jobs.EnqueueArchiveSync(c.Request.Context(), queue.ArchiveSyncPayload{ConferenceID: conf.ID}); err != nil {
			h.logger.Warn("enqueue archive sync failed", zap.Int64("conference_id", conf.ID), zap.Error(err))
		}
	}
	response.OK(c, gin.H{"key": key})
}

// Status handles GET /conferences/:id/status.
func (h *Handler) Status(c *gin.Context) {
	conf, ok := h.conference(c)
	if !ok {
		return
	}

	status, err := h.controller.Status(c.Request.Context(), conf)
	if err != nil {
		h.remoteError(c, err)
		return
	}
	response.OK(c, gin.H{"status": status})
}

// JoinURL handles GET /conferences/:id/join-url?user_id= with participant
// semantics: initiators get the host path, everyone else a guest URL.
func (h *Handler) JoinURL(c *gin.Context) {
	h.joinURL(c, h.controller.ParticipantJoinURL)
}

// AdminJoinURL handles GET /conferences/:id/admin-join-url?user_id=.
func (h *Handler) AdminJoinURL(c *gin.Context) {
	h.joinURL(c, h.controller.AdminJoinURL)
}

// Recordings handles GET /conferences/:id/recordings with a live catalog
// fetch; results are also upserted into the local cache table.
func (h *Handler) Recordings(c *gin.Context) {
	conf, ok := h.conference(c)
	if !ok {
		return
	}

	recordings, err := h.controller.Recordings(c.Request.Context(), conf)
	if err != nil {
		h.remoteError(c, err)
		return
	}
	for i := range recordings {
		if err := h.repo.UpsertRecording(c.Request.Context(), &recordings[i]); err != nil {
			h.logger.Warn("recording upsert failed",
				zap.Int64("conference_id", conf.ID),
				zap.String("sco_id", recordings[i].ScoID),
				zap.Error(err))
		}
	}
	response.OK(c, recordings)
}

func (h *Handler) joinURL(c *gin.Context, fn func(ctx context.Context, conf *models.Conference, user *models.User) (string, error)) {
	conf, ok := h.conference(c)
	if !ok {
		return
	}

	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user_id")
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		response.NotFound(c, "user not found")
		return
	}

	url, err := fn(c.Request.Context(), conf, user)
	if err != nil {
		h.remoteError(c, err)
		return
	}
	response.OK(c, gin.H{"url": url})
}

// conference loads the path conference, writing the error response itself.
func (h *Handler) conference(c *gin.Context) (*models.Conference, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid conference id")
		return nil, false
	}
	conf, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load conference")
		return nil, false
	}
	if conf == nil {
		response.NotFound(c, "conference not found")
		return nil, false
	}
	return conf, true
}

// remoteError maps controller failures onto the response envelope.
func (h *Handler) remoteError(c *gin.Context, err error) {
	var connErr *connect.ConnectionError
	var folderErr *connect.MeetingFolderError
	switch {
	case errors.As(err, &connErr):
		response.ServiceUnavailable(c, connErr.Error())
	case errors.As(err, &folderErr):
		response.ServiceUnavailable(c, folderErr.Error())
	case errors.Is(err, ErrMeetingNotFound):
		response.NotFound(c, "meeting not found")
	case errors.Is(err, connect.ErrMissingSISID):
		response.BadRequest(c, err.Error())
	default:
		h.logger.Error("conference operation failed", zap.Error(err))
		response.Internal(c, "conference operation failed")
	}
}
