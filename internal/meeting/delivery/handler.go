package delivery

import (
	"errors"
	"net/http"
	"strings"

	authdelivery "meetingprep-ai/internal/auth/delivery"
	"meetingprep-ai/internal/meeting/domain"
	meetingdto "meetingprep-ai/internal/meeting/dto"
	"meetingprep-ai/internal/meeting/usecase"
	"meetingprep-ai/pkg/logging"

	"github.com/gin-gonic/gin"
)

type MeetingHandler struct {
	meetingUsecase usecase.MeetingUsecase
}

func NewMeetingHandler(meetingUsecase usecase.MeetingUsecase) *MeetingHandler {
	return &MeetingHandler{meetingUsecase: meetingUsecase}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, meetingdto.ErrorResponse{Success: false, Error: msg})
}

// failErr maps usecase errors to status codes; unexpected errors are logged and hidden
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		fail(c, http.StatusForbidden, usecase.MsgQuotaExceeded)
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "Meeting not found")
	case errors.Is(err, domain.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, "Authorization required")
	case errors.Is(err, domain.ErrForbidden):
		fail(c, http.StatusForbidden, "Forbidden")
	default:
		logging.From(c.Request.Context()).Error("[Meeting] request failed", "error", err, "path", c.FullPath())
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// requireUser resolves the userId query parameter against the authenticated user.
// An empty parameter means the caller itself.
func requireUser(c *gin.Context) (string, bool) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		fail(c, http.StatusUnauthorized, "Authorization required")
		return "", false
	}

	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		return user.ID, true
	}
	if userID != user.ID {
		fail(c, http.StatusForbidden, "User ID does not match the signed-in user")
		return "", false
	}
	return userID, true
}

// GenerateBrief handles POST /api/extension/generate-brief
func (h *MeetingHandler) GenerateBrief(c *gin.Context) {
	var req meetingdto.GenerateBriefRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Meeting == nil {
		fail(c, http.StatusBadRequest, "Meeting data required")
		return
	}

	// Anonymous callers get a brief without persistence. Naming a user requires being that user.
	userID := strings.TrimSpace(req.UserID)
	if userID != "" {
		user := authdelivery.CurrentUser(c)
		if user == nil || user.ID != userID {
			fail(c, http.StatusUnauthorized, "Authorization required")
			return
		}
	}

	res, err := h.meetingUsecase.GenerateBrief(c.Request.Context(), userID, *req.Meeting)
	if err != nil {
		failErr(c, err)
		return
	}

	meeting := res.Meeting
	c.JSON(http.StatusOK, meetingdto.GenerateBriefResponse{
		Success: true,
		Brief:   res.Brief,
		Meeting: &meeting,
		Usage:   res.Usage,
	})
}

// GetMeetings handles GET /api/extension/get-meetings
func (h *MeetingHandler) GetMeetings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	records, err := h.meetingUsecase.GetMeetings(c.Request.Context(), userID)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, meetingdto.MeetingsResponse{Success: true, Meetings: records})
}

// SearchMeetings handles GET /api/extension/search-meetings
func (h *MeetingHandler) SearchMeetings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		fail(c, http.StatusBadRequest, "Search query required")
		return
	}

	records, err := h.meetingUsecase.SearchMeetings(c.Request.Context(), userID, query)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, meetingdto.MeetingsResponse{Success: true, Meetings: records})
}

// DeleteMeeting handles DELETE /api/extension/delete-meeting
func (h *MeetingHandler) DeleteMeeting(c *gin.Context) {
	meetingID := strings.TrimSpace(c.Query("meetingId"))
	if meetingID == "" || strings.TrimSpace(c.Query("userId")) == "" {
		fail(c, http.StatusBadRequest, "Meeting ID and User ID required")
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.meetingUsecase.DeleteMeeting(c.Request.Context(), userID, meetingID); err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, meetingdto.DeleteMeetingResponse{Success: true, Message: "Meeting deleted successfully"})
}

// Usage handles GET /api/extension/usage
func (h *MeetingHandler) Usage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	usage, err := h.meetingUsecase.GetUsage(c.Request.Context(), userID)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "usage": usage})
}
