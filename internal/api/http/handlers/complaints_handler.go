package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/triage"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// CreateComplaint POST /api/complaints.
func (h *ComplaintsHandler) CreateComplaint(c *fiber.Ctx) error {
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewFieldError("invalid JSON body", "body")
	}

	complaint, err := h.service.Submit(c.UserContext(), service.SubmitComplaintInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Text:          req.Text,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(h.response(complaint))
}

// ListComplaints GET /api/complaints.
func (h *ComplaintsHandler) ListComplaints(c *fiber.Ctx) error {
	complaints, err := h.service.List(c.UserContext(), service.ComplaintListFilter{
		Category:  c.Query("category"),
		Sentiment: c.Query("sentiment"),
		Priority:  c.Query("priority"),
		Status:    c.Query("status"),
		Limit:     c.Query("limit"),
	})
	if err != nil {
		return err
	}

	now := h.service.Now()
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintResponse(&complaints[i], h.service.Engine(), now))
	}
	return c.JSON(items)
}

// GetComplaint GET /api/complaints/:id.
func (h *ComplaintsHandler) GetComplaint(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}
	complaint, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(h.response(complaint))
}

// UpdateStatus PATCH /api/complaints/:id/status?status=.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}
	// fasthttp reuses the query buffer once the request ends; the status may be
	// stored, so it must not alias it.
	complaint, err := h.service.UpdateStatus(c.UserContext(), id, utils.CopyString(c.Query("status")))
	if err != nil {
		return err
	}
	return c.JSON(h.response(complaint))
}

// DeleteComplaint DELETE /api/complaints/:id.
func (h *ComplaintsHandler) DeleteComplaint(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Complaint deleted successfully"})
}

func (h *ComplaintsHandler) response(complaint *domain.Complaint) dto.ComplaintResponse {
	return complaintResponse(complaint, h.service.Engine(), h.service.Now())
}

func complaintID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewFieldError("value is not a valid integer id", "path", "id")
	}
	return id, nil
}

// complaintResponse computes the read-time fields against now.
func complaintResponse(c *domain.Complaint, engine *triage.Engine, now time.Time) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ID:              c.ID,
		CustomerName:    c.CustomerName,
		CustomerEmail:   c.CustomerEmail,
		Text:            c.Text,
		Category:        c.Category,
		Sentiment:       c.Sentiment,
		Priority:        c.Priority,
		Status:          c.Status,
		SuggestedAction: engine.SuggestedAction(c.Category, c.Priority),
		Confidence: dto.ConfidenceResponse{
			Category:  c.Confidence.Category,
			Sentiment: c.Confidence.Sentiment,
		},
		CreatedAt:      c.CreatedAt,
		ResponseDueAt:  c.ResponseDueAt,
		ResolvedAt:     c.ResolvedAt,
		HoursRemaining: c.HoursRemaining(now),
		IsOverdue:      c.IsOverdue(now),
	}
}
