package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/service"
	"github.com/spec-kit/marketplace-service/internal/storage"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// JobsHandler serves the job lifecycle endpoints.
type JobsHandler struct {
	jobs    *service.JobService
	uploads *storage.LocalStorage
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService, uploads *storage.LocalStorage) *JobsHandler {
	return &JobsHandler{jobs: jobService, uploads: uploads}
}

// Create POST /api/jobs/create (multipart: image + fields).
func (h *JobsHandler) Create(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("no image file provided", nil)
	}
	photoURL, err := h.uploads.Save("jobs", "image", file)
	if err != nil {
		return apperrors.MapError(err)
	}

	job, err := h.jobs.CreateJob(c.Context(), service.JobCreateInput{
		Description: c.FormValue("description"),
		Location:    c.FormValue("address"),
		Cost:        c.FormValue("cost"),
		PhotoURL:    photoURL,
		PostedBy:    c.FormValue("mobile"),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Job created successfully",
		"job":     dto.JobFromDomain(job),
	})
}

// ListOpen GET /api/jobs/open.
func (h *JobsHandler) ListOpen(c *fiber.Ctx) error {
	jobs, err := h.jobs.ListOpen(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.JobsFromDomain(jobs))
}

// ListPosted GET /api/jobs/list?mobile=.
func (h *JobsHandler) ListPosted(c *fiber.Ctx) error {
	jobs, err := h.jobs.ListPostedBy(c.Context(), c.Query("mobile"))
	if err != nil {
		return err
	}
	return c.JSON(dto.JobsFromDomain(jobs))
}

// ListCollected GET /api/jobs/collector-list?mobile=.
func (h *JobsHandler) ListCollected(c *fiber.Ctx) error {
	jobs, err := h.jobs.ListCollectedBy(c.Context(), c.Query("mobile"))
	if err != nil {
		return err
	}
	return c.JSON(dto.JobsFromDomain(jobs))
}

// Complete POST /api/jobs/complete (multipart: proof + job_id + mobile).
func (h *JobsHandler) Complete(c *fiber.Ctx) error {
	file, err := c.FormFile("proof")
	if err != nil {
		return apperrors.NewValidationError("proof image is required", nil)
	}

	jobID, err := strconv.ParseInt(c.FormValue("job_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("job ID is required", nil)
	}

	proofURL, err := h.uploads.Save("jobs", "proof", file)
	if err != nil {
		return apperrors.MapError(err)
	}

	job, err := h.jobs.CompleteJob(c.Context(), jobID, c.FormValue("mobile"), proofURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Job completed. Waiting for payment.",
		"proofUrl": job.JobPhotoDone,
	})
}

// Delete DELETE /api/jobs/:id.
func (h *JobsHandler) Delete(c *fiber.Ctx) error {
	jobID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid job id", nil)
	}
	if err := h.jobs.DeleteJob(c.Context(), jobID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Job deleted successfully"})
}
