package handler

import (
	"github.com/gofiber/fiber/v2"

	"podapi/internal/http/middleware"
	"podapi/internal/model"
	"podapi/internal/service"
)

type jobRequest struct {
	Title      string          `json:"title" validate:"required"`
	Status     string          `json:"status"`
	ActiveDays map[string]bool `json:"active_days" validate:"required"`
	AtFrom     string          `json:"at_from" validate:"required"`
	To         string          `json:"to" validate:"required"`
	Every      *string         `json:"every"`
}

func (r jobRequest) input() service.JobInput {
	return service.JobInput{
		Title:      r.Title,
		Status:     r.Status,
		ActiveDays: r.ActiveDays,
		AtFrom:     r.AtFrom,
		To:         r.To,
		Every:      r.Every,
	}
}

// CreateJob godoc
// @Summary Create a recognition schedule
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Job
// @Router /jobs/ [post]
func CreateJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		var req jobRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		j, err := svc.Create(c.UserContext(), user.ID, req.input())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(j)
	}
}

// ListJobs godoc
// @Summary List the caller's jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param status query string false "exact status"
// @Success 200 {array} model.Job
// @Router /jobs/ [get]
func ListJobs(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		jobs, err := svc.List(c.UserContext(), user.ID, c.Query("status"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(nonNilJobs(jobs))
	}
}

// SearchJobs godoc
// @Summary Search jobs by title
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param title query string true "partial, case-insensitive"
// @Success 200 {array} model.Job
// @Router /jobs/search/ [get]
func SearchJobs(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		title := c.Query("title")
		if title == "" {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required")
		}
		jobs, err := svc.Search(c.UserContext(), user.ID, title)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(nonNilJobs(jobs))
	}
}

// GetJob godoc
// @Summary Fetch one job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "job id"
// @Success 200 {object} model.Job
// @Failure 404 {object} errorPayload
// @Router /jobs/{id} [get]
func GetJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		j, err := svc.Get(c.UserContext(), user.ID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(j)
	}
}

// UpdateJob godoc
// @Summary Replace a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "job id"
// @Success 200 {object} model.Job
// @Router /jobs/{id} [put]
func UpdateJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req jobRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		j, err := svc.Update(c.UserContext(), user.ID, id, req.input())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(j)
	}
}

// DeleteJob godoc
// @Summary Delete a job
// @Tags jobs
// @Security BearerAuth
// @Param id path int true "job id"
// @Success 200 {object} messagePayload
// @Router /jobs/{id} [delete]
func DeleteJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), user.ID, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: "Job deleted successfully"})
	}
}

func nonNilJobs(jobs []model.Job) []model.Job {
	if jobs == nil {
		return []model.Job{}
	}
	return jobs
}
