package handler

import (
	"github.com/fadilmartias/hirematch/internal/middleware"
	"github.com/fadilmartias/hirematch/internal/response"
	"github.com/fadilmartias/hirematch/internal/usecase"
	"github.com/fadilmartias/hirematch/internal/util"
	"github.com/gofiber/fiber/v2"
)

type JobHandler struct {
	uc *usecase.JobUsecase
}

func NewJobHandler(uc *usecase.JobUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

func (h *JobHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/jobs/recommended", h.Recommended)
	router.Post("/jobs/:jobId/apply", h.Apply)
	router.Get("/jobs/:jobId/matches", h.Matches)
	router.Post("/jobs/:jobId/embedding", h.IndexEmbedding)
}

func (h *JobHandler) Apply(c *fiber.Ctx) error {
	jobID, err := uuidParam(c, "jobId")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	app, err := h.uc.Apply(c.UserContext(), middleware.CurrentUser(c), jobID)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Application submitted",
		Data:    app,
	})
}

func (h *JobHandler) Matches(c *fiber.Ctx) error {
	jobID, err := uuidParam(c, "jobId")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	page, size, offset := response.NormalizePage(c.QueryInt("page", 1), c.QueryInt("page_size", response.DefaultPageSize))

	scores, total, err := h.uc.ListMatches(c.UserContext(), middleware.CurrentUser(c), jobID, offset, size)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get match scores",
		Data:       scores,
		Pagination: response.NewPagination(page, size, len(scores), total),
	})
}

func (h *JobHandler) IndexEmbedding(c *fiber.Ctx) error {
	jobID, err := uuidParam(c, "jobId")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	if err := h.uc.IndexJobEmbedding(c.UserContext(), middleware.CurrentUser(c), jobID); err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success index job embedding",
	})
}

func (h *JobHandler) Recommended(c *fiber.Ctx) error {
	jobs, err := h.uc.RecommendJobs(c.UserContext(), middleware.CurrentUser(c), c.QueryInt("limit", 5))
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get recommended jobs",
		Data:    jobs,
	})
}
