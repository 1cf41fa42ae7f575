package handler

import (
	"time"

	"github.com/fadilmartias/hirematch/internal/dto"
	"github.com/fadilmartias/hirematch/internal/middleware"
	"github.com/fadilmartias/hirematch/internal/usecase"
	"github.com/fadilmartias/hirematch/internal/util"
	"github.com/gofiber/fiber/v2"
)

type MatchHandler struct {
	uc    *usecase.MatchUsecase
	queue *usecase.MatchQueue
}

func NewMatchHandler(uc *usecase.MatchUsecase, queue *usecase.MatchQueue) *MatchHandler {
	return &MatchHandler{uc: uc, queue: queue}
}

func (h *MatchHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/match/enqueue", h.Enqueue)
	router.Get("/match/:jobId/:userId", middleware.RateLimiter(10, time.Minute), h.Score)
}

func (h *MatchHandler) Score(c *fiber.Ctx) error {
	jobID, err := uuidParam(c, "jobId")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return util.AppErrorResponse(c, err)
	}

	score, err := h.uc.RequestMatchScore(c.UserContext(), middleware.CurrentUser(c), jobID, userID)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success calculate match score",
		Data:    score,
	})
}

func (h *MatchHandler) Enqueue(c *fiber.Ctx) error {
	requester, err := requireUser(c)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	var req dto.EnqueueMatchRequest
	if err := parseBody(c, &req); err != nil {
		return util.AppErrorResponse(c, err)
	}

	if err := h.uc.EnqueueAuthorized(c.UserContext(), h.queue, requester, req.JobID, req.UserID); err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Match score queued",
		Data:    dto.EnqueueMatchResponse{JobID: req.JobID, UserID: req.UserID, Status: "queued"},
	})
}
