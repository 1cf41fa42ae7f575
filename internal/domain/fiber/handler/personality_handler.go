package handler

import (
	"time"

	"github.com/fadilmartias/hirematch/internal/dto"
	"github.com/fadilmartias/hirematch/internal/middleware"
	"github.com/fadilmartias/hirematch/internal/usecase"
	"github.com/fadilmartias/hirematch/internal/util"
	"github.com/gofiber/fiber/v2"
)

type PersonalityHandler struct {
	uc *usecase.PersonalityUsecase
}

func NewPersonalityHandler(uc *usecase.PersonalityUsecase) *PersonalityHandler {
	return &PersonalityHandler{uc: uc}
}

func (h *PersonalityHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/personality/submit", middleware.RateLimiter(5, time.Minute), h.Submit)
	router.Get("/personality/status", h.Status)
	router.Get("/personality/result", h.Result)
}

func (h *PersonalityHandler) Submit(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	var req dto.PersonalitySubmitRequest
	if err := parseBody(c, &req); err != nil {
		return util.AppErrorResponse(c, err)
	}

	out, err := h.uc.Submit(c.UserContext(), userID, req.Responses)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Status:  out.Status,
		Message: "Personality analysis queued",
		Data:    out,
	})
}

func (h *PersonalityHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.Status(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get analysis status",
		Data:    out,
	})
}

func (h *PersonalityHandler) Result(c *fiber.Ctx) error {
	out, err := h.uc.Result(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get personality analysis",
		Data:    out,
	})
}
