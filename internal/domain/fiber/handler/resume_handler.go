package handler

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fadilmartias/hirematch/internal/apperror"
	"github.com/fadilmartias/hirematch/internal/dto"
	"github.com/fadilmartias/hirematch/internal/middleware"
	"github.com/fadilmartias/hirematch/internal/usecase"
	"github.com/fadilmartias/hirematch/internal/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxResumeSize = 5 * 1024 * 1024

type ResumeHandler struct {
	uc     *usecase.ResumeUsecase
	logger *zap.Logger
}

func NewResumeHandler(uc *usecase.ResumeUsecase, log *zap.Logger) *ResumeHandler {
	return &ResumeHandler{uc: uc, logger: log}
}

func (h *ResumeHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/resume/parse", middleware.RateLimiter(3, 10*time.Second), h.Parse)
}

// Parse accepts either a multipart "resume" file or a JSON body with the
// already-extracted text.
func (h *ResumeHandler) Parse(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}

	var text, filename string
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		text, filename, err = h.readUpload(c)
		if err != nil {
			return util.AppErrorResponse(c, err)
		}
	} else {
		var req dto.ResumeParseRequest
		if err := parseBody(c, &req); err != nil {
			return util.AppErrorResponse(c, err)
		}
		text, filename = req.Text, req.Filename
		if filename == "" {
			filename = "resume.txt"
		}
	}

	out, err := h.uc.ParseResume(c.UserContext(), userID, text, filename)
	if err != nil {
		return util.AppErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success parse resume",
		Data:    out,
	})
}

func (h *ResumeHandler) readUpload(c *fiber.Ctx) (string, string, error) {
	file, err := c.FormFile("resume")
	if err != nil {
		return "", "", util.NewFormError("resume file is required", map[string]string{"resume": "required"})
	}
	if file.Size > maxResumeSize {
		return "", "", util.NewFormError("resume file size is too large (max 5MB)", map[string]string{"resume": "too large"})
	}

	f, err := file.Open()
	if err != nil {
		return "", "", apperror.Internal("cannot read resume file", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", "", apperror.Internal("cannot read resume file", err)
	}

	text, err := util.ExtractResumeText(c.UserContext(), file.Filename, data, h.logger)
	if errors.Is(err, util.ErrUnsupportedFileType) {
		return "", "", apperror.Validation("UnsupportedFileType", fmt.Sprintf("unsupported resume file type: %s", file.Filename))
	}
	if err != nil {
		return "", "", apperror.New(apperror.KindValidation, "UnreadableResume", "failed to extract resume text", err)
	}
	return text, file.Filename, nil
}
