package handler

import (
	"errors"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mark-baumann/JobAgent/internal/dto"
	"github.com/mark-baumann/JobAgent/internal/middleware"
	"github.com/mark-baumann/JobAgent/internal/render"
	"github.com/mark-baumann/JobAgent/internal/response"
	"github.com/mark-baumann/JobAgent/internal/service"
	"github.com/mark-baumann/JobAgent/internal/usecase"
	"github.com/mark-baumann/JobAgent/internal/util"
	"gorm.io/gorm"
)

type GenerateHandler struct {
	generationUC *usecase.GenerationUsecase
	exportUC     *usecase.ExportUsecase
}

func NewGenerateHandler(generationUC *usecase.GenerationUsecase, exportUC *usecase.ExportUsecase) *GenerateHandler {
	return &GenerateHandler{generationUC: generationUC, exportUC: exportUC}
}

func (h *GenerateHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/generate", middleware.RateLimiter(2, 10*time.Second), h.Generate)
	app.Get("/runs", h.ListRuns)
	app.Get("/runs/:id", h.GetRun)
	app.Post("/runs/:id/export", h.Export)
	app.Post("/resume", h.UploadResume)
	app.Get("/models", h.Models)
}

func (h *GenerateHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	id, err := h.generationUC.Submit(req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingAPIKey),
			errors.Is(err, usecase.ErrMissingJobText),
			errors.Is(err, usecase.ErrUnknownModel):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnprocessableEntity,
				Message: err.Error(),
			})
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to submit generation run",
			}, err)
		}
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Generation run started",
		Data:    fiber.Map{"id": id, "status": "processing"},
	})
}

func (h *GenerateHandler) GetRun(c *fiber.Ctx) error {
	id := c.Params("id")
	run, err := h.generationUC.GetRun(id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "run not found",
		})
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get generation run",
		Data:    usecase.RunDTO(run),
	})
}

func (h *GenerateHandler) ListRuns(c *fiber.Ctx) error {
	page, pageSize := usecase.NormalizePaging(c.QueryInt("page", 1), c.QueryInt("page_size", 20))

	runs, total, err := h.generationUC.ListRuns(page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list generation runs",
		}, err)
	}

	data := make([]dto.GenerationRunDTO, 0, len(runs))
	for i := range runs {
		data = append(data, usecase.RunDTO(&runs[i]))
	}

	totalPages := int64(math.Ceil(float64(total) / float64(pageSize)))
	from := (page-1)*pageSize + 1
	if len(data) == 0 {
		from = 0
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success list generation runs",
		Data:    data,
		Pagination: &response.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
			TotalItems: total,
			HasMore:    int64(page) < totalPages,
			From:       from,
			To:         from + len(data) - 1,
		},
	})
}

func (h *GenerateHandler) Export(c *fiber.Ctx) error {
	var req dto.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	file, err := h.exportUC.Export(c.Context(), c.Params("id"), req)
	if err != nil {
		var tplErr *render.TemplateError
		switch {
		case errors.Is(err, usecase.ErrUnknownFormat), errors.Is(err, usecase.ErrNothingToExport):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnprocessableEntity,
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrConversionTimeout):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusGatewayTimeout,
				Message: "conversion timed out",
			}, err)
		case errors.Is(err, service.ErrConversionFailed), errors.Is(err, service.ErrInconsistentJob):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadGateway,
				Message: "conversion failed",
			}, err)
		case errors.As(err, &tplErr):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to render letter template",
			}, err)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "run not found",
			})
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "export failed",
			}, err)
		}
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+file.Filename+`"`)
	return c.Send(file.Data)
}

// UploadResume validates a résumé upload and proves it is readable. The
// extracted text is not fed into the pipeline; generation works from a fixed
// skill list.
func (h *GenerateHandler) UploadResume(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "resume file is required",
		}, err)
	}
	if fileHeader.Size > 5*1024*1024 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusRequestEntityTooLarge,
			Message: "resume file size is too large (max 5MB)",
		})
	}
	if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".pdf" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: "Bitte laden Sie eine PDF-Datei hoch.",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot read resume file",
		}, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot read resume file",
		}, err)
	}

	text, err := util.ExtractPDFText(data)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: "failed to extract resume text",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Datei hochgeladen",
		Data: fiber.Map{
			"filename":   fileHeader.Filename,
			"characters": len(text),
		},
	})
}

func (h *GenerateHandler) Models(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success list models",
		Data: fiber.Map{
			"models":  service.Models,
			"default": service.DefaultModel,
		},
	})
}
