package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark-baumann/JobAgent/internal/dto"
	"github.com/mark-baumann/JobAgent/internal/render"
	"github.com/mark-baumann/JobAgent/internal/service"
)

const exportDateLayout = "02.01.2006"

// ExportFile is a rendered download artifact.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportUsecase struct {
	runRepo      GenerationRunRepositoryInterface
	converter    service.CloudConvertServiceInterface
	templatePath string
	log          *slog.Logger

	// Now is replaceable in tests; the current date goes into the letter.
	Now func() time.Time
}

func NewExportUsecase(runRepo GenerationRunRepositoryInterface, converter service.CloudConvertServiceInterface, templatePath string, logger *slog.Logger) *ExportUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportUsecase{
		runRepo:      runRepo,
		converter:    converter,
		templatePath: templatePath,
		log:          logger,
		Now:          time.Now,
	}
}

// Export renders the run's letter into the template and returns it as DOCX,
// or hands the DOCX to the remote conversion service for PDF. The letter
// must exist before the template is even loaded.
func (uc *ExportUsecase) Export(ctx context.Context, runID string, req dto.ExportRequest) (*ExportFile, error) {
	if req.Format != "docx" && req.Format != "pdf" {
		return nil, ErrUnknownFormat
	}

	run, err := uc.runRepo.FindRunByID(runID)
	if err != nil {
		return nil, err
	}
	if run.FinalApplication == "" {
		return nil, ErrNothingToExport
	}

	docxData, err := render.Letter(uc.templatePath, render.Fields{
		Content:      run.FinalApplication,
		Title:        req.Titel,
		Date:         uc.Now().Format(exportDateLayout),
		Organization: req.Firma,
		Address:      req.Adresse,
	})
	if err != nil {
		return nil, err
	}

	if req.Format == "docx" {
		return &ExportFile{
			Filename:    "anschreiben.docx",
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Data:        docxData,
		}, nil
	}

	pdfData, err := uc.converter.ConvertDocxToPDF(ctx, "anschreiben.docx", docxData)
	if err != nil {
		return nil, err
	}
	uc.log.Info("letter exported as pdf", "run", runID, "bytes", len(pdfData))
	return &ExportFile{
		Filename:    "anschreiben.pdf",
		ContentType: "application/pdf",
		Data:        pdfData,
	}, nil
}
