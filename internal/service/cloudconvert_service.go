package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mark-baumann/JobAgent/internal/config"
	"github.com/tidwall/gjson"
)

var (
	// ErrConversionFailed is returned when the remote service reports the
	// job in error state.
	ErrConversionFailed = errors.New("conversion failed")
	// ErrConversionTimeout is returned when the polling attempt budget is
	// exhausted before the job finishes. Distinct from ErrConversionFailed.
	ErrConversionTimeout = errors.New("conversion timed out")
	// ErrInconsistentJob is returned when a finished job is missing the
	// expected export result file.
	ErrInconsistentJob = errors.New("conversion service returned an inconsistent job state")
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type CloudConvertServiceInterface interface {
	ConvertDocxToPDF(ctx context.Context, filename string, docxData []byte) ([]byte, error)
}

// CloudConvertService drives the remote DOCX→PDF conversion: one job with an
// upload task, a convert task and an export-url task, polled until terminal.
type CloudConvertService struct {
	client *resty.Client
	apiKey string
	log    *slog.Logger

	PollInterval time.Duration
	MaxAttempts  int
}

func NewCloudConvertService(cfg *config.CloudConvertConfig, logger *slog.Logger) *CloudConvertService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudConvertService{
		client:       resty.New().SetBaseURL(cfg.BaseURL),
		apiKey:       cfg.APIKey,
		log:          logger,
		PollInterval: 2 * time.Second,
		MaxAttempts:  30,
	}
}

// ConvertDocxToPDF uploads the document, waits for the conversion job to
// finish and downloads the resulting PDF.
func (s *CloudConvertService) ConvertDocxToPDF(ctx context.Context, filename string, docxData []byte) ([]byte, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("conversion service api key is not configured")
	}

	job, err := s.createJob(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("conversion job created", "job", job.id)

	if err := s.upload(ctx, job, filename, docxData); err != nil {
		return nil, err
	}

	finalState, err := s.waitForJob(ctx, job.id)
	if err != nil {
		return nil, err
	}

	fileURL := gjson.Get(finalState, `data.tasks.#(operation=="export/url").result.files.0.url`).String()
	if fileURL == "" {
		return nil, ErrInconsistentJob
	}

	return s.download(ctx, fileURL)
}

type conversionJob struct {
	id           string
	uploadURL    string
	uploadParams map[string]string
}

// createJob declares the three-task graph: upload → convert-to-pdf → export.
func (s *CloudConvertService) createJob(ctx context.Context) (*conversionJob, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"tasks": map[string]interface{}{
				"upload-file": map[string]interface{}{
					"operation": "import/upload",
				},
				"convert-file": map[string]interface{}{
					"operation":     "convert",
					"input":         "upload-file",
					"output_format": "pdf",
				},
				"export-file": map[string]interface{}{
					"operation": "export/url",
					"input":     "convert-file",
				},
			},
		}).
		Post("/v2/jobs")
	if err != nil {
		return nil, fmt.Errorf("create conversion job: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create conversion job failed with status %d", resp.StatusCode())
	}

	body := resp.String()
	id := gjson.Get(body, "data.id").String()
	uploadTask := gjson.Get(body, `data.tasks.#(operation=="import/upload")`)
	convertTask := gjson.Get(body, `data.tasks.#(operation=="convert")`)
	exportTask := gjson.Get(body, `data.tasks.#(operation=="export/url")`)
	if id == "" || !uploadTask.Exists() || !convertTask.Exists() || !exportTask.Exists() {
		return nil, fmt.Errorf("conversion job response is missing the expected task graph")
	}

	uploadURL := uploadTask.Get("result.form.url").String()
	if uploadURL == "" {
		return nil, fmt.Errorf("conversion job response is missing the upload destination")
	}
	params := map[string]string{}
	for key, value := range uploadTask.Get("result.form.parameters").Map() {
		params[key] = value.String()
	}

	return &conversionJob{id: id, uploadURL: uploadURL, uploadParams: params}, nil
}

// upload posts the document as multipart form data to the destination the
// service designated, with the form parameters it returned.
func (s *CloudConvertService) upload(ctx context.Context, job *conversionJob, filename string, data []byte) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetMultipartFormData(job.uploadParams).
		SetMultipartField("file", filename, docxContentType, bytes.NewReader(data)).
		Post(job.uploadURL)
	if err != nil {
		return fmt.Errorf("upload document: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("upload document failed with status %d", resp.StatusCode())
	}
	return nil
}

// waitForJob polls the job status at a fixed interval up to MaxAttempts. The
// returned body is the final finished job state, which carries the task
// results. Context cancellation ends the wait independently of the attempt
// counter.
func (s *CloudConvertService) waitForJob(ctx context.Context, jobID string) (string, error) {
	for attempt := 1; attempt <= s.MaxAttempts; attempt++ {
		resp, err := s.client.R().
			SetContext(ctx).
			SetAuthToken(s.apiKey).
			Get("/v2/jobs/" + jobID)
		if err != nil {
			return "", fmt.Errorf("poll conversion job: %w", err)
		}
		if resp.IsError() {
			return "", fmt.Errorf("poll conversion job failed with status %d", resp.StatusCode())
		}

		body := resp.String()
		status := gjson.Get(body, "data.status").String()
		switch status {
		case "finished":
			return body, nil
		case "error":
			return "", ErrConversionFailed
		}
		s.log.Debug("conversion job still running", "job", jobID, "status", status, "attempt", attempt)

		if attempt == s.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.PollInterval):
		}
	}
	return "", ErrConversionTimeout
}

func (s *CloudConvertService) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("download converted file: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("download converted file failed with status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
