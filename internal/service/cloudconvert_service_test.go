package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark-baumann/JobAgent/internal/config"
)

// fakeConversionServer emulates the conversion API: job creation, the
// designated upload destination, status polling and the export download.
type fakeConversionServer struct {
	mu          sync.Mutex
	statusCalls int
	uploadCalls int
	uploaded    string

	// pendingPolls is how many "processing" responses to serve before the
	// job reports finished.
	pendingPolls int
	// finalStatus overrides the terminal status ("finished" by default).
	finalStatus string
	// omitExportFile drops the export task result from the finished body.
	omitExportFile bool

	srv *httptest.Server
}

func newFakeConversionServer(t *testing.T) *fakeConversionServer {
	f := &fakeConversionServer{finalStatus: "finished"}
	mux := http.NewServeMux()

	mux.HandleFunc("/v2/jobs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data": {"id": "job-1", "status": "waiting", "tasks": [
			{"name": "upload-file", "operation": "import/upload", "result": {"form": {"url": %q, "parameters": {"key": "uploads/job-1"}}}},
			{"name": "convert-file", "operation": "convert"},
			{"name": "export-file", "operation": "export/url"}
		]}}`, f.srv.URL+"/upload")
	})

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)

		f.mu.Lock()
		f.uploadCalls++
		f.uploaded = string(data)
		f.mu.Unlock()

		assert.Equal(t, "uploads/job-1", r.FormValue("key"))
		assert.Equal(t, "anschreiben.docx", header.Filename)
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/v2/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.statusCalls++
		pending := f.statusCalls <= f.pendingPolls
		f.mu.Unlock()

		if pending {
			fmt.Fprint(w, `{"data": {"id": "job-1", "status": "processing", "tasks": []}}`)
			return
		}
		if f.finalStatus != "finished" {
			fmt.Fprintf(w, `{"data": {"id": "job-1", "status": %q, "tasks": []}}`, f.finalStatus)
			return
		}
		exportResult := fmt.Sprintf(`, "result": {"files": [{"filename": "anschreiben.pdf", "url": %q}]}`, f.srv.URL+"/download/anschreiben.pdf")
		if f.omitExportFile {
			exportResult = ""
		}
		fmt.Fprintf(w, `{"data": {"id": "job-1", "status": "finished", "tasks": [
			{"name": "upload-file", "operation": "import/upload", "status": "finished"},
			{"name": "convert-file", "operation": "convert", "status": "finished"},
			{"name": "export-file", "operation": "export/url", "status": "finished"%s}
		]}}`, exportResult)
	})

	mux.HandleFunc("/download/anschreiben.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.7 fake"))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeConversionServer) service() *CloudConvertService {
	s := NewCloudConvertService(&config.CloudConvertConfig{
		APIKey:  "test-token",
		BaseURL: f.srv.URL,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.PollInterval = time.Millisecond
	return s
}

func TestCloudConvertService_ConvertDocxToPDF(t *testing.T) {
	fake := newFakeConversionServer(t)
	fake.pendingPolls = 3
	svc := fake.service()

	pdf, err := svc.ConvertDocxToPDF(context.Background(), "anschreiben.docx", []byte("docx-bytes"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 fake"), pdf)

	assert.Equal(t, 1, fake.uploadCalls)
	assert.Equal(t, "docx-bytes", fake.uploaded)
	// three pending polls plus the final finished one
	assert.Equal(t, 4, fake.statusCalls)
}

func TestCloudConvertService_ImmediateFinish(t *testing.T) {
	fake := newFakeConversionServer(t)
	svc := fake.service()

	_, err := svc.ConvertDocxToPDF(context.Background(), "anschreiben.docx", []byte("docx-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 1, fake.statusCalls)
}

func TestCloudConvertService_JobError(t *testing.T) {
	fake := newFakeConversionServer(t)
	fake.finalStatus = "error"
	svc := fake.service()

	_, err := svc.ConvertDocxToPDF(context.Background(), "anschreiben.docx", []byte("docx-bytes"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.NotErrorIs(t, err, ErrConversionTimeout)
}

func TestCloudConvertService_Timeout(t *testing.T) {
	fake := newFakeConversionServer(t)
	fake.pendingPolls = 1000
	svc := fake.service()
	svc.MaxAttempts = 5

	_, err := svc.ConvertDocxToPDF(context.Background(), "anschreiben.docx", []byte("docx-bytes"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversionTimeout)
	assert.NotErrorIs(t, err, ErrConversionFailed)
	// the attempt budget bounds the number of status requests
	assert.Equal(t, 5, fake.statusCalls)
}

func TestCloudConvertService_MissingExportFile(t *testing.T) {
	fake := newFakeConversionServer(t)
	fake.omitExportFile = true
	svc := fake.service()

	_, err := svc.ConvertDocxToPDF(context.Background(), "anschreiben.docx", []byte("docx-bytes"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInconsistentJob)
}

func TestCloudConvertService_ContextCancelledDuringPolling(t *testing.T) {
	fake := newFakeConversionServer(t)
	fake.pendingPolls = 1000
	svc := fake.service()
	svc.PollInterval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.ConvertDocxToPDF(ctx, "anschreiben.docx", []byte("docx-bytes"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloudConvertService_MissingAPIKey(t *testing.T) {
	svc := NewCloudConvertService(&config.CloudConvertConfig{BaseURL: "http://localhost:0"}, nil)

	_, err := svc.ConvertDocxToPDF(context.Background(), "anschreiben.docx", []byte("docx-bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestCloudConvertService_BrokenTaskGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"id": "job-1", "tasks": [{"name": "upload-file", "operation": "import/upload"}]}}`)
	}))
	defer srv.Close()

	svc := NewCloudConvertService(&config.CloudConvertConfig{APIKey: "test-token", BaseURL: srv.URL}, nil)
	_, err := svc.ConvertDocxToPDF(context.Background(), "anschreiben.docx", []byte("docx-bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task graph")
}

func TestCloudConvertService_CreateJobServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Unauthenticated."}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewCloudConvertService(&config.CloudConvertConfig{APIKey: "bad-token", BaseURL: srv.URL}, nil)
	_, err := svc.ConvertDocxToPDF(context.Background(), "anschreiben.docx", []byte("docx-bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
