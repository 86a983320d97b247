package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/speech_analyzer/internal/infra"
	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

type fakeAnalysis struct {
	calls int
	err   error
}

func (f *fakeAnalysis) Analyze(_ context.Context, filename string, body io.Reader) (*ports.Analysis, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	n, _ := io.Copy(io.Discard, body)
	base := ports.BaseName(filename)
	return &ports.Analysis{
		ID:            "run-1",
		Upload:        ports.UploadedFile{Name: filename, Ext: ports.ExtOf(filename), Size: n},
		Transcription: "hello <world>",
		Fluent:        ports.FluentAudio{Name: ports.FluentName(base), MimeType: ports.FluentMimeType},
		Stage:         ports.StagePresented,
	}, nil
}

func newTestRouter(t *testing.T, svc ports.AnalysisService) (http.Handler, string) {
	t.Helper()
	root := t.TempDir()
	ws, err := infra.NewWorkspace(filepath.Join(root, "uploads"), filepath.Join(root, "outputs"))
	if err != nil {
		t.Fatal(err)
	}

	h := NewAnalysisHandler(svc, ws, 0, logger.NewZapLogger(zap.NewNop().Sugar()))
	r := chi.NewRouter()
	RegisterRoutes(r, h, 0)
	return r, ws.OutputDir()
}

func uploadRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPageListsAcceptedExtensions(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalysis{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `accept=".wav,.mp3,.mp4,.mkv,.avi,.mov"`) {
		t.Error("upload control must enumerate accepted extensions")
	}
	if !strings.Contains(body, `id="busy"`) {
		t.Error("busy indicator missing")
	}
}

func TestAnalyzeRendersResult(t *testing.T) {
	svc := &fakeAnalysis{}
	r, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/analyze", "sample.wav", []byte("RIFF....")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"hello &lt;world&gt;",
		`src="/outputs/sample_fluent.mp3"`,
		`href="/download/sample_fluent.mp3"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page must contain %s", want)
		}
	}
}

func TestAnalyzeRejectsUnknownExtension(t *testing.T) {
	svc := &fakeAnalysis{}
	r, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/analyze", "notes.txt", []byte("hi")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Error("pipeline must not run for rejected uploads")
	}
	if !strings.Contains(rec.Body.String(), failureNotice) {
		t.Error("failure notice expected")
	}
}

func TestAnalyzeJSONMapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{&ports.PipelineError{Stage: ports.StageNormalized, Err: fmt.Errorf("%w: no audio", ports.ErrMediaDecode)}, http.StatusUnprocessableEntity},
		{&ports.PipelineError{Stage: ports.StageTranscribed, Err: ports.ErrTranscription}, http.StatusUnprocessableEntity},
		{&ports.PipelineError{Stage: ports.StageSynthesized, Err: ports.ErrSynthesis}, http.StatusBadGateway},
		{&ports.PipelineError{Stage: ports.StageReceived, Err: os.ErrPermission}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		r, _ := newTestRouter(t, &fakeAnalysis{err: tc.err})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, uploadRequest(t, "/api/analyze", "clip.mp4", []byte("x")))

		if rec.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var resp map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		// наружу не протекают детали
		if resp["error"] != failureNotice {
			t.Errorf("expected generic notice, got %q", resp["error"])
		}
	}
}

func TestAnalyzeJSONSuccess(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalysis{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/api/analyze", "clip.mp4", []byte("video")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var v resultView
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.FluentName != "clip_fluent.mp3" || v.DownloadURL != "/download/clip_fluent.mp3" {
		t.Errorf("unexpected result %+v", v)
	}
}

func TestDownloadHeaders(t *testing.T) {
	r, outDir := newTestRouter(t, &fakeAnalysis{})
	os.WriteFile(filepath.Join(outDir, "sample_fluent.mp3"), []byte("ID3-mp3"), 0644)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/sample_fluent.mp3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mp3" {
		t.Errorf("expected audio/mp3, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=sample_fluent.mp3" {
		t.Errorf("unexpected disposition %s", cd)
	}
	if rec.Body.String() != "ID3-mp3" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/outputs/sample_fluent.mp3", nil))
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "inline") {
		t.Errorf("player endpoint must be inline, got %s", cd)
	}
}

func TestDownloadMissing(t *testing.T) {
	r, _ := newTestRouter(t, &fakeAnalysis{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/nope_fluent.mp3", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
