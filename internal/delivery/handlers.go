package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

// память под multipart; остальное multipart сам сбрасывает во временные файлы
const multipartMemory = 32 << 20

type AnalysisHandler struct {
	analysis  ports.AnalysisService
	workspace ports.Workspace
	maxBytes  int64
	log       *logger.ZapLogger
}

func NewAnalysisHandler(analysis ports.AnalysisService, ws ports.Workspace, maxBytes int64, log *logger.ZapLogger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis:  analysis,
		workspace: ws,
		maxBytes:  maxBytes,
		log:       log,
	}
}

func (h *AnalysisHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPageData())
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	data := newPageData()

	a, status, err := h.run(w, r)
	if err != nil {
		data.Error = failureNotice
		h.render(w, status, data)
		return
	}

	data.Result = newResultView(a)
	h.render(w, http.StatusOK, data)
}

func (h *AnalysisHandler) AnalyzeJSON(w http.ResponseWriter, r *http.Request) {
	a, status, err := h.run(w, r)
	if err != nil {
		writeJSON(w, status, map[string]string{"error": failureNotice})
		return
	}
	writeJSON(w, http.StatusOK, newResultView(a))
}

// run достаёт файл из формы, проверяет расширение и гоняет пайплайн.
func (h *AnalysisHandler) run(w http.ResponseWriter, r *http.Request) (*ports.Analysis, int, error) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, err
		}
		return nil, http.StatusBadRequest, err
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing file", Error: err})
		return nil, http.StatusBadRequest, err
	}
	defer file.Close()

	// allow-list upload-контрола: чужие расширения до пайплайна не доходят
	if !ports.IsAcceptedExt(ports.ExtOf(header.Filename)) {
		err := fmt.Errorf("%w: %q", ports.ErrUnsupportedFormat, header.Filename)
		h.log.Log(logger.LogEntry{Level: "warn", Message: "rejected upload", Error: err})
		return nil, http.StatusBadRequest, err
	}

	a, err := h.analysis.Analyze(r.Context(), header.Filename, file)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "analysis failed: " + header.Filename, Error: err})
		return nil, statusFor(err), err
	}
	return a, http.StatusOK, nil
}

// Audio — инлайн для плеера.
func (h *AnalysisHandler) Audio(w http.ResponseWriter, r *http.Request) {
	h.serveFluent(w, r, "inline")
}

// Download — то же самое, но attachment.
func (h *AnalysisHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serveFluent(w, r, "attachment")
}

func (h *AnalysisHandler) serveFluent(w http.ResponseWriter, r *http.Request, disposition string) {
	name := chi.URLParam(r, "name")

	f, err := h.workspace.OpenOutput(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || st.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", ports.FluentMimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{
		"filename": filepath.Base(name),
	}))
	http.ServeContent(w, r, name, st.ModTime(), f)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrMediaDecode), errors.Is(err, ports.ErrTranscription):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ports.ErrSynthesis):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *AnalysisHandler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, data); err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "render page", Error: err})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
