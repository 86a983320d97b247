package delivery

import (
	"embed"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// failureNotice — единственное сообщение об ошибке, которое видит пользователь.
const failureNotice = "Sorry, this file could not be processed. Please try another upload."

type pageData struct {
	Accept       string
	AcceptedList string
	Error        string
	Result       *resultView
}

type resultView struct {
	ID            string `json:"id"`
	FileName      string `json:"file_name"`
	FileSize      string `json:"file_size"`
	Duration      string `json:"duration,omitempty"`
	Transcription string `json:"transcription"`
	FluentName    string `json:"fluent_name"`
	AudioURL      string `json:"audio_url"`
	DownloadURL   string `json:"download_url"`
}

func newPageData() pageData {
	exts := ports.AcceptedExtensions()
	dotted := make([]string, len(exts))
	for i, e := range exts {
		dotted[i] = "." + e
	}
	return pageData{
		Accept:       strings.Join(dotted, ","),
		AcceptedList: strings.ToUpper(strings.Join(exts, ", ")),
	}
}

func newResultView(a *ports.Analysis) *resultView {
	v := &resultView{
		ID:            a.ID,
		FileName:      a.Upload.Name,
		FileSize:      humanize.Bytes(uint64(a.Upload.Size)),
		Transcription: a.Transcription,
		FluentName:    a.Fluent.Name,
		AudioURL:      "/outputs/" + url.PathEscape(a.Fluent.Name),
		DownloadURL:   "/download/" + url.PathEscape(a.Fluent.Name),
	}
	if a.Waveform.Duration > 0 {
		v.Duration = a.Waveform.Duration.Round(100 * time.Millisecond).String()
	}
	return v
}
