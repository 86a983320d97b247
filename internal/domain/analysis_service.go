package domain

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Vovarama1992/speech_analyzer/internal/error_notificator"
	"github.com/Vovarama1992/speech_analyzer/internal/ports"
)

type analysisService struct {
	workspace   ports.Workspace
	normalizer  ports.MediaNormalizer
	transcriber ports.Transcriber
	synthesizer ports.Synthesizer
	notifier    error_notificator.Notificator
	log         *logger.ZapLogger

	// один прогон за раз: общие uploads/ и outputs/ без изоляции
	mu sync.Mutex
}

func NewAnalysisService(
	ws ports.Workspace,
	normalizer ports.MediaNormalizer,
	transcriber ports.Transcriber,
	synthesizer ports.Synthesizer,
	notifier error_notificator.Notificator,
	log *logger.ZapLogger,
) ports.AnalysisService {
	return &analysisService{
		workspace:   ws,
		normalizer:  normalizer,
		transcriber: transcriber,
		synthesizer: synthesizer,
		notifier:    notifier,
		log:         log,
	}
}

// Analyze: Idle → Received → Normalized → Transcribed → Synthesized → Presented.
// Первая же ошибка обрывает прогон, частичный результат не отдаётся.
func (s *analysisService) Analyze(ctx context.Context, filename string, body io.Reader) (*ports.Analysis, error) {
	a := &ports.Analysis{ID: uuid.NewString(), Stage: ports.StageIdle}

	ext := ports.ExtOf(filename)
	if !ports.IsAcceptedExt(ext) {
		// до пайплайна не доходим, алертить нечего
		return nil, &ports.PipelineError{Stage: ports.StageIdle, Err: fmt.Errorf("%w: %q", ports.ErrUnsupportedFormat, filename)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	// --- received ---
	up, err := s.workspace.SaveUpload(ctx, filename, body)
	if err != nil {
		return nil, s.fail(ctx, a, ports.StageReceived, err)
	}
	a.Upload = up
	s.advance(a, ports.StageReceived, fmt.Sprintf("%s (%s)", up.Name, humanize.Bytes(uint64(up.Size))))

	// --- normalized ---
	wf, err := s.normalizer.Normalize(ctx, up.Path, up.Ext)
	if err != nil {
		return nil, s.fail(ctx, a, ports.StageNormalized, err)
	}
	a.Waveform = wf
	s.advance(a, ports.StageNormalized, fmt.Sprintf("%s extracted=%t", wf.Path, wf.Extracted))

	// --- transcribed ---
	text, err := s.transcriber.Transcribe(ctx, wf)
	if err != nil {
		return nil, s.fail(ctx, a, ports.StageTranscribed, err)
	}
	a.Transcription = text
	s.advance(a, ports.StageTranscribed, fmt.Sprintf("%d chars", len(text)))

	// --- synthesized ---
	fluent, err := s.synthesizer.Synthesize(ctx, text, wf.BaseName())
	if err != nil {
		return nil, s.fail(ctx, a, ports.StageSynthesized, err)
	}
	a.Fluent = fluent
	s.advance(a, ports.StageSynthesized, fmt.Sprintf("%s (%s)", fluent.Name, humanize.Bytes(uint64(fluent.Size))))

	s.advance(a, ports.StagePresented, "done in "+time.Since(start).Round(time.Millisecond).String())
	return a, nil
}

func (s *analysisService) advance(a *ports.Analysis, st ports.Stage, details string) {
	a.Stage = st
	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("[analysis] run=%s stage=%s %s", a.ID, st, details),
	})
}

func (s *analysisService) fail(ctx context.Context, a *ports.Analysis, st ports.Stage, err error) error {
	perr := &ports.PipelineError{Stage: st, Err: err}
	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, perr, fmt.Sprintf("run=%s file=%q stage=%s", a.ID, a.Upload.Name, st))
	}
	return perr
}
