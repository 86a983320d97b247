package ports

import (
	"context"
	"fmt"
	"io"
)

// Stage — состояние одного прогона пайплайна.
type Stage int

const (
	StageIdle Stage = iota
	StageReceived
	StageNormalized
	StageTranscribed
	StageSynthesized
	StagePresented
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageReceived:
		return "received"
	case StageNormalized:
		return "normalized"
	case StageTranscribed:
		return "transcribed"
	case StageSynthesized:
		return "synthesized"
	case StagePresented:
		return "presented"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Analysis — результат успешного прогона.
type Analysis struct {
	ID            string
	Upload        UploadedFile
	Waveform      Waveform
	Transcription string
	Fluent        FluentAudio
	Stage         Stage
}

// PipelineError — на какой стадии упали и почему.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

type AnalysisService interface {
	Analyze(ctx context.Context, filename string, body io.Reader) (*Analysis, error)
}
