package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/speech_analyzer/internal/config"
	"github.com/Vovarama1992/speech_analyzer/internal/delivery"
	"github.com/Vovarama1992/speech_analyzer/internal/domain"
	"github.com/Vovarama1992/speech_analyzer/internal/error_notificator"
	"github.com/Vovarama1992/speech_analyzer/internal/infra"
	"github.com/Vovarama1992/speech_analyzer/internal/media"
	"github.com/Vovarama1992/speech_analyzer/internal/speech"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	ws, err := infra.NewWorkspace(cfg.UploadDir, cfg.OutputDir)
	if err != nil {
		log.Fatalf("failed to init workspace: %v", err)
	}

	ffmpeg := media.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath)

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var errService *error_notificator.Service
	if cfg.Telegram.BotToken != "" {
		tg, err := error_notificator.NewTelegramInfra(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
		if err != nil {
			log.Fatalf("failed to init telegram notificator: %v", err)
		}
		errService = error_notificator.NewService(tg, zl)
	} else {
		errService = error_notificator.NewService(nil, zl)
	}

	// =========================================================================
	// CLIENTS (STT / TTS)
	// =========================================================================

	var ttsClient speech.TTSClient
	switch cfg.TTS.Provider {
	case config.TTSElevenLabs:
		ttsClient = speech.NewElevenLabsClient(cfg.TTS.ElevenLabsKey, cfg.TTS.ElevenLabsVoiceID, cfg.TTS.ElevenLabsModel, cfg.TTS.Language)
	case config.TTSOpenAI:
		ttsClient = speech.NewOpenAITTS(cfg.TTS.OpenAIKey, cfg.TTS.OpenAIBaseURL, cfg.TTS.OpenAIVoice)
	default:
		ttsClient = speech.NewGoogleTTS(cfg.TTS.Language)
	}

	transcriber := speech.NewTranscriber(
		speech.NewModelLoader(cfg.STT),
		ffmpeg,
		cfg.STT.MaxOutputTokens,
		zl,
	)

	// модель грузим один раз на старте, дальше все запросы её переиспользуют
	warmCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// log.Fatalf не запускает defer, контекст гасим до выхода
	err = transcriber.Warmup(warmCtx)
	cancel()
	if err != nil {
		log.Fatalf("failed to load stt model: %v", err)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	analysisService := domain.NewAnalysisService(
		ws,
		media.NewNormalizer(ffmpeg, zl),
		transcriber,
		speech.NewSynthesizer(ttsClient, ws.OutputDir()),
		errService,
		zl,
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	analysisHandler := delivery.NewAnalysisHandler(analysisService, ws, cfg.MaxUploadBytes, zl)
	delivery.RegisterRoutes(r, analysisHandler, cfg.RateLimitPerMin)

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "speech_analyzer",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
