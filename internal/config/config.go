package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	STTWhisper  = "whisper"
	STTDeepgram = "deepgram"

	TTSGoogle     = "gtts"
	TTSElevenLabs = "elevenlabs"
	TTSOpenAI     = "openai"
)

type Config struct {
	Port            string
	UploadDir       string
	OutputDir       string
	MaxUploadBytes  int64 // 0 — без лимита
	RateLimitPerMin int
	FFmpegPath      string
	FFprobePath     string

	STT      STTConfig
	TTS      TTSConfig
	Telegram TelegramConfig
}

type STTConfig struct {
	Provider          string
	OpenAIKey         string
	OpenAIBaseURL     string
	WhisperModel      string
	DeepgramKey       string
	DeepgramModel     string
	DeepgramLanguage  string
	TokenizerEncoding string
	MaxOutputTokens   int
}

type TTSConfig struct {
	Provider          string
	Language          string
	ElevenLabsKey     string
	ElevenLabsVoiceID string
	ElevenLabsModel   string
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIVoice       string
}

// Telegram — куда слать алерты об ошибках. Пустой токен — только лог.
type TelegramConfig struct {
	BotToken    string
	AdminChatID int64
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		UploadDir:   getenv("UPLOAD_DIR", "uploads"),
		OutputDir:   getenv("OUTPUT_DIR", "outputs"),
		FFmpegPath:  getenv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getenv("FFPROBE_PATH", "ffprobe"),
		STT: STTConfig{
			Provider:          strings.ToLower(getenv("STT_PROVIDER", STTWhisper)),
			OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
			WhisperModel:      getenv("WHISPER_MODEL", "whisper-1"),
			DeepgramKey:       os.Getenv("DEEPGRAM_API_KEY"),
			DeepgramModel:     getenv("DEEPGRAM_MODEL", "nova-2"),
			DeepgramLanguage:  os.Getenv("DEEPGRAM_LANGUAGE"),
			TokenizerEncoding: getenv("TOKENIZER_ENCODING", "r50k_base"),
		},
		TTS: TTSConfig{
			Provider:          strings.ToLower(getenv("TTS_PROVIDER", TTSGoogle)),
			Language:          getenv("TTS_LANGUAGE", "en"),
			ElevenLabsKey:     os.Getenv("ELEVENLABS_API_KEY"),
			ElevenLabsVoiceID: getenv("ELEVENLABS_VOICE_ID", "EXAVITQu4vr4xnSDxMaL"), // Rachel
			ElevenLabsModel:   getenv("ELEVENLABS_MODEL", "eleven_turbo_v2_5"),
			OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
			OpenAIVoice:       getenv("OPENAI_TTS_VOICE", "alloy"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
	}

	var err error
	if cfg.STT.MaxOutputTokens, err = getint("MAX_OUTPUT_TOKENS", 1024); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMin, err = getint("RATE_LIMIT_PER_MIN", 10); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes, err = getint64("MAX_UPLOAD_BYTES", 0); err != nil {
		return nil, err
	}
	if cfg.Telegram.AdminChatID, err = getint64("TELEGRAM_ADMIN_CHAT_ID", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.STT.Provider {
	case STTWhisper:
		// локальный whisper-сервер может жить без ключа
		if c.STT.OpenAIKey == "" && c.STT.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY is not set")
		}
	case STTDeepgram:
		if c.STT.DeepgramKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q", c.STT.Provider)
	}

	switch c.TTS.Provider {
	case TTSGoogle:
	case TTSElevenLabs:
		if c.TTS.ElevenLabsKey == "" {
			return fmt.Errorf("ELEVENLABS_API_KEY is not set")
		}
	case TTSOpenAI:
		if c.TTS.OpenAIKey == "" && c.TTS.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q", c.TTS.Provider)
	}

	if c.STT.MaxOutputTokens <= 0 {
		return fmt.Errorf("MAX_OUTPUT_TOKENS must be positive")
	}
	if c.Telegram.BotToken != "" && c.Telegram.AdminChatID == 0 {
		return fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is required with TELEGRAM_BOT_TOKEN")
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getint64(key string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
