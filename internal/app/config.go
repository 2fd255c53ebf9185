package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/clinicscribe-backend/internal/data/db"
	httpH "github.com/yungbote/clinicscribe-backend/internal/http/handlers"
	"github.com/yungbote/clinicscribe-backend/internal/platform/deepgram"
	"github.com/yungbote/clinicscribe-backend/internal/platform/envutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
	"github.com/yungbote/clinicscribe-backend/internal/platform/openai"
	"github.com/yungbote/clinicscribe-backend/internal/platform/sendgrid"
	"github.com/yungbote/clinicscribe-backend/internal/speech"
)

const (
	SpeechProviderDeepgram = "deepgram"
	SpeechProviderGCP      = "gcp"
)

type Config struct {
	LogMode     string
	Port        string
	ServiceName string
	Environment string
	Version     string

	SpeechProvider string
	Speech         speech.Options
	Roles          speech.RoleConfig

	EmailEnabled   bool
	MetricsEnabled bool
	MaxAudioBytes  int64
	CORSOrigins    []string

	DB       db.Config
	OpenAI   openai.Config
	Deepgram deepgram.Config
	SendGrid sendgrid.Config
}

func LoadConfig(log *logger.Logger) (Config, error) {
	roles, err := loadRoleConfig(log)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		Port:        envutil.String("PORT", "8080"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "clinicscribe"),
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("VERSION", "dev"),

		SpeechProvider: strings.ToLower(envutil.String("SPEECH_PROVIDER", SpeechProviderDeepgram)),
		Speech: speech.Options{
			Diarize:      envutil.Bool("SPEECH_DIARIZE", true),
			Language:     envutil.String("SPEECH_LANGUAGE", "en"),
			SpeakerCount: envutil.Int("SPEAKER_COUNT", 2),
			Model:        envutil.String("SPEECH_MODEL", ""),
		},
		Roles: roles,

		EmailEnabled:   envutil.Bool("EMAIL_ENABLED", true),
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		MaxAudioBytes:  int64(envutil.Int("MAX_AUDIO_MB", 64)) << 20,
		CORSOrigins:    envutil.CSV("CORS_ALLOWED_ORIGINS"),

		DB:       db.ConfigFromEnv(),
		OpenAI:   openai.ConfigFromEnv(),
		Deepgram: deepgram.ConfigFromEnv(),
		SendGrid: sendgrid.ConfigFromEnv(),
	}
	switch cfg.SpeechProvider {
	case SpeechProviderDeepgram, SpeechProviderGCP:
	default:
		return Config{}, fmt.Errorf("unknown SPEECH_PROVIDER %q", cfg.SpeechProvider)
	}
	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = httpH.DefaultMaxAudioBytes
	}
	return cfg, nil
}

// loadRoleConfig starts from the defaults, applies ROLE_PROFILE_PATH, then the
// SPEAKER_* variables.
func loadRoleConfig(log *logger.Logger) (speech.RoleConfig, error) {
	roles := speech.DefaultRoleConfig()
	if path := envutil.String("ROLE_PROFILE_PATH", ""); path != "" {
		profile, err := speech.LoadRoleProfile(path)
		if err != nil {
			return speech.RoleConfig{}, fmt.Errorf("load role profile: %w", err)
		}
		roles = profile
		log.Info("Loaded role profile", "path", path, "labels", len(roles.Labels), "explicit", len(roles.ExplicitMap))
	}
	if raw := envutil.String("SPEAKER_LABELS", ""); raw != "" {
		roles.Labels = speech.ParseSpeakerLabels(raw)
	}
	if raw := envutil.String("SPEAKER_MAP", ""); raw != "" {
		roles.ExplicitMap = speech.ParseSpeakerMap(raw)
	}
	roles.InferRoles = envutil.Bool("SPEAKER_INFER_ROLES", roles.InferRoles)
	return roles, nil
}
