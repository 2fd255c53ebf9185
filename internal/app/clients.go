package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/clinicscribe-backend/internal/platform/deepgram"
	"github.com/yungbote/clinicscribe-backend/internal/platform/gcp"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
	"github.com/yungbote/clinicscribe-backend/internal/platform/openai"
	"github.com/yungbote/clinicscribe-backend/internal/platform/sendgrid"
	"github.com/yungbote/clinicscribe-backend/internal/speech"
)

type Clients struct {
	OpenAI     openai.Client
	Recognizer speech.Recognizer
	SendGrid   sendgrid.Client

	closers []func() error
}

// wireClients requires the text oracle. A missing speech or email provider
// is logged; the affected stage then reports not_configured.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Openai
	oai, err := openai.New(log, cfg.OpenAI)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	out.OpenAI = oai

	// Speech
	switch cfg.SpeechProvider {
	case SpeechProviderGCP:
		s, err := gcp.NewSpeech(ctx, log, gcp.ClientOptionsFromEnv()...)
		if err != nil {
			log.Warn("GCP speech unavailable", "error", err)
			break
		}
		out.Recognizer = speech.NewGCPRecognizer(s)
		out.closers = append(out.closers, s.Close)
	default:
		dg, err := deepgram.New(log, cfg.Deepgram)
		if err != nil {
			log.Warn("Deepgram unavailable", "error", err)
			break
		}
		out.Recognizer = speech.NewDeepgramRecognizer(dg)
	}

	// Sendgrid
	if strings.TrimSpace(cfg.SendGrid.APIKey) != "" {
		sg, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		out.SendGrid = sg
	} else {
		log.Warn("SENDGRID_API_KEY not set; appointment emails cannot be delivered")
	}
	return out, nil
}

func (c Clients) Close() {
	for _, fn := range c.closers {
		_ = fn()
	}
}
