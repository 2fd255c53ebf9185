package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/clinicscribe-backend/internal/platform/deepgram"
	"github.com/yungbote/clinicscribe-backend/internal/platform/gcp"
)

// DeepgramRecognizer calls Deepgram pre-recorded transcription.
type DeepgramRecognizer struct {
	client deepgram.Client
}

func NewDeepgramRecognizer(client deepgram.Client) *DeepgramRecognizer {
	return &DeepgramRecognizer{client: client}
}

func (r *DeepgramRecognizer) Recognize(ctx context.Context, audio []byte, mimeType string, opts Options) (Recognition, error) {
	if r == nil || r.client == nil {
		return Recognition{}, fmt.Errorf("deepgram recognizer not configured")
	}
	resp, err := r.client.Transcribe(ctx, audio, mimeType, deepgram.Options{
		Model:        opts.Model,
		Language:     opts.Language,
		Diarize:      opts.Diarize,
		SpeakerCount: opts.SpeakerCount,
	})
	if err != nil {
		return Recognition{}, err
	}
	return NormalizeDeepgram(resp, opts.Diarize), nil
}

// GCPRecognizer calls Google Cloud Speech LongRunningRecognize.
type GCPRecognizer struct {
	speech gcp.Speech
}

func NewGCPRecognizer(s gcp.Speech) *GCPRecognizer {
	return &GCPRecognizer{speech: s}
}

func (r *GCPRecognizer) Recognize(ctx context.Context, audio []byte, mimeType string, opts Options) (Recognition, error) {
	if r == nil || r.speech == nil {
		return Recognition{}, fmt.Errorf("gcp recognizer not configured")
	}
	cfg := gcp.SpeechConfig{
		LanguageCode:             gcpLanguage(opts.Language),
		Model:                    opts.Model,
		EnableSpeakerDiarization: opts.Diarize,
	}
	if opts.Diarize && opts.SpeakerCount > 0 {
		cfg.MinSpeakerCount = opts.SpeakerCount
		cfg.MaxSpeakerCount = opts.SpeakerCount
	}
	res, err := r.speech.TranscribeAudioBytes(ctx, audio, mimeType, cfg)
	if err != nil {
		return Recognition{}, err
	}
	return NormalizeGCP(res), nil
}

// gcpLanguage widens a bare language ("en") to a BCP-47 code Speech accepts.
func gcpLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	switch strings.ToLower(lang) {
	case "":
		return "en-US"
	case "en":
		return "en-US"
	}
	return lang
}
