package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

type Speech interface {
	TranscribeAudioBytes(ctx context.Context, audio []byte, mimeType string, cfg SpeechConfig) (*SpeechResult, error)
	Close() error
}

type SpeechConfig struct {
	LanguageCode string
	Model        string

	EnableSpeakerDiarization bool
	MinSpeakerCount          int
	MaxSpeakerCount          int

	SampleRateHertz int
	Encoding        speechpb.RecognitionConfig_AudioEncoding
}

// SpeechWord is one recognized word. SpeakerTag 0 means untagged.
type SpeechWord struct {
	Text       string
	Start      float64
	End        float64
	SpeakerTag int
}

type SpeechResult struct {
	Transcript string
	Words      []SpeechWord
}

type speechService struct {
	log        *logger.Logger
	client     *speech.Client
	maxRetries int
}

func NewSpeech(ctx context.Context, log *logger.Logger, opts ...option.ClientOption) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(opts) == 0 {
		opts = ClientOptionsFromEnv()
	}
	c, err := speech.NewClient(ctxutil.Default(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &speechService{
		log:        log.With("client", "gcp.Speech"),
		client:     c,
		maxRetries: 2,
	}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechService) TranscribeAudioBytes(ctx context.Context, audio []byte, mimeType string, cfg SpeechConfig) (*SpeechResult, error) {
	ctx = ctxutil.Default(ctx)
	if len(audio) == 0 {
		return &SpeechResult{}, nil
	}
	req := &speechpb.LongRunningRecognizeRequest{
		Config: buildRecognitionConfig(mimeType, cfg),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	}
	resp, err := s.retryLR(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := s.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	return parseSpeechResponse(resp), nil
}

func buildRecognitionConfig(mimeType string, cfg SpeechConfig) *speechpb.RecognitionConfig {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	enc := cfg.Encoding
	if enc == speechpb.RecognitionConfig_ENCODING_UNSPECIFIED {
		enc = inferSpeechEncoding(mimeType)
	}
	rc := &speechpb.RecognitionConfig{
		LanguageCode:               cfg.LanguageCode,
		Model:                      cfg.Model,
		EnableAutomaticPunctuation: true,
		EnableWordTimeOffsets:      true,
		Encoding:                   enc,
		SampleRateHertz:            int32(max(cfg.SampleRateHertz, 0)),
	}
	if cfg.EnableSpeakerDiarization {
		rc.DiarizationConfig = &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          int32(max(cfg.MinSpeakerCount, 0)),
			MaxSpeakerCount:          int32(max(cfg.MaxSpeakerCount, 0)),
		}
	}
	return rc
}

func inferSpeechEncoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(m, "wav"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mp3"), strings.Contains(m, "mpeg"):
		return speechpb.RecognitionConfig_MP3
	case strings.Contains(m, "ogg"), strings.Contains(m, "opus"):
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(m, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// parseSpeechResponse flattens results. With diarization enabled the final
// result repeats every word with its speaker tag, so words are taken from the
// last result that carries tags; otherwise words are concatenated in order.
func parseSpeechResponse(resp *speechpb.LongRunningRecognizeResponse) *SpeechResult {
	out := &SpeechResult{}
	if resp == nil {
		return out
	}
	var full []string
	var plain, tagged []SpeechWord
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 || alts[0] == nil {
			continue
		}
		alt := alts[0]
		if t := strings.TrimSpace(alt.GetTranscript()); t != "" {
			full = append(full, t)
		}
		words := make([]SpeechWord, 0, len(alt.GetWords()))
		hasTag := false
		for _, w := range alt.GetWords() {
			if w == nil {
				continue
			}
			if w.GetSpeakerTag() != 0 {
				hasTag = true
			}
			words = append(words, SpeechWord{
				Text:       w.GetWord(),
				Start:      durToSec(w.GetStartTime()),
				End:        durToSec(w.GetEndTime()),
				SpeakerTag: int(w.GetSpeakerTag()),
			})
		}
		if hasTag {
			tagged = words
		} else {
			plain = append(plain, words...)
		}
	}
	out.Transcript = strings.Join(full, " ")
	if len(tagged) > 0 {
		out.Words = tagged
	} else {
		out.Words = plain
	}
	return out
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}

func (s *speechService) retryLR(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err
		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		s.log.Warn("speech recognize retrying", "attempt", attempt+1, "code", code.String())
		time.Sleep(backoff)
		backoff *= 2
	}
	return nil, last
}
