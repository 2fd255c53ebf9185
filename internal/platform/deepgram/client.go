package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/envutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/httpx"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

// Client calls the Deepgram pre-recorded transcription endpoint.
type Client interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string, opts Options) (*Response, error)
}

type Options struct {
	Model        string
	Language     string
	Diarize      bool
	SpeakerCount int
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     envutil.String("DEEPGRAM_API_KEY", ""),
		BaseURL:    envutil.String("DEEPGRAM_BASE_URL", "https://api.deepgram.com"),
		Model:      envutil.String("DEEPGRAM_MODEL", "nova-2-general"),
		Timeout:    time.Duration(envutil.Int("DEEPGRAM_TIMEOUT_SECONDS", 300)) * time.Second,
		MaxRetries: envutil.Int("DEEPGRAM_MAX_RETRIES", 0),
	}
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing DEEPGRAM_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.deepgram.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "nova-2-general"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("client", "DeepgramClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// --- response wire types; every field is optional ---

type Response struct {
	Results *Results `json:"results,omitempty"`
}

type Results struct {
	Channels   []Channel   `json:"channels,omitempty"`
	Utterances []Utterance `json:"utterances,omitempty"`
}

type Channel struct {
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

type Alternative struct {
	Transcript string      `json:"transcript,omitempty"`
	Confidence *float64    `json:"confidence,omitempty"`
	Words      []Word      `json:"words,omitempty"`
	Paragraphs *Paragraphs `json:"paragraphs,omitempty"`
}

type Word struct {
	Word           string   `json:"word,omitempty"`
	PunctuatedWord string   `json:"punctuated_word,omitempty"`
	Start          *float64 `json:"start,omitempty"`
	End            *float64 `json:"end,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"`
	Speaker        *int     `json:"speaker,omitempty"`
}

type Paragraphs struct {
	Transcript string      `json:"transcript,omitempty"`
	Paragraphs []Paragraph `json:"paragraphs,omitempty"`
}

type Paragraph struct {
	Speaker   *int       `json:"speaker,omitempty"`
	Start     *float64   `json:"start,omitempty"`
	End       *float64   `json:"end,omitempty"`
	Text      string     `json:"text,omitempty"`
	Sentences []Sentence `json:"sentences,omitempty"`
}

type Sentence struct {
	Text  string   `json:"text,omitempty"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

type Utterance struct {
	Speaker    *int     `json:"speaker,omitempty"`
	Start      *float64 `json:"start,omitempty"`
	End        *float64 `json:"end,omitempty"`
	Transcript string   `json:"transcript,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// FirstAlternative returns results.channels[0].alternatives[0], or nil.
func (r *Response) FirstAlternative() *Alternative {
	if r == nil || r.Results == nil || len(r.Results.Channels) == 0 {
		return nil
	}
	ch := r.Results.Channels[0]
	if len(ch.Alternatives) == 0 {
		return nil
	}
	return &ch.Alternatives[0]
}

// ParagraphText joins sentence texts when a paragraph carries no flat text.
func (p Paragraph) ParagraphText() string {
	if t := strings.TrimSpace(p.Text); t != "" {
		return t
	}
	parts := make([]string, 0, len(p.Sentences))
	for _, s := range p.Sentences {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 2000 {
		body = body[:2000] + "..."
	}
	return fmt.Sprintf("deepgram http %d: %s", e.StatusCode, body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) Transcribe(ctx context.Context, audio []byte, mimeType string, opts Options) (*Response, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("deepgram: empty audio")
	}
	path := "/v1/listen?" + buildQuery(c.cfg.Model, opts).Encode()
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "application/octet-stream"
	}

	_, raw, err := httpx.Do(ctxutil.Default(ctx), c.cfg.MaxRetries, func(ctx context.Context) (*http.Response, []byte, error) {
		return c.doOnce(ctx, path, mimeType, audio)
	}, func(attempt int, sleep time.Duration, err error) {
		c.log.Warn("Deepgram request retrying",
			"attempt", attempt,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleep.String(),
			"error", err.Error(),
		)
	})
	if err != nil {
		return nil, err
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("deepgram decode error: %w", err)
	}
	return &out, nil
}

func buildQuery(defaultModel string, opts Options) url.Values {
	q := url.Values{}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	q.Set("model", model)
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	q.Set("diarize", strconv.FormatBool(opts.Diarize))
	q.Set("utterances", strconv.FormatBool(opts.Diarize))
	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = "en"
	}
	q.Set("language", language)
	if opts.Diarize && opts.SpeakerCount > 0 {
		q.Set("diarize_speaker_count", strconv.Itoa(opts.SpeakerCount))
	}
	return q
}

func (c *client) doOnce(ctx context.Context, path, mimeType string, audio []byte) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(audio))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Token "+c.cfg.APIKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}
