package speech

import "context"

// Kind names the granularity a recognition result was resolved to.
type Kind string

const (
	KindUtterances Kind = "utterances"
	KindParagraphs Kind = "paragraphs"
	KindWords      Kind = "words"
	KindFlat       Kind = "flat"
)

// Options are passed to the speech-to-text provider.
type Options struct {
	Diarize      bool
	Language     string
	SpeakerCount int
	Model        string
}

// Unit is one utterance or paragraph attributed to a single speaker.
type Unit struct {
	Speaker *int
	Start   *float64
	End     *float64
	Text    string
}

// Word carries an optional per-word speaker tag.
type Word struct {
	Text    string
	Speaker *int
	Start   *float64
	End     *float64
}

// Recognition is a provider result resolved to exactly one granularity.
// Units is populated for KindUtterances and KindParagraphs, Words for
// KindWords. Flat always holds the provider's flat transcript.
type Recognition struct {
	Kind  Kind
	Units []Unit
	Words []Word
	Flat  string
}

// Recognizer wraps a speech-to-text provider.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, mimeType string, opts Options) (Recognition, error)
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func sameSpeaker(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
