package speech

import (
	"strings"

	"github.com/yungbote/clinicscribe-backend/internal/platform/deepgram"
	"github.com/yungbote/clinicscribe-backend/internal/platform/gcp"
)

// NormalizeDeepgram resolves a Deepgram payload to one granularity:
// utterances (diarized only), then paragraphs, then words carrying any
// speaker tag, then the flat transcript.
func NormalizeDeepgram(resp *deepgram.Response, diarize bool) Recognition {
	alt := resp.FirstAlternative()
	rec := Recognition{Kind: KindFlat}
	if alt != nil {
		rec.Flat = strings.TrimSpace(alt.Transcript)
	}

	if diarize && resp != nil && resp.Results != nil && len(resp.Results.Utterances) > 0 {
		units := make([]Unit, 0, len(resp.Results.Utterances))
		for _, u := range resp.Results.Utterances {
			units = append(units, Unit{Speaker: u.Speaker, Start: u.Start, End: u.End, Text: u.Transcript})
		}
		rec.Kind, rec.Units = KindUtterances, units
		return rec
	}
	if alt == nil {
		return rec
	}
	if alt.Paragraphs != nil && len(alt.Paragraphs.Paragraphs) > 0 {
		units := make([]Unit, 0, len(alt.Paragraphs.Paragraphs))
		for _, p := range alt.Paragraphs.Paragraphs {
			units = append(units, Unit{Speaker: p.Speaker, Start: p.Start, End: p.End, Text: p.ParagraphText()})
		}
		rec.Kind, rec.Units = KindParagraphs, units
		return rec
	}
	tagged := false
	words := make([]Word, 0, len(alt.Words))
	for _, w := range alt.Words {
		text := w.PunctuatedWord
		if strings.TrimSpace(text) == "" {
			text = w.Word
		}
		if w.Speaker != nil {
			tagged = true
		}
		words = append(words, Word{Text: text, Speaker: w.Speaker, Start: w.Start, End: w.End})
	}
	if tagged {
		rec.Kind, rec.Words = KindWords, words
	}
	return rec
}

// NormalizeGCP maps Google Speech words to the word-tagged variant when any
// word carries a speaker tag. GCP tags start at 1; tag n becomes speaker n-1
// so ids line up with zero-indexed label lists.
func NormalizeGCP(res *gcp.SpeechResult) Recognition {
	if res == nil {
		return Recognition{Kind: KindFlat}
	}
	rec := Recognition{Kind: KindFlat, Flat: strings.TrimSpace(res.Transcript)}
	tagged := false
	words := make([]Word, 0, len(res.Words))
	for _, w := range res.Words {
		word := Word{Text: w.Text, Start: floatPtr(w.Start), End: floatPtr(w.End)}
		if w.SpeakerTag > 0 {
			word.Speaker = intPtr(w.SpeakerTag - 1)
			tagged = true
		}
		words = append(words, word)
	}
	if tagged {
		rec.Kind, rec.Words = KindWords, words
	}
	return rec
}
