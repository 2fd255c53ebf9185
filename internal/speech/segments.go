package speech

import (
	"fmt"
	"strings"
)

// Segment is one speaker turn. Text is never blank.
type Segment struct {
	SpeakerLabel string   `json:"speaker"`
	SpeakerID    *int     `json:"speaker_id"`
	Start        *float64 `json:"start"`
	End          *float64 `json:"end"`
	Text         string   `json:"text"`
}

// DefaultLabel is the label an unresolved speaker keeps.
func DefaultLabel(id *int) string {
	if id == nil {
		return "Speaker"
	}
	return fmt.Sprintf("Speaker %d", *id)
}

// Reconstruct builds ordered segments from whichever granularity rec holds.
func Reconstruct(rec Recognition) []Segment {
	switch rec.Kind {
	case KindUtterances, KindParagraphs:
		out := make([]Segment, 0, len(rec.Units))
		for _, u := range rec.Units {
			text := strings.TrimSpace(u.Text)
			if text == "" {
				continue
			}
			out = append(out, newSegment(u.Speaker, u.Start, u.End, text))
		}
		return out
	case KindWords:
		return groupWords(rec.Words)
	default:
		text := strings.TrimSpace(rec.Flat)
		if text == "" {
			return []Segment{}
		}
		return []Segment{newSegment(nil, nil, nil, text)}
	}
}

func newSegment(id *int, start, end *float64, text string) Segment {
	return Segment{SpeakerLabel: DefaultLabel(id), SpeakerID: id, Start: start, End: end, Text: text}
}

// groupWords closes a group whenever the speaker tag changes.
func groupWords(words []Word) []Segment {
	out := []Segment{}
	if len(words) == 0 {
		return out
	}
	speaker, start := words[0].Speaker, words[0].Start
	var end *float64
	var parts []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text != "" {
			out = append(out, newSegment(speaker, start, end, text))
		}
		parts = parts[:0]
	}
	for i, w := range words {
		if i > 0 && !sameSpeaker(w.Speaker, speaker) {
			flush()
			speaker = w.Speaker
			start = w.Start
		}
		if t := strings.TrimSpace(w.Text); t != "" {
			parts = append(parts, t)
		}
		end = w.End
	}
	flush()
	return out
}

// Merge joins adjacent segments with the same label when both are timed.
// The input slice is not modified.
func Merge(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if prev.SpeakerLabel == seg.SpeakerLabel && timed(*prev) && timed(seg) {
				prev.Text = prev.Text + " " + seg.Text
				prev.End = seg.End
				continue
			}
		}
		out = append(out, seg)
	}
	return out
}

func timed(s Segment) bool {
	return s.Start != nil && s.End != nil
}
