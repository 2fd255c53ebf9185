package speech

import "strings"

// RenderTranscript joins segments as "label: text" lines. A lone segment
// without a speaker id (flat fallback) renders as its bare text.
func RenderTranscript(segments []Segment) string {
	if len(segments) == 1 && segments[0].SpeakerID == nil {
		return segments[0].Text
	}
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, s.SpeakerLabel+": "+s.Text)
	}
	return strings.Join(lines, "\n")
}
