package deepgram

import (
	"bytes"
	"encoding/json"
	"math"
)

// Deepgram payloads are decoded field by field. A field with the wrong JSON
// type decodes as absent instead of failing the whole response; only a body
// that is not a JSON object is an error.

type fields map[string]json.RawMessage

func decodeFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f, nil
}

func (f fields) raw(key string) (json.RawMessage, bool) {
	raw, ok := f[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func (f fields) str(key string) string {
	raw, ok := f.raw(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (f fields) float(key string) *float64 {
	raw, ok := f.raw(key)
	if !ok {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// integer accepts whole JSON numbers only.
func (f fields) integer(key string) *int {
	v := f.float(key)
	if v == nil || *v != math.Trunc(*v) {
		return nil
	}
	i := int(*v)
	return &i
}

// decodeList keeps the elements that decode; anything else is dropped.
func decodeList[T any](f fields, key string) []T {
	raw, ok := f.raw(key)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func decodeObject[T any](f fields, key string) *T {
	raw, ok := f.raw(key)
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func (r *Response) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*r = Response{Results: decodeObject[Results](f, "results")}
	return nil
}

func (r *Results) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*r = Results{
		Channels:   decodeList[Channel](f, "channels"),
		Utterances: decodeList[Utterance](f, "utterances"),
	}
	return nil
}

func (c *Channel) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*c = Channel{Alternatives: decodeList[Alternative](f, "alternatives")}
	return nil
}

func (a *Alternative) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*a = Alternative{
		Transcript: f.str("transcript"),
		Confidence: f.float("confidence"),
		Words:      decodeList[Word](f, "words"),
		Paragraphs: decodeObject[Paragraphs](f, "paragraphs"),
	}
	return nil
}

func (w *Word) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*w = Word{
		Word:           f.str("word"),
		PunctuatedWord: f.str("punctuated_word"),
		Start:          f.float("start"),
		End:            f.float("end"),
		Confidence:     f.float("confidence"),
		Speaker:        f.integer("speaker"),
	}
	return nil
}

func (p *Paragraphs) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*p = Paragraphs{
		Transcript: f.str("transcript"),
		Paragraphs: decodeList[Paragraph](f, "paragraphs"),
	}
	return nil
}

func (p *Paragraph) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*p = Paragraph{
		Speaker:   f.integer("speaker"),
		Start:     f.float("start"),
		End:       f.float("end"),
		Text:      f.str("text"),
		Sentences: decodeList[Sentence](f, "sentences"),
	}
	return nil
}

func (s *Sentence) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*s = Sentence{Text: f.str("text"), Start: f.float("start"), End: f.float("end")}
	return nil
}

func (u *Utterance) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*u = Utterance{
		Speaker:    f.integer("speaker"),
		Start:      f.float("start"),
		End:        f.float("end"),
		Transcript: f.str("transcript"),
		Confidence: f.float("confidence"),
	}
	return nil
}
