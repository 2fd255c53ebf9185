package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/clinicscribe-backend/internal/appointment"
	"github.com/yungbote/clinicscribe-backend/internal/clinical"
	"github.com/yungbote/clinicscribe-backend/internal/services"
)

type batchService struct {
	mu       sync.Mutex
	inflight int32
	peak     int32
	seen     []services.ProcessAudioInput
}

func (b *batchService) ProcessAudio(ctx context.Context, in services.ProcessAudioInput) (*services.ProcessAudioResult, error) {
	n := atomic.AddInt32(&b.inflight, 1)
	defer atomic.AddInt32(&b.inflight, -1)
	for {
		p := atomic.LoadInt32(&b.peak)
		if n <= p || atomic.CompareAndSwapInt32(&b.peak, p, n) {
			break
		}
	}
	b.mu.Lock()
	b.seen = append(b.seen, in)
	b.mu.Unlock()
	if string(in.Audio) == "silence" {
		return nil, errors.New("failed to transcribe audio")
	}
	return &services.ProcessAudioResult{Transcript: string(in.Audio), SOAP: clinical.EmptyRecord()}, nil
}

func (b *batchService) ApprovePlan(context.Context, services.ApprovePlanInput) (*appointment.Result, error) {
	return nil, errors.New("not used")
}

func (b *batchService) Ask(context.Context, services.ChatInput) (*clinical.Reply, error) {
	return nil, errors.New("not used")
}

func (b *batchService) Get(context.Context, string) (*services.ConsultationView, error) {
	return nil, errors.New("not used")
}

func writeAudio(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestProcessFilesKeepsOrderAndReportsFailures(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeAudio(t, dir, "a.wav", "doctor and patient"),
		writeAudio(t, dir, "b.mp3", "silence"),
		filepath.Join(dir, "missing.wav"),
		writeAudio(t, dir, "c.wav", "follow-up"),
	}
	svc := &batchService{}

	results, err := processFiles(context.Background(), svc, files, processOptions{Concurrency: 2, Realtime: true})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "doctor and patient", results[0].Result.Transcript)
	assert.Contains(t, results[1].Error, "transcribe")
	assert.NotEmpty(t, results[2].Error)
	assert.Nil(t, results[2].Result)
	assert.Equal(t, "follow-up", results[3].Result.Transcript)

	assert.LessOrEqual(t, atomic.LoadInt32(&svc.peak), int32(2))
	require.Len(t, svc.seen, 3)
	for _, in := range svc.seen {
		assert.True(t, in.Realtime)
	}
}

func TestProcessFilesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := processFiles(ctx, &batchService{}, []string{"a.wav"}, processOptions{Concurrency: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteResults(t *testing.T) {
	results := []fileResult{{File: "/tmp/visit.wav", Result: &services.ProcessAudioResult{Transcript: "hi", SOAP: clinical.EmptyRecord()}}}

	var stdout strings.Builder
	require.NoError(t, writeResults(&stdout, results, ""))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout.String()), &decoded))
	assert.Equal(t, "/tmp/visit.wav", decoded[0]["file"])

	out := t.TempDir()
	stdout.Reset()
	require.NoError(t, writeResults(&stdout, results, out))
	b, err := os.ReadFile(filepath.Join(out, "visit.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"transcript": "hi"`)
}
