package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/languages"
	"github.com/storylingo/backend/internal/types"
)

type ttsCall struct {
	Text       string
	Language   languages.Code
	Emphasized bool
}

type fakeTTS struct {
	calls []ttsCall
	err   error
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string, language languages.Code, emphasized bool) ([]byte, error) {
	f.calls = append(f.calls, ttsCall{Text: text, Language: language, Emphasized: emphasized})
	if f.err != nil {
		return nil, f.err
	}
	return []byte(text + "|"), nil
}

func (f *fakeTTS) Close() error { return nil }

type fakeBucket struct {
	uploads map[string][]byte
	err     error
}

func (f *fakeBucket) UploadFile(ctx context.Context, key string, file io.Reader) error {
	data, _ := io.ReadAll(file)
	return f.UploadBytes(ctx, key, data)
}

func (f *fakeBucket) UploadBytes(ctx context.Context, key string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeBucket) DeleteFile(ctx context.Context, key string) error { return nil }

func (f *fakeBucket) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func chunks() []types.TranslationChunk {
	return []types.TranslationChunk{
		{Chunk: "Der Hund jagt die Katze.", TranslatedChunk: "The dog chases the cat."},
		{Chunk: "Die Katze rennt schnell.", TranslatedChunk: "The cat runs fast."},
	}
}

func TestAudioAssemblerOrder(t *testing.T) {
	log := newTestLogger(t)
	tts := &fakeTTS{}
	bucket := &fakeBucket{}
	assembler := NewAudioAssembler(log, tts, bucket)

	unknown := []*types.UnknownWord{{Word: "jagen"}, {Word: "rennen"}}
	url, err := assembler.Assemble(context.Background(), chunks(), unknown, languages.DE, languages.EN)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/stories/audio/") || !strings.HasSuffix(url, ".mp3") {
		t.Errorf("unexpected audio url: %q", url)
	}

	if len(tts.calls) != 4 {
		t.Fatalf("expected 4 synth calls, got %d", len(tts.calls))
	}
	// target chunk then its translation, per chunk
	if tts.calls[0].Language != languages.DE || tts.calls[1].Language != languages.EN {
		t.Errorf("unexpected language order: %+v", tts.calls[:2])
	}
	if tts.calls[2].Language != languages.DE || tts.calls[3].Language != languages.EN {
		t.Errorf("unexpected language order: %+v", tts.calls[2:])
	}
}

func TestAudioAssemblerEmphasizesUnknownChunks(t *testing.T) {
	log := newTestLogger(t)
	tts := &fakeTTS{}
	assembler := NewAudioAssembler(log, tts, &fakeBucket{})

	in := []types.TranslationChunk{
		{Chunk: "Der Hund schläft.", TranslatedChunk: "The dog sleeps."},
		{Chunk: "Die Katze will jagen.", TranslatedChunk: "The cat wants to chase."},
	}
	unknown := []*types.UnknownWord{{Word: "Jagen"}}
	if _, err := assembler.Assemble(context.Background(), in, unknown, languages.DE, languages.EN); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if tts.calls[0].Emphasized {
		t.Errorf("chunk without unknown word should not be emphasized")
	}
	if !tts.calls[2].Emphasized {
		t.Errorf("chunk with unknown word should be emphasized")
	}
	// translations are never emphasized
	if tts.calls[1].Emphasized || tts.calls[3].Emphasized {
		t.Errorf("translated chunks must use the normal rate")
	}
}

func TestAudioAssemblerConcatenatesPayloads(t *testing.T) {
	log := newTestLogger(t)
	bucket := &fakeBucket{}
	assembler := NewAudioAssembler(log, &fakeTTS{}, bucket)

	if _, err := assembler.Assemble(context.Background(), chunks(), nil, languages.DE, languages.EN); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(bucket.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(bucket.uploads))
	}
	for _, data := range bucket.uploads {
		want := []byte("Der Hund jagt die Katze.|The dog chases the cat.|Die Katze rennt schnell.|The cat runs fast.|")
		if !bytes.Equal(data, want) {
			t.Errorf("unexpected payload: %q", data)
		}
	}
}

func TestAudioAssemblerSynthesisFailure(t *testing.T) {
	log := newTestLogger(t)
	tts := &fakeTTS{err: errors.New("voice down")}
	assembler := NewAudioAssembler(log, tts, &fakeBucket{})

	_, err := assembler.Assemble(context.Background(), chunks(), nil, languages.DE, languages.EN)
	if !apperr.IsKind(err, apperr.KindSynthesis) {
		t.Fatalf("expected synthesis kind, got %v", err)
	}
}

func TestAudioAssemblerStorageFailure(t *testing.T) {
	log := newTestLogger(t)
	bucket := &fakeBucket{err: errors.New("bucket down")}
	assembler := NewAudioAssembler(log, &fakeTTS{}, bucket)

	_, err := assembler.Assemble(context.Background(), chunks(), nil, languages.DE, languages.EN)
	if !apperr.IsKind(err, apperr.KindStorage) {
		t.Fatalf("expected storage kind, got %v", err)
	}
}
