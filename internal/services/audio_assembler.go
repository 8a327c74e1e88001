package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/storylingo/backend/internal/apperr"
	"github.com/storylingo/backend/internal/languages"
	"github.com/storylingo/backend/internal/logger"
	"github.com/storylingo/backend/internal/types"
)

type AudioAssembler interface {
	// Assemble synthesizes the story audio (target chunk, then its
	// translation, per chunk), uploads the combined MP3 and returns its URL.
	Assemble(ctx context.Context, chunks []types.TranslationChunk, unknownWords []*types.UnknownWord, languageCode, originalLanguageCode languages.Code) (string, error)
}

type audioAssembler struct {
	log    *logger.Logger
	tts    TTSProviderService
	bucket BucketService
}

func NewAudioAssembler(log *logger.Logger, tts TTSProviderService, bucket BucketService) AudioAssembler {
	return &audioAssembler{
		log:    log.With("service", "AudioAssembler"),
		tts:    tts,
		bucket: bucket,
	}
}

// containsUnknownWord reports whether the chunk mentions any of the unknown
// lemmas. Matching is case-insensitive on the surface text; an inflected
// form that diverges from its lemma is simply not emphasized.
func containsUnknownWord(chunk string, unknownWords []*types.UnknownWord) bool {
	lower := strings.ToLower(chunk)
	for _, w := range unknownWords {
		if w.Word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(w.Word)) {
			return true
		}
	}
	return false
}

func (a *audioAssembler) Assemble(ctx context.Context, chunks []types.TranslationChunk, unknownWords []*types.UnknownWord, languageCode, originalLanguageCode languages.Code) (string, error) {
	var combined bytes.Buffer

	for i, chunk := range chunks {
		emphasized := containsUnknownWord(chunk.Chunk, unknownWords)

		target, err := a.tts.Synthesize(ctx, chunk.Chunk, languageCode, emphasized)
		if err != nil {
			return "", apperr.New(apperr.KindSynthesis, "failed to synthesize story chunk", err, map[string]any{"chunk_index": i})
		}
		combined.Write(target)

		translated, err := a.tts.Synthesize(ctx, chunk.TranslatedChunk, originalLanguageCode, false)
		if err != nil {
			return "", apperr.New(apperr.KindSynthesis, "failed to synthesize translated chunk", err, map[string]any{"chunk_index": i})
		}
		combined.Write(translated)
	}

	// MP3 frames concatenate into a valid stream, no container rewrite needed.
	key := fmt.Sprintf("stories/audio/%s.mp3", uuid.NewString())
	if err := a.bucket.UploadBytes(ctx, key, combined.Bytes()); err != nil {
		return "", apperr.New(apperr.KindStorage, "failed to upload story audio", err, map[string]any{"key": key})
	}

	url := a.bucket.GetPublicURL(key)
	a.log.Info("Story audio assembled", "key", key, "chunks", len(chunks), "bytes", combined.Len())
	return url, nil
}
