package types

// TranslationChunk pairs one story chunk with its translation. Chunks only
// live between story assembly and audio assembly; they are never persisted.
type TranslationChunk struct {
	Chunk           string `json:"chunk"`
	TranslatedChunk string `json:"translated_chunk"`
}
