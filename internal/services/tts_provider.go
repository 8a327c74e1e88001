package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/storylingo/backend/internal/languages"
	"github.com/storylingo/backend/internal/logger"
)

type TTSProviderService interface {
	// Synthesize returns MP3 audio for text in the given language.
	// emphasized slows the speaking rate for chunks the listener should
	// pay extra attention to.
	Synthesize(ctx context.Context, text string, language languages.Code, emphasized bool) ([]byte, error)
	Close() error
}

type ttsProviderService struct {
	log    *logger.Logger
	client *texttospeech.Client

	maxRetries int
}

const (
	normalSpeakingRate     = 1.0
	emphasizedSpeakingRate = 0.75
)

func NewTTSProviderService(log *logger.Logger) (TTSProviderService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "TTSProviderService")

	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	ctx := context.Background()

	var c *texttospeech.Client
	var err error
	if creds != "" {
		c, err = texttospeech.NewClient(ctx, option.WithCredentialsFile(creds))
	} else {
		c, err = texttospeech.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("texttospeech client: %w", err)
	}

	return &ttsProviderService{
		log:        slog,
		client:     c,
		maxRetries: 4,
	}, nil
}

func (s *ttsProviderService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *ttsProviderService) Synthesize(ctx context.Context, text string, language languages.Code, emphasized bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if !languages.IsSupported(language) {
		return nil, fmt.Errorf("unsupported language code %q", language)
	}

	rate := normalSpeakingRate
	if emphasized {
		rate = emphasizedSpeakingRate
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: language.VoiceTag(),
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  rate,
		},
	}

	resp, err := s.retrySynthesize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("texttospeech synthesize: %w", err)
	}
	return resp.AudioContent, nil
}

func (s *ttsProviderService) retrySynthesize(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := s.client.SynthesizeSpeech(ctx, req)
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}
