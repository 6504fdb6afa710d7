// Package transcript runs speech recognition with word-level timings (C3)
// over an extracted audio track, using the same Whisper integration the
// teacher's AI-narration pipeline used for its own voiceovers.
package transcript

import (
	"bytes"
	"context"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/models"
)

// Producer transcribes an audio file into an ordered word list.
type Producer struct {
	client *openai.Client
}

func New(apiKey string) *Producer {
	return &Producer{client: openai.NewClient(apiKey)}
}

// Transcribe returns the detected language code and a word-level transcript.
// A silent or empty track is not an error (§4.2, §8): it yields an empty
// word list. An empty file, or a response with no language, gets the
// synthesized "und" language code; otherwise Whisper's detected language is
// returned.
func (p *Producer) Transcribe(ctx context.Context, audioPath, language string) (string, []models.Word, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", nil, apierrors.New(apierrors.TranscriptionErr, "failed to read audio file", err)
	}
	if len(data) == 0 {
		return "und", nil, nil
	}

	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(data),
		FilePath: "audio.wav",
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	}
	if language != "" && language != "auto" {
		req.Language = language
	}

	resp, err := p.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", nil, apierrors.New(apierrors.TranscriptionErr, "whisper transcription failed", err)
	}

	lang := resp.Language
	if lang == "" {
		lang = "und"
	}
	if len(resp.Words) == 0 {
		return lang, nil, nil
	}

	words := make([]models.Word, len(resp.Words))
	for i, w := range resp.Words {
		words[i] = models.Word{
			Word:       strings.TrimSpace(w.Word),
			StartS:     w.Start,
			EndS:       w.End,
			Confidence: 1.0,
		}
	}
	return lang, words, nil
}
