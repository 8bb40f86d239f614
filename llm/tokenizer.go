package llm

import (
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens for context-window budgeting.
type Tokenizer interface {
	CountTokens(text string) int
}

// EstimateTokenizer approximates token counts from character classes:
// roughly 4 ASCII characters or 1.5 CJK characters per token.
type EstimateTokenizer struct{}

// NewEstimateTokenizer creates an EstimateTokenizer.
func NewEstimateTokenizer() *EstimateTokenizer {
	return &EstimateTokenizer{}
}

// CountTokens counts tokens in text.
func (t *EstimateTokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	var cjk, other int
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FA5 {
			cjk++
		} else {
			other++
		}
	}
	tokens := float64(cjk)/1.5 + float64(other)/4.0
	if tokens < 1 {
		return 1
	}
	return int(tokens)
}

// BPETokenizer counts tokens with a tiktoken encoding.
type BPETokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewBPETokenizer loads the named tiktoken encoding (e.g. "cl100k_base").
func NewBPETokenizer(encoding string) (*BPETokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &BPETokenizer{enc: enc}, nil
}

// CountTokens counts tokens in text.
func (t *BPETokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// NewTokenizer returns the best available tokenizer: the cl100k_base BPE
// encoding when its vocabulary can be loaded, otherwise the character
// estimator. Never fails.
func NewTokenizer() Tokenizer {
	if bpe, err := NewBPETokenizer("cl100k_base"); err == nil {
		return bpe
	}
	return NewEstimateTokenizer()
}
