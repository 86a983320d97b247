package speech

import (
	"fmt"
	"regexp"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// служебные токены вида <|en|>, <|notimestamps|>, <|0.00|>
var controlToken = regexp.MustCompile(`<\|[^|<>]*\|>`)

func stripControlTokens(s string) string {
	s = controlToken.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func capTokens(tok Tokenizer, text string, limit int) string {
	if text == "" || limit <= 0 {
		return text
	}
	ids := tok.Encode(text)
	if len(ids) <= limit {
		return text
	}
	// обрезка по токену может разрезать многобайтовый символ
	return strings.TrimSpace(strings.ToValidUTF8(tok.Decode(ids[:limit]), ""))
}

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer: при первом вызове тянет BPE-словарь (сеть или TIKTOKEN_CACHE_DIR).
func NewTiktokenTokenizer(encoding string) (Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer %q: %w", encoding, err)
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
