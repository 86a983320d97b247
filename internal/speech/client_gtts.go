package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	googleTTSURL = "https://translate.google.com/translate_tts"
	// больше сотни символов эндпоинт не принимает
	googleTTSMaxChars = 100
)

// GoogleTTS — тот же эндпоинт, что у gTTS: ключ не нужен, язык фиксирован.
type GoogleTTS struct {
	language string
	baseURL  string
	httpCli  *http.Client
}

func NewGoogleTTS(language string) *GoogleTTS {
	return &GoogleTTS{
		language: language,
		baseURL:  googleTTSURL,
		httpCli:  http.DefaultClient,
	}
}

// Synthesize режет текст на куски и склеивает mp3-ответы в один файл.
func (g *GoogleTTS) Synthesize(ctx context.Context, text, outPath string) error {
	chunks := splitText(text, googleTTSMaxChars)
	if len(chunks) == 0 {
		return fmt.Errorf("nothing to speak")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	for i, chunk := range chunks {
		if err := g.fetch(ctx, chunk, i, len(chunks), out); err != nil {
			out.Close()
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return out.Close()
}

func (g *GoogleTTS) fetch(ctx context.Context, chunk string, idx, total int, w io.Writer) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", g.language)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := g.httpCli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("google tts %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	_, err = io.Copy(w, resp.Body)
	return err
}

// splitText: куски не длиннее max рун, по границам слов; слишком длинное слово режется.
func splitText(text string, max int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > max {
			flush()
			r := []rune(word)
			chunks = append(chunks, string(r[:max]))
			word = string(r[max:])
		}

		n := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+n > max {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	flush()

	return chunks
}
