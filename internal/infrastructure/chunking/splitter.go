package chunking

import (
	"regexp"
	"strings"
)

var (
	articleRe  = regexp.MustCompile(`(?mi)^\s*art[íi]culo\s+\d+`)
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+[\s"')\]]*|[^.!?]+$`)
)

// Splitter builds retrieval chunks from cleaned document text. Normative
// texts split on article headings so a chunk never mixes two articles; prose
// packs whole sentences up to ChunkSize runes with a sentence-aligned
// overlap.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if articles := s.splitByArticles(text); articles != nil {
		return articles
	}
	return s.splitBySentences(text)
}

// splitByArticles returns nil unless the text has at least two article
// headings. Articles longer than ChunkSize fall back to sentence packing.
func (s *Splitter) splitByArticles(text string) []string {
	bounds := articleRe.FindAllStringIndex(text, -1)
	if len(bounds) < 2 {
		return nil
	}

	out := make([]string, 0, len(bounds)+1)
	if preamble := strings.TrimSpace(text[:bounds[0][0]]); preamble != "" {
		out = append(out, s.splitBySentences(preamble)...)
	}
	for i, bound := range bounds {
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		article := strings.TrimSpace(text[bound[0]:end])
		if article == "" {
			continue
		}
		if len([]rune(article)) > s.ChunkSize {
			out = append(out, s.splitBySentences(article)...)
			continue
		}
		out = append(out, article)
	}
	return out
}

func (s *Splitter) splitBySentences(text string) []string {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return []string{text}
	}

	var out []string
	var current []string
	currentLen := 0
	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(current, " "))
		if chunk != "" {
			out = append(out, chunk)
		}
		current = overlapTail(current, s.Overlap)
		currentLen = 0
		for _, sent := range current {
			currentLen += len([]rune(sent))
		}
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		length := len([]rune(sentence))
		if currentLen > 0 && currentLen+length > s.ChunkSize {
			flush()
		}
		current = append(current, sentence)
		currentLen += length
	}
	if len(current) > 0 {
		chunk := strings.TrimSpace(strings.Join(current, " "))
		if chunk != "" && (len(out) == 0 || !strings.HasSuffix(out[len(out)-1], chunk)) {
			out = append(out, chunk)
		}
	}
	return out
}

// overlapTail keeps the trailing sentences whose combined length fits the
// overlap budget, seeding the next chunk.
func overlapTail(sentences []string, overlap int) []string {
	if overlap <= 0 || len(sentences) == 0 {
		return nil
	}
	total := 0
	start := len(sentences)
	for i := len(sentences) - 1; i >= 0; i-- {
		length := len([]rune(sentences[i]))
		if total+length > overlap {
			break
		}
		total += length
		start = i
	}
	if start == len(sentences) {
		return nil
	}
	return append([]string(nil), sentences[start:]...)
}
