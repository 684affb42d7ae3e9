// Package ingest provides document chunking and ingestion into the chunk
// store and vector store.
package ingest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hyperjump/atsume/internal/models"
)

// Chunker splits text into overlapping chunks on sentence boundaries,
// tracking offsets into the source document and the enclosing markdown
// section title.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 8
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// segment is a sentence-sized span of the source text.
type segment struct {
	start   int
	end     int
	section string
}

// Chunk splits text into chunks with overlapping sentence windows. Offsets
// index into the original text.
func (c *Chunker) Chunk(docID, text string) []*models.Chunk {
	segs := splitSegments(text)
	if len(segs) == 0 {
		return nil
	}
	var chunks []*models.Chunk
	chunkIndex := 0
	i := 0
	for i < len(segs) {
		j := i
		end := segs[i].end
		for j < len(segs) && segs[j].end-segs[i].start <= c.chunkSize {
			end = segs[j].end
			j++
		}
		if j == i {
			// A single segment larger than the chunk size is kept whole.
			end = segs[i].end
			j = i + 1
		}
		content := strings.TrimSpace(text[segs[i].start:end])
		if content != "" {
			chunks = append(chunks, &models.Chunk{
				ID:           fmt.Sprintf("%s_%s", docID, uuid.New().String()[:8]),
				DocumentID:   docID,
				Content:      content,
				StartIndex:   segs[i].start,
				EndIndex:     end,
				ChunkIndex:   chunkIndex,
				SectionTitle: segs[i].section,
			})
			chunkIndex++
		}
		if j >= len(segs) {
			break
		}
		// Back up past the boundary until roughly chunkOverlap characters
		// repeat at the start of the next chunk.
		k := j
		for k > i+1 && end-segs[k-1].start <= c.chunkOverlap {
			k--
		}
		i = k
	}
	return chunks
}

// splitSegments scans text into sentence segments with offsets. Markdown
// headings set the section title for following segments and are excluded
// from chunk content.
func splitSegments(text string) []segment {
	var segs []segment
	section := ""
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		lineStart := offset
		offset += len(line)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			section = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			continue
		}
		segs = append(segs, lineSegments(line, lineStart, section)...)
	}
	return segs
}

// lineSegments splits a single line into sentence spans.
func lineSegments(line string, lineStart int, section string) []segment {
	var segs []segment
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '.', '!', '?':
			// Sentence ends at punctuation followed by whitespace or EOL.
			if i+1 < len(line) && line[i+1] != ' ' && line[i+1] != '\t' && line[i+1] != '\n' {
				continue
			}
			seg := strings.TrimSpace(line[start : i+1])
			if seg != "" {
				segs = append(segs, segment{start: lineStart + start, end: lineStart + i + 1, section: section})
			}
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(line[start:]); rest != "" {
		segs = append(segs, segment{start: lineStart + start, end: lineStart + len(strings.TrimRight(line, "\n")), section: section})
	}
	return segs
}
