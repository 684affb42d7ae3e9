package ingest

import (
	"strings"
	"testing"
)

func TestChunkerShortText(t *testing.T) {
	chunker := NewChunker(800, 100)
	chunks := chunker.Chunk("doc-1", "A single short sentence.")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	chunk := chunks[0]
	if chunk.Content != "A single short sentence." {
		t.Errorf("Content = %q", chunk.Content)
	}
	if chunk.DocumentID != "doc-1" || chunk.ChunkIndex != 0 {
		t.Errorf("chunk identity wrong: %+v", chunk)
	}
	if chunk.StartIndex != 0 || chunk.EndIndex != 24 {
		t.Errorf("offsets = [%d, %d), want [0, 24)", chunk.StartIndex, chunk.EndIndex)
	}
}

func TestChunkerEmptyText(t *testing.T) {
	chunker := NewChunker(800, 100)
	if chunks := chunker.Chunk("doc-1", "   \n\n  "); chunks != nil {
		t.Errorf("whitespace-only text should produce no chunks, got %d", len(chunks))
	}
}

func TestChunkerSplitsOnSize(t *testing.T) {
	text := "# Setup\nInstall the binary. Configure the service. Run it.\n\n# Usage\nStart searching."
	chunker := NewChunker(40, 5)
	chunks := chunker.Chunk("doc-1", text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0].Content != "Install the binary." {
		t.Errorf("chunk 0 = %q", chunks[0].Content)
	}
	if chunks[1].Content != "Configure the service. Run it." {
		t.Errorf("chunk 1 = %q", chunks[1].Content)
	}
	if chunks[2].Content != "Start searching." {
		t.Errorf("chunk 2 = %q", chunks[2].Content)
	}
	for i, chunk := range chunks {
		if chunk.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, chunk.ChunkIndex)
		}
		if got := text[chunk.StartIndex:chunk.EndIndex]; strings.TrimSpace(got) != chunk.Content {
			t.Errorf("offsets do not recover content: %q vs %q", got, chunk.Content)
		}
	}
}

func TestChunkerSectionTitles(t *testing.T) {
	text := "# Setup\nInstall the binary.\n\n## Advanced Usage\nTune the pool size."
	chunker := NewChunker(25, 0)
	chunks := chunker.Chunk("doc-1", text)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].SectionTitle != "Setup" {
		t.Errorf("chunk 0 section = %q, want Setup", chunks[0].SectionTitle)
	}
	if chunks[1].SectionTitle != "Advanced Usage" {
		t.Errorf("chunk 1 section = %q, want Advanced Usage", chunks[1].SectionTitle)
	}
	for _, chunk := range chunks {
		if strings.Contains(chunk.Content, "#") {
			t.Errorf("heading leaked into content: %q", chunk.Content)
		}
	}
}

func TestChunkerOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("This sentence fills the chunk with some words. ")
	}
	chunker := NewChunker(100, 50)
	chunks := chunker.Chunk("doc-1", b.String())
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartIndex >= chunks[i-1].EndIndex {
			t.Errorf("chunks %d and %d do not overlap", i-1, i)
		}
		if chunks[i].StartIndex <= chunks[i-1].StartIndex {
			t.Errorf("chunk %d does not advance", i)
		}
	}
}

func TestChunkerOversizedSentenceKeptWhole(t *testing.T) {
	long := strings.Repeat("word ", 50) + "end."
	chunker := NewChunker(40, 5)
	chunks := chunker.Chunk("doc-1", long)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if len(chunks[0].Content) <= 40 {
		t.Errorf("oversized sentence should be kept whole, got %d chars", len(chunks[0].Content))
	}
}
