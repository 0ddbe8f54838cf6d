package chunks

// Chunk is the minimal unit of source text fed to one script generation
// call. Chunks are immutable once produced and ordered; Index matches the
// chunk's position in the sequence.
type Chunk struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	SourceID     string `json:"source_id"`
	SectionTitle string `json:"section_title,omitempty"`
}
