package entity

// ChunkMetadata describes where a chunk came from.
// ChunkID is a dense 0-based sequence number within one indexing generation.
type ChunkMetadata struct {
	ChunkID int               `json:"chunk_id"`
	Source  string            `json:"source"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// Chunk is a sentence-aligned span of document text
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// RetrievalMatch is a single similarity search hit.
// SimilarityScore is the squared L2 distance: lower means closer.
type RetrievalMatch struct {
	Content         string  `json:"content"`
	SimilarityScore float32 `json:"similarity_score"`
}
