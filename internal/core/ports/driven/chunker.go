package driven

// Chunker splits text into an ordered sequence of overlapping spans.
// The same input must always produce the same chunks.
type Chunker interface {
	// Split returns the chunks of text. Empty text yields no chunks.
	Split(text string) []string

	// Size returns the maximum chunk length in characters.
	Size() int

	// Overlap returns how many characters consecutive chunks share.
	Overlap() int
}
