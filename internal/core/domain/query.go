package domain

import (
	"fmt"
	"time"
)

// Canned responses used by the query pipeline.
const (
	// NotReadyAnswer is returned when no index has been built yet.
	NotReadyAnswer = "Vector store not initialized. Please upload and process documents first."

	// NoSourcesFound is the attribution used when no chunks were retrieved.
	NoSourcesFound = "No sources found"

	// UnknownSource stands in for a retrieved chunk with no filename.
	UnknownSource = "Unknown Source"

	// SourcesUnavailable is the attribution logged for failed queries.
	SourcesUnavailable = "N/A"

	// ErrorMarkerPrefix prefixes the response text logged for failed queries.
	ErrorMarkerPrefix = "Error: "
)

// Answer is the outcome of a successful query.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"answer"`

	// Sources is the comma separated, sorted list of cited filenames,
	// or NoSourcesFound.
	Sources string `json:"sources"`

	// Context is the retrieved chunk text the answer was conditioned on.
	Context string `json:"-"`

	// Hits are the retrieved chunks in rank order.
	Hits []SearchHit `json:"-"`

	// Ready is false when the index did not exist or was empty.
	Ready bool `json:"ready"`
}

// QueryLog is the immutable audit record of one query attempt.
type QueryLog struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	QueryText        string    `json:"query_text"`
	ResponseText     string    `json:"response_text"`
	RetrievedContext string    `json:"retrieved_context,omitempty"`
	SourceReferences string    `json:"source_references"`
	Timestamp        time.Time `json:"timestamp"`
}

// Rating bounds for query feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a user's rating of one logged answer.
type Feedback struct {
	ID        int64     `json:"id"`
	QueryID   int64     `json:"query_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks the rating is in range and a query is referenced.
func (f *Feedback) Validate() error {
	if f.QueryID <= 0 {
		return fmt.Errorf("%w: feedback needs a query id", ErrInvalidInput)
	}
	if f.Rating < MinRating || f.Rating > MaxRating {
		return fmt.Errorf("%w: rating %d outside %d-%d", ErrInvalidInput, f.Rating, MinRating, MaxRating)
	}
	return nil
}
