package storage

import "time"

// Route tells how a reply was produced.
type Route string

const (
	RouteLiteral   Route = "literal"   // command table literal
	RoutePrompt    Route = "prompt"    // command table prompt sent to the model
	RouteGenerated Route = "generated" // free text sent to the model
)

// Event is an audit record of one interaction. Events are written for
// reporting only and are never loaded back into the conversation history.
type Event struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	UserID            int64     `json:"user_id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Route             Route     `json:"route"`
}

// Recorder abstracts persistence of interaction events.
// LoadInteractions returns events in the order they were appended.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
