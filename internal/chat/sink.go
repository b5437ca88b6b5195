// Package chat defines the outbound message surface: the single
// summary message posted after an accept, transient warnings, and
// the modal migration notice.
package chat

//go:generate mockgen -destination=mock/mock_sink.go -package=chatmock github.com/dailyforge/dailies-api/internal/chat Sink

import (
	"context"
	"log/slog"
	"sync"
)

// Sink receives the engine's outbound messages.
type Sink interface {
	// PostMessage posts one formatted chat message for the actor.
	PostMessage(ctx context.Context, actorID string, content string) error

	// Warn shows a transient warning toast.
	Warn(ctx context.Context, message string)

	// Error shows a transient error toast.
	Error(ctx context.Context, message string)

	// Prompt shows a modal prompt with the given content. The call
	// is fire-and-forget; nothing waits on dismissal.
	Prompt(ctx context.Context, title string, content string)
}

// SlogSink logs everything instead of delivering it anywhere. It is
// the default sink when no game client is attached.
type SlogSink struct{}

// NewSlogSink creates a logging sink.
func NewSlogSink() *SlogSink {
	return &SlogSink{}
}

// PostMessage implements Sink.
func (s *SlogSink) PostMessage(ctx context.Context, actorID string, content string) error {
	slog.InfoContext(ctx, "chat message", "actor_id", actorID, "content", content)
	return nil
}

// Warn implements Sink.
func (s *SlogSink) Warn(ctx context.Context, message string) {
	slog.WarnContext(ctx, "user warning", "message", message)
}

// Error implements Sink.
func (s *SlogSink) Error(ctx context.Context, message string) {
	slog.ErrorContext(ctx, "user error", "message", message)
}

// Prompt implements Sink.
func (s *SlogSink) Prompt(ctx context.Context, title string, content string) {
	slog.InfoContext(ctx, "user prompt", "title", title, "content", content)
}

// Recording is a Sink that captures everything it receives, for
// tests.
type Recording struct {
	mu       sync.Mutex
	Messages []RecordedMessage
	Warnings []string
	Errors   []string
	Prompts  []RecordedPrompt
}

// RecordedMessage is one captured chat message.
type RecordedMessage struct {
	ActorID string
	Content string
}

// RecordedPrompt is one captured modal prompt.
type RecordedPrompt struct {
	Title   string
	Content string
}

// NewRecording creates a recording sink.
func NewRecording() *Recording {
	return &Recording{}
}

// PostMessage implements Sink.
func (r *Recording) PostMessage(_ context.Context, actorID string, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, RecordedMessage{ActorID: actorID, Content: content})
	return nil
}

// Warn implements Sink.
func (r *Recording) Warn(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, message)
}

// Error implements Sink.
func (r *Recording) Error(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, message)
}

// Prompt implements Sink.
func (r *Recording) Prompt(_ context.Context, title string, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, RecordedPrompt{Title: title, Content: content})
}
