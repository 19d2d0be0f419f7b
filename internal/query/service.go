package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sailorhq/speaknote/internal/assistant"
	"github.com/sailorhq/speaknote/internal/executor"
	"github.com/sailorhq/speaknote/internal/models"
	"github.com/sailorhq/speaknote/internal/storage"
)

// ErrNoTranscribedText rejects an empty utterance before any network call.
var ErrNoTranscribedText = errors.New("query: no transcribed text")

// AssistantClient is the remote conversation surface the service drives.
type AssistantClient interface {
	Submit(ctx context.Context, utterance string) error
	StartRun(ctx context.Context) (assistant.Run, error)
	PollRunStatus(ctx context.Context, runID string) (assistant.RunStatus, error)
	FetchLatestReply(ctx context.Context) (string, error)
}

// Executor runs one validated statement against the local store.
type Executor interface {
	Execute(ctx context.Context, query string) (executor.Result, error)
}

// Service is the per-utterance pipeline: submit, run, poll, fetch, parse,
// execute, narrate. One invocation at a time per conversation session; the
// remote protocol supports only one active run per thread.
type Service struct {
	assistant    AssistantClient
	exec         Executor
	messages     storage.MessageStorage
	pollInterval time.Duration
	logger       *zap.Logger
}

func NewService(client AssistantClient, exec Executor, messages storage.MessageStorage, pollInterval time.Duration, logger *zap.Logger) *Service {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Service{
		assistant:    client,
		exec:         exec,
		messages:     messages,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Process runs the pipeline and returns the narration, or the raw pipeline
// error. Callers that face the user should go through PerformQuery instead.
func (s *Service) Process(ctx context.Context, utterance string) (string, error) {
	if strings.TrimSpace(utterance) == "" {
		return "", ErrNoTranscribedText
	}

	s.recordMessage(models.RoleUser, utterance)

	if err := s.assistant.Submit(ctx, utterance); err != nil {
		return "", err
	}

	run, err := s.assistant.StartRun(ctx)
	if err != nil {
		return "", err
	}

	if err := s.awaitRun(ctx, run); err != nil {
		return "", err
	}

	raw, err := s.assistant.FetchLatestReply(ctx)
	if err != nil {
		return "", err
	}

	reply, err := assistant.ParseReply(raw)
	if err != nil {
		return "", err
	}

	result, err := s.exec.Execute(ctx, reply.Query)
	if err != nil {
		return "", err
	}

	narration := narrate(result, reply)
	s.recordMessage(models.RoleAssistant, narration)
	return narration, nil
}

// awaitRun polls until the run completes. Any status outside
// queued/in_progress/completed never resolves and fails immediately without
// another poll.
func (s *Service) awaitRun(ctx context.Context, run assistant.Run) error {
	status := run.Status
	for {
		if status == assistant.RunStatusCompleted {
			return nil
		}
		if !status.InFlight() {
			return &assistant.ServiceError{Status: status}
		}

		timer := time.NewTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		var err error
		status, err = s.assistant.PollRunStatus(ctx, run.ID)
		if err != nil {
			return err
		}
	}
}

// narrate composes the user-facing string: select results speak for
// themselves, mutations have no meaningful row payload so the assistant's
// description is used instead.
func narrate(result executor.Result, reply *assistant.Reply) string {
	if result.Type == executor.StatementSelect {
		if strings.TrimSpace(result.Rows) == "" {
			return "No results found"
		}
		return result.Rows
	}
	return reply.Description
}

// PerformQuery is the narration boundary: every terminal failure is converted
// into a short categorized message for display and speech, never a raw error.
func (s *Service) PerformQuery(ctx context.Context, utterance string) string {
	narration, err := s.Process(ctx, utterance)
	if err == nil {
		return narration
	}

	s.logger.Error("Query pipeline failed",
		zap.Error(err),
		zap.String("utterance", utterance))

	var message string
	switch {
	case assistant.IsClientError(err):
		message = fmt.Sprintf("Assistant Error: %v", err)
	case executor.IsQueryError(err) || errors.Is(err, ErrNoTranscribedText):
		message = fmt.Sprintf("Query Error: %v", err)
	default:
		message = fmt.Sprintf("An unexpected error occurred: %v", err)
	}

	s.recordMessage(models.RoleAssistant, message)
	return message
}

func (s *Service) recordMessage(role, content string) {
	msg := &models.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messages.SaveMessage(msg); err != nil {
		s.logger.Warn("Failed to save transcript message",
			zap.Error(err),
			zap.String("role", role))
	}
}
