package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sailorhq/speaknote/internal/storage"
	"github.com/sailorhq/speaknote/pkg/retry"
)

// RunStatus mirrors the remote run lifecycle.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusExpired        RunStatus = "expired"
)

// InFlight reports whether the run is still worth polling. Every other
// status is final: completed succeeds, the rest never complete.
func (s RunStatus) InFlight() bool {
	return s == RunStatusQueued || s == RunStatusInProgress
}

// Run is one remote processing job over the thread's pending messages.
// Transient: it only lives for the duration of the polling loop.
type Run struct {
	ID          string
	Status      RunStatus
	AssistantID string
	Model       string
}

// Config carries the client credentials and knobs. BaseURL is only
// overridden in tests; FetchPolicy's zero value selects the default
// 3 attempts with a 1-second fixed delay.
type Config struct {
	APIKey      string
	AssistantID string
	BaseURL     string
	FetchPolicy retry.Policy
}

// Client owns the single durable conversation with the remote assistant:
// thread bootstrap, message submission, run execution and reply retrieval.
type Client struct {
	api         *openai.Client
	assistantID string
	threads     storage.ThreadStorage
	fetchPolicy retry.Policy
	logger      *zap.Logger

	mu       sync.Mutex
	threadID string
}

func NewClient(cfg Config, threads storage.ThreadStorage, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrInvalidCredential
	}
	if cfg.AssistantID == "" {
		return nil, fmt.Errorf("%w: assistant id is required", ErrInvalidSession)
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	policy := cfg.FetchPolicy
	if policy.MaxAttempts == 0 {
		policy = retry.Policy{MaxAttempts: 3, Delay: time.Second}
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiConfig),
		assistantID: cfg.AssistantID,
		threads:     threads,
		fetchPolicy: policy,
		logger:      logger,
	}, nil
}

// ensureThread returns the durable thread id, creating and persisting one on
// first use so the same conversation resumes across restarts.
func (c *Client) ensureThread(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.threadID != "" {
		return c.threadID, nil
	}

	threadID, err := c.threads.GetThread()
	if err != nil {
		return "", fmt.Errorf("loading persisted thread: %w", err)
	}
	if threadID != "" {
		c.threadID = threadID
		return threadID, nil
	}

	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", wrapAPIError(err)
	}
	if err := c.threads.SaveThread(thread.ID); err != nil {
		return "", fmt.Errorf("persisting thread id: %w", err)
	}
	c.threadID = thread.ID
	c.logger.Info("Created assistant thread", zap.String("thread_id", thread.ID))
	return thread.ID, nil
}

// Submit appends the utterance as a user message to the session thread.
func (c *Client) Submit(ctx context.Context, utterance string) error {
	threadID, err := c.ensureThread(ctx)
	if err != nil {
		return err
	}

	_, err = c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: utterance,
	})
	if err != nil {
		return wrapAPIError(err)
	}

	if err := c.threads.UpdateThreadLastUsed(); err != nil {
		c.logger.Warn("Failed to update thread last-used time", zap.Error(err))
	}
	return nil
}

// StartRun begins asynchronous processing of the thread's pending messages
// under the configured assistant profile.
func (c *Client) StartRun(ctx context.Context) (Run, error) {
	threadID, err := c.ensureThread(ctx)
	if err != nil {
		return Run{}, err
	}

	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: c.assistantID,
	})
	if err != nil {
		return Run{}, wrapAPIError(err)
	}

	return Run{
		ID:          run.ID,
		Status:      RunStatus(run.Status),
		AssistantID: run.AssistantID,
		Model:       run.Model,
	}, nil
}

// PollRunStatus performs a single status check; the polling loop belongs to
// the caller.
func (c *Client) PollRunStatus(ctx context.Context, runID string) (RunStatus, error) {
	threadID, err := c.ensureThread(ctx)
	if err != nil {
		return "", err
	}

	run, err := c.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return "", wrapAPIError(err)
	}
	return RunStatus(run.Status), nil
}

// FetchLatestReply returns the text of the newest assistant-authored message
// in the thread. The listing endpoint occasionally returns no usable entry
// right after a run completes, so the whole attempt is retried on a fixed
// interval; exhaustion surfaces ErrNoMessage wrapped in *retry.LimitError.
func (c *Client) FetchLatestReply(ctx context.Context) (string, error) {
	threadID, err := c.ensureThread(ctx)
	if err != nil {
		return "", err
	}

	return retry.Do(ctx, c.fetchPolicy, func(ctx context.Context) (string, error) {
		return c.attemptLatestReply(ctx, threadID)
	})
}

func (c *Client) attemptLatestReply(ctx context.Context, threadID string) (string, error) {
	limit := 1
	order := "desc"
	list, err := c.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return "", wrapAPIError(err)
	}

	for _, msg := range list.Messages {
		if msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		for _, content := range msg.Content {
			if content.Text != nil {
				return content.Text.Value, nil
			}
		}
	}
	return "", ErrNoMessage
}

// wrapAPIError maps SDK failures onto the client taxonomy: non-2xx responses
// become *NetworkError, body-shape mismatches become ErrDecoding.
func wrapAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &NetworkError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &NetworkError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return err
}
