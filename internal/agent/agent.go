// Package agent runs a conversational food-logging assistant on the
// Anthropic Messages API with tool use.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"nutrilog/internal/config"
	"nutrilog/internal/domain"
)

var (
	// ErrConversationNotFound is returned for an unknown or expired
	// conversation id.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrTurnLimit is returned when the model keeps calling tools past the
	// configured number of turns.
	ErrTurnLimit = errors.New("agent exceeded tool turn limit")
)

// MessageClient is the Messages API surface the agent needs. It is
// satisfied by *anthropic.MessageService.
type MessageClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// NewMessageClient builds an API client from configuration.
func NewMessageClient(cfg config.AgentConfig) MessageClient {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &client.Messages
}

// ToolCall records one tool invocation made while answering.
type ToolCall struct {
	Name    string `json:"name"`
	Input   string `json:"input"`
	IsError bool   `json:"isError"`
}

// Reply is the outcome of one chat turn.
type Reply struct {
	ConversationID string     `json:"conversationId"`
	Text           string     `json:"text"`
	ToolCalls      []ToolCall `json:"toolCalls"`
}

// Agent answers user messages, calling tools until the model stops.
type Agent struct {
	client        MessageClient
	tools         *Tools
	conversations *ConversationStore
	model         string
	maxTokens     int64
	maxTurns      int
	log           *slog.Logger
	now           func() time.Time
}

// New creates an Agent.
func New(client MessageClient, tools *Tools, conversations *ConversationStore, cfg config.AgentConfig, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if conversations == nil {
		conversations = NewConversationStore(0)
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 6
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Agent{
		client:        client,
		tools:         tools,
		conversations: conversations,
		model:         cfg.Model,
		maxTokens:     maxTokens,
		maxTurns:      maxTurns,
		log:           logger,
		now:           time.Now,
	}
}

// Chat sends message in the conversation conversationID, or starts a new one
// when it is empty.
func (a *Agent) Chat(ctx context.Context, user *domain.User, conversationID, message string) (*Reply, error) {
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.NewValidationError("message", "is required")
	}

	var history []anthropic.MessageParam
	if conversationID == "" {
		conversationID = uuid.NewString()
	} else {
		var ok bool
		history, ok = a.conversations.Get(conversationID, user.ID)
		if !ok {
			return nil, ErrConversationNotFound
		}
	}

	messages := append(history, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))
	reply := &Reply{ConversationID: conversationID, ToolCalls: []ToolCall{}}

	for turn := 0; turn < a.maxTurns; turn++ {
		resp, err := a.client.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: a.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: a.systemPrompt()}},
			Messages:  messages,
			Tools:     a.tools.Params(),
		})
		if err != nil {
			return nil, fmt.Errorf("messages api: %w: %v", domain.ErrUpstream, err)
		}
		if resp.StopReason != anthropic.StopReasonToolUse || !hasToolUse(resp) {
			// Tool calls in a reply that did not stop for them are never run;
			// they are dropped from the history so it stays replayable.
			messages = append(messages, textOnly(resp.ToParam()))
			reply.Text = strings.TrimSpace(replyText(resp))
			a.conversations.Save(conversationID, user.ID, messages)
			a.log.DebugContext(ctx, "agent turn complete",
				"conversation_id", conversationID, "user_id", user.ID, "turns", turn+1,
				"tool_calls", len(reply.ToolCalls), "stop_reason", string(resp.StopReason))
			return reply, nil
		}
		messages = append(messages, resp.ToParam())

		var results []anthropic.ContentBlockParamUnion
		for _, block := range resp.Content {
			b, ok := block.AsAny().(anthropic.ToolUseBlock)
			if !ok {
				continue
			}
			out, callErr := a.tools.Call(ctx, user, b.Name, b.Input)
			call := ToolCall{Name: b.Name, Input: string(b.Input)}
			if callErr != nil {
				a.log.WarnContext(ctx, "agent tool failed", "tool", b.Name, "user_id", user.ID, "error", callErr)
				out, call.IsError = callErr.Error(), true
			}
			reply.ToolCalls = append(reply.ToolCalls, call)
			results = append(results, anthropic.NewToolResultBlock(b.ID, out, call.IsError))
		}
		messages = append(messages, anthropic.NewUserMessage(results...))
	}

	return nil, fmt.Errorf("%w (%d)", ErrTurnLimit, a.maxTurns)
}

func hasToolUse(resp *anthropic.Message) bool {
	for _, block := range resp.Content {
		if _, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			return true
		}
	}
	return false
}

func replyText(resp *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// textOnly strips tool_use blocks from an assistant message.
func textOnly(msg anthropic.MessageParam) anthropic.MessageParam {
	kept := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
	for _, c := range msg.Content {
		if c.OfToolUse == nil {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, anthropic.NewTextBlock("(no reply)"))
	}
	msg.Content = kept
	return msg
}

func (a *Agent) systemPrompt() string {
	today := a.now().In(time.Local).Format(domain.DateLayout)
	return "You are a nutrition logging assistant. Today is " + today + ". " +
		"Use search_food to find foods and log_food to record what the user ate. " +
		"Prefer database foods; only log explicit calories when nothing matches. " +
		"Use get_daily_summary and get_goals to answer questions about progress. " +
		"Keep answers short and state the calories you logged."
}
