package v1

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/policydesk/policydesk/store"
)

// maxAgentRounds caps the number of tool-use iterations per request.
const maxAgentRounds = 6

// Message roles on the oracle transcript.
const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
	roleTool      = "tool"
)

// ToolCall is one tool invocation requested by the model. Arguments is the
// raw JSON argument object.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Decision is the oracle's verdict for one deciding step: either a final
// answer (no tool calls) or one or more tool calls to execute.
type Decision struct {
	Answer    string
	ToolCalls []ToolCall
}

// Message is one entry on the transcript handed to the oracle. Assistant
// messages may carry tool calls; tool messages carry the result for one call.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// Oracle is the model behind the orchestrator: given the transcript and the
// available tools it decides whether to answer or to call tools. Everything
// after this boundary is deterministic.
type Oracle interface {
	Decide(ctx context.Context, transcript []Message, tools []ToolDefinition) (*Decision, error)
}

// Agent runs the per-turn orchestration loop: decide, execute tools, feed
// results back, repeat until the oracle produces a final answer.
type Agent struct {
	oracle Oracle
	tools  *ToolSet
}

// NewAgent creates an agent over the given oracle and tool set.
func NewAgent(oracle Oracle, tools *ToolSet) *Agent {
	return &Agent{oracle: oracle, tools: tools}
}

// Run answers one user turn. turns is the full session history including the
// just-appended user message. Tool execution is sequential; a decision with
// several tool calls executes them in order before the next deciding step.
func (a *Agent) Run(ctx context.Context, turns []store.ChatTurn) (string, error) {
	defs := a.tools.Definitions()

	transcript := make([]Message, 0, len(turns)+1)
	transcript = append(transcript, Message{Role: roleSystem, Content: buildSystemPrompt(time.Now())})
	for _, t := range turns {
		transcript = append(transcript, Message{Role: t.Role, Content: t.Content})
	}

	slog.Info("[AGENT INIT]", "tools", len(defs), "history", len(turns))

	for round := 0; round < maxAgentRounds; round++ {
		decision, err := a.oracle.Decide(ctx, transcript, defs)
		if err != nil {
			return "", errors.Wrap(err, "agent decide")
		}

		if len(decision.ToolCalls) == 0 {
			slog.Info("[AGENT FINISH]", "round", round, "answer", decision.Answer)
			return decision.Answer, nil
		}

		transcript = append(transcript, Message{
			Role:      roleAssistant,
			Content:   decision.Answer,
			ToolCalls: decision.ToolCalls,
		})

		// Some models repeat the same tool_call_id in one response.
		seenCallIDs := make(map[string]bool)
		for _, tc := range decision.ToolCalls {
			if tc.ID != "" && seenCallIDs[tc.ID] {
				continue
			}
			seenCallIDs[tc.ID] = true

			result := a.tools.Dispatch(ctx, tc.Name, tc.Arguments)
			transcript = append(transcript, Message{
				Role:       roleTool,
				Content:    result,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
			})
		}
	}

	return "", errors.Errorf("no final answer after %d tool rounds", maxAgentRounds)
}

// buildSystemPrompt states the behavioral contract the orchestrator depends
// on: policy answers must come from retrieval, and submissions must never be
// confirmed unless the tool reported success.
func buildSystemPrompt(now time.Time) string {
	return fmt.Sprintf(
		`You are the company's expense-policy assistant.
Today's local date: %s.

You have three tools: policy_search, submit_claim and get_user_claims.
CRITICAL INSTRUCTIONS:
1. For ANY question about the expense policy (limits, allowances, rules), YOU MUST call policy_search and answer only from its results. Never answer policy questions from your own memory.
2. To submit an expense claim you need the user's email, a description and a positive amount. When the user has provided all three — even in a single message — YOU MUST call submit_claim rather than merely acknowledging.
3. NEVER tell the user a claim was submitted unless submit_claim returned a success confirmation. If it returned an error, relay that the submission failed.
4. Use get_user_claims to look up previously submitted claims. If it reports no claims, tell the user exactly that.
5. If a tool returns an error, explain it plainly. Do not invent policy text or claim records.`,
		now.Format("2006-01-02 15:04:05"),
	)
}
