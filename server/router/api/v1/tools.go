package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"

	"github.com/policydesk/policydesk/plugin/vectorstore"
	"github.com/policydesk/policydesk/store"
)

// Wire-level tool names. The orchestrator matches these explicitly; the set
// is closed.
const (
	toolPolicySearch  = "policy_search"
	toolSubmitClaim   = "submit_claim"
	toolGetUserClaims = "get_user_claims"
)

// policySearchTopK is how many policy chunks a search returns as context.
const policySearchTopK = 4

// ToolDefinition is the schema sent to the model for one tool. Parameters is
// a JSON Schema object, also used to validate arguments before dispatch.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolSet binds the three tools to their backing services.
type ToolSet struct {
	vector *vectorstore.Store
	claims *store.Store
}

// NewToolSet creates the tool set backed by the given stores.
func NewToolSet(vector *vectorstore.Store, claims *store.Store) *ToolSet {
	return &ToolSet{vector: vector, claims: claims}
}

// Definitions returns the schemas for every tool, in a fixed order.
func (t *ToolSet) Definitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        toolPolicySearch,
			Description: "Search the company expense policy document for relevant sections. ALWAYS use this for any question about policy rules, limits or allowances.",
			Parameters: objectSchema(map[string]any{
				"query": map[string]any{"type": "string", "description": "The policy question to search for"},
			}, []string{"query"}),
		},
		{
			Name:        toolSubmitClaim,
			Description: "Submit a new expense claim on behalf of the user. Only call this once the user has provided their email, a description and a positive amount.",
			Parameters: objectSchema(map[string]any{
				"email":       map[string]any{"type": "string", "description": "The claimant's email address"},
				"description": map[string]any{"type": "string", "description": "What the expense was for"},
				"amount":      map[string]any{"type": []string{"number", "string"}, "description": "The claimed amount, e.g. 42.50"},
			}, []string{"email", "description", "amount"}),
		},
		{
			Name:        toolGetUserClaims,
			Description: "List the expense claims previously submitted under an email address.",
			Parameters: objectSchema(map[string]any{
				"email": map[string]any{"type": "string", "description": "The claimant's email address"},
			}, []string{"email"}),
		},
	}
}

// Dispatch validates and executes one tool call, returning a user-facing
// result string. Validation failures and service errors come back as result
// strings, never as raised errors, so one failing tool does not abort the
// conversation.
func (t *ToolSet) Dispatch(ctx context.Context, name, rawArgs string) string {
	slog.Info("[AGENT TOOL CALL]", "tool", name, "input", rawArgs)

	def, ok := t.definition(name)
	if !ok {
		return "Unknown tool: " + name
	}
	if err := validateArgs(def, rawArgs); err != nil {
		return "Error: invalid arguments for " + name + ": " + err.Error()
	}

	var result string
	switch name {
	case toolPolicySearch:
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "Error: failed to parse input JSON."
		}
		result = t.policySearch(ctx, args.Query)
	case toolSubmitClaim:
		var args struct {
			Email       string          `json:"email"`
			Description string          `json:"description"`
			Amount      json.RawMessage `json:"amount"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "Error: failed to parse input JSON."
		}
		result = t.submitClaim(ctx, args.Email, args.Description, string(args.Amount))
	case toolGetUserClaims:
		var args struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return "Error: failed to parse input JSON."
		}
		result = t.getUserClaims(ctx, args.Email)
	}

	slog.Info("[AGENT TOOL RESULT]", "tool", name, "result", result)
	return result
}

func (t *ToolSet) definition(name string) (ToolDefinition, bool) {
	for _, def := range t.Definitions() {
		if def.Name == name {
			return def, true
		}
	}
	return ToolDefinition{}, false
}

// policySearch retrieves the top policy chunks for the query and returns
// their concatenated text as retrieval context. No side effects.
func (t *ToolSet) policySearch(ctx context.Context, query string) string {
	results, err := t.vector.SearchSimilar(ctx, query, policySearchTopK)
	if err != nil {
		return "Error: policy search is unavailable: " + err.Error()
	}
	if len(results) == 0 {
		return "No relevant policy sections found."
	}
	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("[%d] (score %.2f)\n%s\n\n", i+1, r.Score, r.Content))
	}
	return sb.String()
}

// submitClaim validates the claim fields and inserts exactly one row with
// status Submitted. The returned string confirms success only when the
// insert succeeded.
func (t *ToolSet) submitClaim(ctx context.Context, email, description, rawAmount string) string {
	if !validEmail(email) {
		return fmt.Sprintf("Error: %q is not a valid email address. No claim was submitted.", email)
	}
	if strings.TrimSpace(description) == "" {
		return "Error: a claim description is required. No claim was submitted."
	}
	amount, err := decimal.NewFromString(strings.Trim(strings.TrimSpace(rawAmount), `"`))
	if err != nil || !amount.IsPositive() {
		return "Error: the amount must be a positive number. No claim was submitted."
	}

	claim, err := t.claims.CreateClaim(ctx, &store.ExpenseClaim{
		ID:          shortuuid.New(),
		Email:       email,
		Description: description,
		Amount:      amount,
		Status:      store.ClaimStatusSubmitted,
	})
	if err != nil {
		return "Error: the claim could not be saved. No claim was submitted. Please try again later."
	}
	return fmt.Sprintf("Claim %s submitted successfully for %s: %s, %s. Status: %s.",
		claim.ID, claim.Email, claim.Description, claim.Amount.StringFixed(2), claim.Status)
}

// getUserClaims lists claims for an email address. The empty result is a
// normal outcome, not an error.
func (t *ToolSet) getUserClaims(ctx context.Context, email string) string {
	if !validEmail(email) {
		return fmt.Sprintf("Error: %q is not a valid email address.", email)
	}
	claims, err := t.claims.ListClaims(ctx, &store.FindClaim{Email: &email})
	if err != nil {
		return "Error: the claims store is unavailable: " + err.Error()
	}
	if len(claims) == 0 {
		return fmt.Sprintf("No claims found for %s.", email)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Claims for %s:\n", email))
	for i, c := range claims {
		sb.WriteString(fmt.Sprintf("[%d] %s — %s, %s (%s)\n",
			i+1, c.ID, c.Description, c.Amount.StringFixed(2), c.Status))
	}
	return sb.String()
}

// validateArgs checks the raw JSON arguments against the tool's schema.
func validateArgs(def ToolDefinition, rawArgs string) error {
	if strings.TrimSpace(rawArgs) == "" {
		rawArgs = "{}"
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(def.Parameters),
		gojsonschema.NewStringLoader(rawArgs),
	)
	if err != nil {
		return err
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
