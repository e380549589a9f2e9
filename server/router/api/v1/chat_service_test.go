package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policydesk/policydesk/server/profile"
	"github.com/policydesk/policydesk/store"
)

func newTestService(t *testing.T, oracle Oracle) (*APIV1Service, *echo.Echo) {
	t.Helper()
	svc := NewAPIV1Service(
		&profile.Profile{LLMAPIKey: "sk-test", Driver: "sqlite"},
		store.New(&fakeDriver{}),
		store.NewChatStore(),
		NewAgent(oracle, newTestToolSet(t, &fakeDriver{})),
	)
	e := echo.New()
	svc.Register(e)
	return svc, e
}

func postChat(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatHappyPath(t *testing.T) {
	oracle := &stubOracle{decisions: []*Decision{{Answer: "Hello!"}}}
	_, e := newTestService(t, oracle)

	rec := postChat(e, `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hello!", resp.Response)
	assert.NotEmpty(t, resp.SessionID)
}

func TestChatEmptyBodyRejected(t *testing.T) {
	oracle := &stubOracle{decisions: []*Decision{{Answer: "should not run"}}}
	svc, e := newTestService(t, oracle)

	for _, body := range []string{``, `{}`, `{"message":""}`, `{"message":"   "}`} {
		rec := postChat(e, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	}

	// The orchestrator never ran and no history was written.
	assert.Empty(t, oracle.calls)
	assert.Empty(t, svc.Chat.History(""))
}

func TestChatAppendsBothTurns(t *testing.T) {
	oracle := &stubOracle{decisions: []*Decision{{Answer: "42 is the answer"}}}
	svc, e := newTestService(t, oracle)

	rec := postChat(e, `{"message":"what is the answer?","sessionId":"sess-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	turns := svc.Chat.History("sess-1")
	require.Len(t, turns, 2)
	assert.Equal(t, store.RoleUser, turns[0].Role)
	assert.Equal(t, "what is the answer?", turns[0].Content)
	assert.Equal(t, store.RoleAssistant, turns[1].Role)
	assert.Equal(t, "42 is the answer", turns[1].Content)
}

func TestChatSessionContinuity(t *testing.T) {
	oracle := &stubOracle{decisions: []*Decision{
		{Answer: "first reply"},
		{Answer: "second reply"},
	}}
	_, e := newTestService(t, oracle)

	rec := postChat(e, `{"message":"first"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = postChat(e, `{"message":"second","sessionId":"`+resp.SessionID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// The second deciding step saw the whole session: system prompt plus
	// three history turns and the new user message.
	require.Len(t, oracle.calls, 2)
	second := oracle.calls[1]
	require.Len(t, second, 5)
	assert.Equal(t, "first", second[1].Content)
	assert.Equal(t, "first reply", second[2].Content)
	assert.Equal(t, "second", second[3].Content)
}

func TestChatSessionsDoNotBleed(t *testing.T) {
	oracle := &stubOracle{decisions: []*Decision{
		{Answer: "a"},
		{Answer: "b"},
	}}
	_, e := newTestService(t, oracle)

	rec := postChat(e, `{"message":"for session one","sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postChat(e, `{"message":"for session two","sessionId":"s2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	second := oracle.calls[1]
	for _, m := range second {
		assert.NotContains(t, m.Content, "for session one")
	}
}

func TestChatOracleFailureIs500(t *testing.T) {
	oracle := &stubOracle{err: errors.New("upstream down")}
	_, e := newTestService(t, oracle)

	rec := postChat(e, `{"message":"hello"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestChatAPIPathAlias(t *testing.T) {
	oracle := &stubOracle{decisions: []*Decision{{Answer: "ok"}}}
	_, e := newTestService(t, oracle)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
