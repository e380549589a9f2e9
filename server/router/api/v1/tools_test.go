package v1

import (
	"context"
	"testing"

	chromem "github.com/philippgille/chromem-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policydesk/policydesk/plugin/vectorstore"
	"github.com/policydesk/policydesk/store"
)

func TestSubmitClaimRejectsInvalidEmail(t *testing.T) {
	driver := &fakeDriver{}
	ts := newTestToolSet(t, driver)

	for _, email := range []string{"not-an-email", "bob@", "@co.com", "bob co@co.com", ""} {
		result := ts.Dispatch(context.Background(), toolSubmitClaim,
			`{"email":"`+email+`","description":"taxi","amount":10}`)
		assert.Contains(t, result, "No claim was submitted", "email %q", email)
		assert.NotContains(t, result, "successfully")
	}
	assert.Empty(t, driver.claims)
}

func TestSubmitClaimRejectsBadAmounts(t *testing.T) {
	driver := &fakeDriver{}
	ts := newTestToolSet(t, driver)

	for _, raw := range []string{`0`, `-5`, `"free"`, `"-42.50"`} {
		result := ts.Dispatch(context.Background(), toolSubmitClaim,
			`{"email":"bob@co.com","description":"taxi","amount":`+raw+`}`)
		assert.Contains(t, result, "positive number", "amount %s", raw)
	}
	assert.Empty(t, driver.claims)
}

func TestSubmitClaimSuccess(t *testing.T) {
	driver := &fakeDriver{}
	ts := newTestToolSet(t, driver)

	result := ts.Dispatch(context.Background(), toolSubmitClaim,
		`{"email":"bob@co.com","description":"taxi","amount":42.50}`)

	assert.Contains(t, result, "submitted successfully")
	assert.Contains(t, result, "bob@co.com")
	assert.Contains(t, result, "Submitted")
	require.Len(t, driver.claims, 1)
	assert.Equal(t, store.ClaimStatusSubmitted, driver.claims[0].Status)
	assert.NotEmpty(t, driver.claims[0].ID)
}

func TestSubmitClaimAcceptsStringAmount(t *testing.T) {
	driver := &fakeDriver{}
	ts := newTestToolSet(t, driver)

	result := ts.Dispatch(context.Background(), toolSubmitClaim,
		`{"email":"bob@co.com","description":"hotel","amount":"120.00"}`)
	assert.Contains(t, result, "submitted successfully")
	require.Len(t, driver.claims, 1)
	assert.Equal(t, "120.00", driver.claims[0].Amount.StringFixed(2))
}

func TestSubmitClaimStoreFailure(t *testing.T) {
	driver := &fakeDriver{createErr: errors.New("connection refused")}
	ts := newTestToolSet(t, driver)

	result := ts.Dispatch(context.Background(), toolSubmitClaim,
		`{"email":"bob@co.com","description":"taxi","amount":42.50}`)
	assert.Contains(t, result, "could not be saved")
	assert.NotContains(t, result, "successfully")
}

func TestSubmitClaimMissingFieldsFailSchema(t *testing.T) {
	driver := &fakeDriver{}
	ts := newTestToolSet(t, driver)

	result := ts.Dispatch(context.Background(), toolSubmitClaim, `{"email":"bob@co.com"}`)
	assert.Contains(t, result, "invalid arguments")
	assert.Empty(t, driver.claims)
}

func TestGetUserClaimsEmpty(t *testing.T) {
	ts := newTestToolSet(t, &fakeDriver{})

	result := ts.Dispatch(context.Background(), toolGetUserClaims, `{"email":"nobody@co.com"}`)
	assert.Contains(t, result, "No claims found for nobody@co.com")
}

func TestGetUserClaimsFormatsList(t *testing.T) {
	driver := &fakeDriver{}
	ts := newTestToolSet(t, driver)

	ts.Dispatch(context.Background(), toolSubmitClaim,
		`{"email":"bob@co.com","description":"taxi","amount":42.50}`)
	ts.Dispatch(context.Background(), toolSubmitClaim,
		`{"email":"bob@co.com","description":"hotel","amount":120}`)
	ts.Dispatch(context.Background(), toolSubmitClaim,
		`{"email":"alice@co.com","description":"flight","amount":300}`)

	result := ts.Dispatch(context.Background(), toolGetUserClaims, `{"email":"bob@co.com"}`)
	assert.Contains(t, result, "taxi")
	assert.Contains(t, result, "hotel")
	assert.NotContains(t, result, "flight")
}

func TestGetUserClaimsRejectsInvalidEmail(t *testing.T) {
	ts := newTestToolSet(t, &fakeDriver{})
	result := ts.Dispatch(context.Background(), toolGetUserClaims, `{"email":"nope"}`)
	assert.Contains(t, result, "not a valid email")
}

func TestPolicySearchReturnsChunks(t *testing.T) {
	ts := newTestToolSet(t, &fakeDriver{})

	result := ts.Dispatch(context.Background(), toolPolicySearch, `{"query":"per-diem limit"}`)
	assert.Contains(t, result, "per-diem")
}

func TestPolicySearchEmptyIndex(t *testing.T) {
	vs := vectorstore.NewInMemory(chromem.EmbeddingFunc(constEmbedding))
	ts := NewToolSet(vs, store.New(&fakeDriver{}))

	result := ts.Dispatch(context.Background(), toolPolicySearch, `{"query":"anything"}`)
	assert.Contains(t, result, "No relevant policy sections found")
}

func TestDispatchUnknownTool(t *testing.T) {
	ts := newTestToolSet(t, &fakeDriver{})
	result := ts.Dispatch(context.Background(), "teleport", `{}`)
	assert.Contains(t, result, "Unknown tool")
}

func TestDispatchEmptyArguments(t *testing.T) {
	ts := newTestToolSet(t, &fakeDriver{})
	result := ts.Dispatch(context.Background(), toolPolicySearch, "")
	assert.Contains(t, result, "invalid arguments")
}

func TestDefinitionsAreClosedAndTyped(t *testing.T) {
	ts := newTestToolSet(t, &fakeDriver{})
	defs := ts.Definitions()
	require.Len(t, defs, 3)
	names := []string{defs[0].Name, defs[1].Name, defs[2].Name}
	assert.Equal(t, []string{toolPolicySearch, toolSubmitClaim, toolGetUserClaims}, names)
	for _, def := range defs {
		assert.NotEmpty(t, def.Description)
		assert.Equal(t, "object", def.Parameters["type"])
	}
}
