package store

import "github.com/shopspring/decimal"

// ClaimStatusSubmitted is the status every new claim starts in. Status
// transitions happen outside this service.
const ClaimStatusSubmitted = "Submitted"

// ExpenseClaim is a submitted expense claim. Claims are created by the
// submit_claim tool and never mutated or deleted here.
type ExpenseClaim struct {
	ID          string
	Email       string
	Description string
	Amount      decimal.Decimal
	Status      string
	CreatedTs   int64
}

// FindClaim filters for ListClaims.
type FindClaim struct {
	Email *string
}
