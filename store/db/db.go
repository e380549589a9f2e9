// Package db selects the claims store driver from the configured profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/policydesk/policydesk/server/profile"
	"github.com/policydesk/policydesk/store"
	"github.com/policydesk/policydesk/store/db/mysql"
	"github.com/policydesk/policydesk/store/db/postgres"
	"github.com/policydesk/policydesk/store/db/sqlite"
)

// NewDriver opens the claims database named by the profile.
func NewDriver(p *profile.Profile) (store.Driver, error) {
	switch p.Driver {
	case "sqlite":
		return sqlite.New(p.DSN)
	case "postgres":
		return postgres.New(p.DSN)
	case "mysql":
		return mysql.New(p.DSN)
	default:
		return nil, errors.Errorf("unknown database driver %q", p.Driver)
	}
}
