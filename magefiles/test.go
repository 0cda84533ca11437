//go:build mage

package main

import (
	"errors"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const envPostgresDSN = "CHATKEEP_TEST_POSTGRES_DSN"

// Test groups test targets (all, unit, postgres).
type Test mg.Namespace

// All runs every test. Postgres tests run when CHATKEEP_TEST_POSTGRES_DSN
// is set and skip otherwise.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs every test with the Postgres DSN cleared.
func (Test) Unit() error {
	env := map[string]string{envPostgresDSN: ""}
	return sh.RunWithV(env, binGo, "test", "-race", "./...")
}

// Postgres runs the store tests against the database named by
// CHATKEEP_TEST_POSTGRES_DSN.
func (Test) Postgres() error {
	if os.Getenv(envPostgresDSN) == "" {
		return errors.New(envPostgresDSN + " is not set")
	}
	return sh.RunV(binGo, "test", "-v", "-count=1", "./internal/sqlstore/...")
}
