//go:build mage

// Package main provides build targets for chatkeep using Mage.
//
// Usage:
//
//	mage build          Compile the chatkeep binary to bin/
//	mage test:all       Run every test
//	mage test:unit      Run tests without Postgres
//	mage test:postgres  Run store tests against $CHATKEEP_TEST_POSTGRES_DSN
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install chatkeep to GOPATH/bin
//	mage stats          Print Go LOC and documentation word counts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "chatkeep"
	binaryDir  = "bin"
	cmdDir     = "./cmd/chatkeep"
	versionVar = "github.com/mesh-intelligence/chatkeep/internal/cli.Version"
)

// ldflags stamps the version from $CHATKEEP_VERSION when set.
func ldflags() string {
	if v := os.Getenv("CHATKEEP_VERSION"); v != "" {
		return "-X " + versionVar + "=" + v
	}
	return ""
}

// Build compiles the chatkeep binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
