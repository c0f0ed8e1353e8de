//go:build mage

// Package main provides build targets for termsync using Mage.
//
// Usage:
//
//	mage build           Compile the termsync binary to bin/
//	mage test            Run all tests (unit + integration)
//	mage testUnit        Run only unit tests (exclude integration)
//	mage testIntegration Run only integration tests (builds first)
//	mage lint            Run golangci-lint
//	mage serve           Build and run the HTTP API with a scratch data dir
//	mage clean           Remove build artifacts
//	mage install         Install termsync to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "termsync"
	binaryDir  = "bin"
	cmdDir     = "./cmd/termsync"
	scratchDir = ".termsync-dev"
)

// Version is stamped into the binary.
var Version = "v0.1.0"

// Build compiles the termsync binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	ldflags := "-X main.Version=" + Version
	return sh.RunV("go", "build", "-v", "-ldflags", ldflags, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests (unit and integration).
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestUnit runs only unit tests, excluding the tests/ directory.
func TestUnit() error {
	pkgs, err := sh.Output("go", "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for _, pkg := range strings.Split(pkgs, "\n") {
		if pkg != "" && !strings.Contains(pkg, "/tests/") && !strings.HasSuffix(pkg, "/tests") {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test"}, unitPkgs...)
	return sh.RunV("go", args...)
}

// TestIntegration builds first, then runs only integration tests.
func TestIntegration() error {
	mg.Deps(Build)
	return sh.RunV("go", "test", "./tests/...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Serve builds termsync and serves the API from a scratch directory.
func Serve() error {
	mg.Deps(Build)
	env := map[string]string{
		"TERMSYNC_CONFIG_DIR": filepath.Join(scratchDir, "config"),
		"TERMSYNC_DATA_DIR":   filepath.Join(scratchDir, "data"),
		"TERMSYNC_LOG_LEVEL":  "debug",
	}
	return sh.RunWithV(env, filepath.Join(binaryDir, binaryName), "serve")
}

// Clean removes build artifacts and the scratch directory.
func Clean() error {
	for _, dir := range []string{binaryDir, scratchDir} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
