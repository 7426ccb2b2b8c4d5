//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for docflow using Mage.
//
// Usage:
//
//	mage build          Compile the docflow binary to bin/
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Run all tests and write coverage.out
//	mage lint           Check gofmt, run go vet and golangci-lint
//	mage serve          Build and run the HTTP API on :8080
//	mage clean          Remove build artifacts
//	mage install        Install docflow to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "docflow"
	binaryDir  = "bin"
	cmdDir     = "./cmd/docflow"
)

// Build compiles the docflow binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", binaryPath(), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove(coverProfile); err != nil && !os.IsNotExist(err) {
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
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, binaryPath())
}

// Serve builds the binary and runs the HTTP API with verbose logging.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath(), "--verbose", "serve")
}

func binaryPath() string {
	return filepath.Join(binaryDir, binaryName)
}
