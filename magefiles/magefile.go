//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Test

type Build mg.Namespace

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestDebug runs the unit tests with invariant checks compiled in.
func TestDebug() error {
	return sh.RunV("go", "test", "-tags", "debug", "./...")
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Viewer builds the batchview demo into bin/.
func (Build) Viewer() error {
	mg.Deps(Vet)
	return sh.RunV("go", "build", "-o", "bin/batchview", "./cmd/batchview")
}

// Debug builds the demo with invariant checks enabled.
func (Build) Debug() error {
	return sh.RunV("go", "build", "-tags", "debug", "-o", "bin/batchview-debug", "./cmd/batchview")
}
