//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "transcriber"
	mainPkg    = "./cmd/transcriber"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the transcriber binary
func Build() error {
	fmt.Println("Building", binaryName)
	return sh.RunV("go", "build", "-o", binaryName, mainPkg)
}

// Test runs all package tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet on all packages
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install builds and copies the binary to ~/go/bin
func Install() error {
	mg.Deps(Build)

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dest := filepath.Join(home, "go", "bin", binaryName)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	fmt.Println("Installing to", dest)
	return sh.Copy(dest, binaryName)
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binaryName)
}
