//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the formation scenario with formation.toml, or with $FORMATION_CONFIG when set.
func (Run) Simulation() error {
	mg.Deps(Build.Binary)
	config := os.Getenv("FORMATION_CONFIG")
	if config == "" {
		config = "formation.toml"
	}
	fmt.Printf("Run simulation with %s...\n", config)
	if _, err := executeCmd("bin/formation", withArgs(config), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs every package test.
func (Run) Tests() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
