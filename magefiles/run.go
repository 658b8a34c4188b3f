//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the scripted testbed session with extrudo.toml.
func (Run) Testbed() error {
	mg.Deps(Build.Testbed)
	fmt.Println("Run testbed...")
	if _, err := executeCmd("bin/testbed", withArgs("-config", "extrudo.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
