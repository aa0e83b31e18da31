// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/pii-obfuscator/obfuscator/command"
	"github.com/pii-obfuscator/obfuscator/version"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := cli.NewCLI("obfuscator", version.GetVersion().FullVersionNumber(false))
	c.Args = args
	c.Commands = map[string]cli.CommandFactory{
		"run":     command.RunCommandFactory(ui),
		"version": command.VersionCommandFactory(ui),
	}

	exitStatus, err := c.Run()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
	}
	return exitStatus
}
