package main

import (
	"github.com/urfave/cli/v3"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getDekCommands()...)
	return cmds
}

// formatFlag is shared by every command that prints a result.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

// allowFallbackFlag opts in to the HKDF fallback KEK.
func allowFallbackFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "allow-fallback",
		Value: false,
		Usage: "Derive the KEK from stored identifiers when the authenticator has no hmac-secret",
	}
}
