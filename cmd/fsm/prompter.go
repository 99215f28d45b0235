package main

import "github.com/amp-labs/amp-finite/cli"

type prompter interface {
	Select(label string, choices []string) (string, error)
	Line(label string) (string, error)
}

// cliPrompter asks on the terminal.
type cliPrompter struct{}

func (cliPrompter) Select(label string, choices []string) (string, error) {
	return cli.Select(label, choices...)
}

func (cliPrompter) Line(label string) (string, error) {
	return cli.PromptStringEmptyOk(label)
}
