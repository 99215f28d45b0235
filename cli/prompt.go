package cli

import (
	"os"

	"github.com/manifoldco/promptui"
)

// PromptStringEmptyOk asks for a line of text. An empty answer is accepted.
func PromptStringEmptyOk(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:  label,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}

	return prompt.Run()
}
