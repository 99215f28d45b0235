package cli

import (
	"slices"
	"strings"

	"facette.io/natsort"
	"github.com/manifoldco/promptui"
)

// Select asks the user to pick one of choices, shown in the given order.
// Typing filters the list by prefix.
func Select(label string, choices ...string) (string, error) {
	if len(choices) == 0 {
		return "", ErrNoChoices
	}

	sel := &promptui.Select{
		Label:    label,
		Items:    choices,
		Searcher: prefixSearcher(choices),
	}

	_, value, err := sel.Run()
	if err != nil {
		return "", err
	}

	return value, nil
}

// SortNatural returns a naturally ordered copy of choices.
func SortNatural(choices []string) []string {
	sorted := slices.Clone(choices)
	natsort.Sort(sorted)

	return sorted
}

func prefixSearcher(choices []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if len(input) == 0 {
			return true
		}

		return strings.HasPrefix(strings.ToLower(choices[index]), strings.ToLower(input))
	}
}
