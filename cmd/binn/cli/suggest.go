// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestDistance is the largest edit distance still offered as a
// "did you mean" suggestion. Three edits covers a dropped, doubled, or
// swapped letter.
const maxSuggestDistance = 3

// suggestCommand returns the subcommand name closest to unknown, or ""
// when none is within maxSuggestDistance.
func suggestCommand(unknown string, commands []*Command) string {
	names := make([]string, len(commands))
	for i, command := range commands {
		names[i] = command.Name
	}
	return closest(unknown, names)
}

// suggestFlag finds the first flag in args that flagSet does not define
// and returns the closest defined long flag as "--name", or "".
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	if flagSet == nil {
		return ""
	}
	unknown := firstUnknownFlag(args, flagSet)
	if unknown == "" {
		return ""
	}

	var names []string
	flagSet.VisitAll(func(flag *pflag.Flag) {
		names = append(names, flag.Name)
	})
	if best := closest(unknown, names); best != "" {
		return "--" + best
	}
	return ""
}

// firstUnknownFlag returns the bare name of the first flag argument
// before "--" that flagSet does not define.
func firstUnknownFlag(args []string, flagSet *pflag.FlagSet) string {
	for _, arg := range args {
		if arg == "--" {
			return ""
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "" {
			continue
		}
		if strings.HasPrefix(arg, "--") {
			if flagSet.Lookup(name) == nil {
				return name
			}
			continue
		}
		// A shorthand group such as "-cs" counts as known when its first
		// letter is; pflag names any bad letter after it.
		if flagSet.ShorthandLookup(name[:1]) == nil {
			return name
		}
	}
	return ""
}

// closest returns the candidate with the smallest edit distance to
// name, provided it is at most maxSuggestDistance. Ties go to the
// earlier candidate.
func closest(name string, candidates []string) string {
	best, bestDistance := "", maxSuggestDistance+1
	for _, candidate := range candidates {
		if distance := levenshtein(name, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

// levenshtein returns the edit distance between a and b, counting
// single-byte insertions, deletions, and substitutions.
func levenshtein(a, b string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	// row[j] holds the distance between the current prefix of a and
	// b[:j]; diagonal carries the value row[j-1] had before this pass.
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diagonal := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			above := row[j]
			substitution := diagonal
			if a[i-1] != b[j-1] {
				substitution++
			}
			row[j] = min(above+1, row[j-1]+1, substitution)
			diagonal = above
		}
	}
	return row[len(b)]
}
