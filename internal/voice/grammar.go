// Package voice interprets speech-recognition transcripts as reader
// navigation commands.
//
// The grammar is an ordered list of regex rules evaluated first-match-wins:
// when a transcript matches several rules, the earliest rule in the list
// decides. There is no disambiguation pass.
package voice

import (
	"regexp"
	"strings"
)

// Command is a reader control action derived from a transcript.
type Command string

// Reader commands.
const (
	CommandPause  Command = "pause"
	CommandPlay   Command = "play"
	CommandFaster Command = "faster"
	CommandSlower Command = "slower"
	CommandStop   Command = "stop"
	CommandNone   Command = "none"
)

// Rule pairs a compiled pattern with the command it triggers.
type Rule struct {
	// Name is a human-readable label for logging.
	Name string

	// Regex is matched against the trimmed transcript.
	Regex *regexp.Regexp

	// Command is emitted when Regex matches.
	Command Command
}

// Grammar holds the ordered rule list.
type Grammar struct {
	rules []Rule
}

// NewGrammar creates a Grammar with the default reader rules.
func NewGrammar() *Grammar {
	return &Grammar{rules: defaultRules()}
}

// Interpret matches transcript against the grammar. It returns the matched
// command and true, or CommandNone and false when nothing matches.
func (g *Grammar) Interpret(transcript string) (Command, bool) {
	trimmed := strings.TrimSpace(transcript)
	if trimmed == "" {
		return CommandNone, false
	}
	for _, r := range g.rules {
		if r.Regex.MatchString(trimmed) {
			return r.Command, true
		}
	}
	return CommandNone, false
}

// defaultRules returns the built-in reader command rules. Order matters:
// "stop" outranks "play" so that "stop playing" halts rather than resumes.
func defaultRules() []Rule {
	return []Rule{
		{
			Name:    "stop",
			Regex:   regexp.MustCompile(`(?i)\bstop\b`),
			Command: CommandStop,
		},
		{
			Name:    "pause",
			Regex:   regexp.MustCompile(`(?i)\b(pause|hold on|wait)\b`),
			Command: CommandPause,
		},
		{
			Name:    "play",
			Regex:   regexp.MustCompile(`(?i)\b(play|resume|continue|start reading|read)\b`),
			Command: CommandPlay,
		},
		{
			Name:    "faster",
			Regex:   regexp.MustCompile(`(?i)\b(faster|speed up)\b`),
			Command: CommandFaster,
		},
		{
			Name:    "slower",
			Regex:   regexp.MustCompile(`(?i)\b(slower|slow down)\b`),
			Command: CommandSlower,
		},
	}
}
