package voice

import "testing"

func TestInterpret(t *testing.T) {
	g := NewGrammar()

	tests := []struct {
		transcript string
		want       Command
		matched    bool
	}{
		{"pause", CommandPause, true},
		{"please pause the reading", CommandPause, true},
		{"hold on a second", CommandPause, true},
		{"wait", CommandPause, true},
		{"play", CommandPlay, true},
		{"resume", CommandPlay, true},
		{"continue please", CommandPlay, true},
		{"start reading", CommandPlay, true},
		{"read it to me", CommandPlay, true},
		{"faster", CommandFaster, true},
		{"speed up a bit", CommandFaster, true},
		{"slower please", CommandSlower, true},
		{"slow down", CommandSlower, true},
		{"stop", CommandStop, true},
		{"PAUSE", CommandPause, true},
		{"  stop  ", CommandStop, true},
		{"what a lovely day", CommandNone, false},
		{"", CommandNone, false},
		{"   ", CommandNone, false},
	}

	for _, tt := range tests {
		got, matched := g.Interpret(tt.transcript)
		if got != tt.want || matched != tt.matched {
			t.Errorf("Interpret(%q) = (%q, %v), want (%q, %v)",
				tt.transcript, got, matched, tt.want, tt.matched)
		}
	}
}

func TestInterpretFirstMatchWins(t *testing.T) {
	g := NewGrammar()

	// "stop playing" matches both stop and play; stop is listed first.
	if got, _ := g.Interpret("stop playing"); got != CommandStop {
		t.Errorf("Interpret(stop playing) = %q, want stop", got)
	}
	// "pause" outranks "play" inside the same transcript.
	if got, _ := g.Interpret("pause the playback"); got != CommandPause {
		t.Errorf("Interpret(pause the playback) = %q, want pause", got)
	}
}

func TestInterpretWordBoundaries(t *testing.T) {
	g := NewGrammar()

	// "display" contains "play" but not as a word.
	if got, matched := g.Interpret("fix the display"); matched {
		t.Errorf("Interpret(fix the display) = %q, want no match", got)
	}
	// "stopwatch" contains "stop" but not as a word.
	if got, matched := g.Interpret("set a stopwatch"); matched {
		t.Errorf("Interpret(set a stopwatch) = %q, want no match", got)
	}
}
