package intent

import (
	"strings"
	"testing"

	"github.com/savo-robotics/savocore/internal/models"
)

func TestClassifyPriorityOrder(t *testing.T) {
	cases := []struct {
		text string
		want models.Intent
	}{
		{"stop please", models.IntentStop},
		{"can you stop now", models.IntentStop},
		{"can you follow me", models.IntentFollow},
		{"can you take me to A201", models.IntentNavigate},
		{"where is the info desk", models.IntentNavigate},
		{"why did you stop", models.IntentStatus},
		{"battery level please", models.IntentStatus},
		{"hello robot savo, how are you", models.IntentChatbot},
		{"", models.IntentChatbot},
		{"   \n  ", models.IntentChatbot},
	}
	for _, c := range cases {
		if got := Classify(c.text); got != c.want {
			t.Errorf("Classify(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestClassifyStopWinsOverNavigate(t *testing.T) {
	// A stop request must never be shadowed by navigation phrasing in the
	// same utterance.
	texts := []string{
		"stop, do not take me to A201",
		"take me to the exit but first stop",
		"please halt and then guide me to the lobby",
	}
	for _, text := range texts {
		if got := Classify(text); got != models.IntentStop {
			t.Errorf("Classify(%q) = %v, want STOP", text, got)
		}
	}
}

func TestClassifyAlwaysReturnsValidLabel(t *testing.T) {
	inputs := []string{"", "???", strings.Repeat("z", 1000), "Tämä on suomea", "42"}
	for _, in := range inputs {
		if got := Classify(in); !models.IsValidIntent(got) {
			t.Errorf("Classify(%q) returned invalid label %q", in, got)
		}
	}
}

func TestExtractGoal(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"can you take me to the info desk please", "info desk"},
		{"take me to a201", "a201"},
		{"go to room a201", "a201"},
		{"where is reception", "reception"},
		{"i want to go to the cafeteria thanks", "cafeteria"},
		{"how do i get to the library", "library"},
		{"hello there", ""},
		{"take me to", ""},
		{"take me to please", ""},
	}
	for _, c := range cases {
		if got := ExtractGoal(c.text); got != c.want {
			t.Errorf("ExtractGoal(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestExtractGoalWordCap(t *testing.T) {
	goal := ExtractGoal("take me to big red lecture hall near the main stairs")
	if goal == "" {
		t.Fatal("expected a goal")
	}
	if n := len(strings.Fields(goal)); n > models.MaxGoalWords {
		t.Errorf("goal %q has %d words, cap is %d", goal, n, models.MaxGoalWords)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Take  ME \n to  A201 "); got != "take me to a201" {
		t.Errorf("got %q", got)
	}
}
