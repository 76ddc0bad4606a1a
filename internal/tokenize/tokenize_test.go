package tokenize

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokens_LowercasesAndSplitsOnPunctuation(t *testing.T) {
	got := Tokens("The Quick-Brown Fox!")
	want := []string{"quick", "brown", "fox"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestTokens_DropsStopwords(t *testing.T) {
	got := Tokens("the quick brown fox jumps over the lazy dog")
	for _, tok := range got {
		if tok == "the" || tok == "over" {
			t.Errorf("Tokens() kept stopword %q", tok)
		}
	}
}

func TestTokens_EmptyInput(t *testing.T) {
	got := Tokens("")
	if len(got) != 0 {
		t.Errorf("Tokens(\"\") = %v, want empty", got)
	}
}

func TestTokens_NoStemming(t *testing.T) {
	got := Tokens("running runs ran")
	want := []string{"running", "runs", "ran"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v (no stemming should occur)", got, want)
	}
}

func TestTokens_FinalRunWithoutTrailingPunctuation(t *testing.T) {
	got := Tokens("alpha beta gamma")
	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestTokens_Idempotence(t *testing.T) {
	inputs := []string{
		"Machine Learning and Deep Neural Networks!",
		"alpha beta gamma",
		"  leading   and trailing whitespace  ",
		"numbers 123 and456 789mixed",
	}
	for _, s := range inputs {
		first := Tokens(s)
		second := Tokens(strings.Join(first, " "))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Tokens not idempotent for %q: first=%v second=%v", s, first, second)
		}
	}
}

func TestTokens_DigitsKept(t *testing.T) {
	got := Tokens("covid19 vaccine 2023")
	want := []string{"covid19", "vaccine", "2023"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}
