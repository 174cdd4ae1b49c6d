package safety

import (
	"strings"
	"unicode"

	"github.com/af-corp/helpdesk-agent/internal/types"
)

// Context identifies which side of the model call is being scanned.
type Context string

const (
	ContextIngress Context = "ingress"
	ContextEgress  Context = "egress"
)

// Structural thresholds, matching the long-standing tuning of the rule set.
const (
	longPromptChars   = 1000
	specialCharRatio  = 0.3
	minRepetitionRun  = 10
	longPromptWeight  = 0.3
	specialCharWeight = 0.4
	repetitionWeight  = 0.2
)

// Detector scans text for profanity, prompt-injection attempts and
// structural anomalies. Stateless after construction; identical input
// always yields an identical RiskAssessment.
type Detector struct {
	rules          []Rule
	blockThreshold func() float64
}

// NewDetector creates a detector with the default rule set. blockThreshold
// is read per call so config hot-reload takes effect.
func NewDetector(blockThreshold func() float64) *Detector {
	return &Detector{rules: DefaultRules(), blockThreshold: blockThreshold}
}

// Assess scans one text blob and returns a fresh RiskAssessment. Empty text
// scores zero. Each matched category contributes its weight exactly once,
// the score is capped at 1.0, and flags keep detection order without
// duplicates.
func (d *Detector) Assess(text string, _ Context) types.RiskAssessment {
	score := 0.0
	flags := []string{}
	seen := make(map[string]bool)
	hit := func(category string, weight float64) {
		if seen[category] {
			return
		}
		seen[category] = true
		flags = append(flags, category)
		score += weight
	}

	if text == "" {
		return types.RiskAssessment{RiskScore: 0, Flags: flags, Blocked: false}
	}

	for _, r := range d.rules {
		if r.Regex.MatchString(text) {
			hit(r.Category, r.Weight)
		}
	}

	if len(text) > longPromptChars {
		hit(CategoryLongPrompt, longPromptWeight)
	}
	if hasExcessiveSpecialChars(text) {
		hit(CategorySpecialChars, specialCharWeight)
	}
	if hasExcessiveRepetition(text) {
		hit(CategoryRepetition, repetitionWeight)
	}

	if score > 1.0 {
		score = 1.0
	}

	return types.RiskAssessment{
		RiskScore: score,
		Flags:     flags,
		Blocked:   score >= d.blockThreshold(),
	}
}

func hasExcessiveSpecialChars(text string) bool {
	runes := []rune(text)
	special := 0
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) && r != '_' {
			special++
		}
	}
	return float64(special) > float64(len(runes))*specialCharRatio
}

// hasExcessiveRepetition reports a run of one character repeated
// minRepetitionRun or more times, or one word repeated that often in a row.
func hasExcessiveRepetition(text string) bool {
	run := 0
	var prev rune
	for i, r := range text {
		if i > 0 && r == prev {
			run++
			if run+1 >= minRepetitionRun {
				return true
			}
		} else {
			run = 0
		}
		prev = r
	}

	words := strings.Fields(text)
	wordRun := 0
	for i := 1; i < len(words); i++ {
		if words[i] == words[i-1] {
			wordRun++
			if wordRun+1 >= minRepetitionRun {
				return true
			}
		} else {
			wordRun = 0
		}
	}
	return false
}
