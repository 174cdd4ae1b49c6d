package safety

import "regexp"

// Rule defines one detection pattern. Weight is the risk contribution of the
// rule's category; rules sharing a category contribute the weight once.
type Rule struct {
	Name     string
	Regex    *regexp.Regexp
	Weight   float64
	Category string
}

// Flag categories reported in RiskAssessment.Flags.
const (
	CategoryProfanity       = "profanity_detected"
	CategoryBypass          = "instruction_bypass"
	CategoryExtraction      = "prompt_extraction"
	CategoryRoleOverride    = "role_override"
	CategoryEncodingTrick   = "encoding_trick"
	CategorySystemCommand   = "system_command"
	CategoryCredentialProbe = "credential_probe"
	CategoryMarkupInjection = "markup_injection"
	CategoryControlChars    = "control_characters"
	CategoryLongPrompt      = "long_prompt"
	CategorySpecialChars    = "excessive_special_chars"
	CategoryRepetition      = "excessive_repetition"
)

// profanityTerms is the maintained wordlist. Matching is case-insensitive
// and word-boundary aware.
var profanityTerms = []string{
	"fuck", "fucking", "motherfucker", "shit", "shitty", "bitch",
	"asshole", "dick", "dickhead", "pussy", "cunt", "whore", "slut",
	"piss", "damn", "bastard", "cock", "wanker", "twat", "prick",
}

func profanityRegex() *regexp.Regexp {
	pattern := `(?i)\b(`
	for i, term := range profanityTerms {
		if i > 0 {
			pattern += "|"
		}
		pattern += term
	}
	pattern += `)\b`
	return regexp.MustCompile(pattern)
}

// DefaultRules returns the built-in detection rules.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "profanity_wordlist",
			Regex:    profanityRegex(),
			Weight:   0.8,
			Category: CategoryProfanity,
		},
		{
			Name:     "ignore_previous",
			Regex:    regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|context|rules)`),
			Weight:   0.2,
			Category: CategoryBypass,
		},
		{
			Name:     "new_instructions",
			Regex:    regexp.MustCompile(`(?i)(new|updated|revised)\s+instructions?\s*:`),
			Weight:   0.2,
			Category: CategoryBypass,
		},
		{
			Name:     "reveal_prompt",
			Regex:    regexp.MustCompile(`(?i)(show|display|reveal|print|repeat)\s+(me\s+)?(the\s+|your\s+)?(system\s+|initial\s+|original\s+)?(prompt|instructions?)`),
			Weight:   0.2,
			Category: CategoryExtraction,
		},
		{
			Name:     "ask_prompt",
			Regex:    regexp.MustCompile(`(?i)what('s|\s+is)\s+(the\s+|your\s+)?(system\s+|initial\s+|original\s+)(prompt|instructions?)`),
			Weight:   0.2,
			Category: CategoryExtraction,
		},
		{
			Name:     "act_as",
			Regex:    regexp.MustCompile(`(?i)act\s+(as|like)\s+(a\s+|an\s+|the\s+)?(person|human|assistant|ai|chatbot|gpt|model)`),
			Weight:   0.2,
			Category: CategoryRoleOverride,
		},
		{
			Name:     "you_are_now",
			Regex:    regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|the)\s+`),
			Weight:   0.2,
			Category: CategoryRoleOverride,
		},
		{
			Name:     "privileged_mode",
			Regex:    regexp.MustCompile(`(?i)(developer|debug|admin|root|unrestricted)\s+mode(\s+(enabled|activated|on))?`),
			Weight:   0.2,
			Category: CategoryRoleOverride,
		},
		{
			Name:     "jailbreak",
			Regex:    regexp.MustCompile(`(?i)\b(DAN|do\s+anything\s+now|jailbreak)\b`),
			Weight:   0.2,
			Category: CategoryRoleOverride,
		},
		{
			Name:     "encoding",
			Regex:    regexp.MustCompile(`(?i)\b(base64|rot13|hex|binary|unicode|url)[ _-]?(encode|decode|encoded|decoded)\b`),
			Weight:   0.2,
			Category: CategoryEncodingTrick,
		},
		{
			Name:     "system_command",
			Regex:    regexp.MustCompile(`(?i)\b(eval|exec(ute)?|subprocess|os\.system|import\s+os)\b`),
			Weight:   0.2,
			Category: CategorySystemCommand,
		},
		{
			Name:     "credential_probe",
			Regex:    regexp.MustCompile(`(?i)\b(password|passwd|pwd|api[ _-]?key|secret\s+key|access\s+token|credential)s?\b`),
			Weight:   0.2,
			Category: CategoryCredentialProbe,
		},
		{
			Name:     "markup_injection",
			Regex:    regexp.MustCompile(`(?i)</?\s*(script|iframe|img|svg|style|object|embed)\b`),
			Weight:   0.2,
			Category: CategoryMarkupInjection,
		},
		{
			Name:     "control_characters",
			Regex:    regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]"),
			Weight:   0.4,
			Category: CategoryControlChars,
		},
	}
}
