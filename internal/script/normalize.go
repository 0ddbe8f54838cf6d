package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Default feedback lines used when the model omits them.
const (
	DefaultFeedbackCorrect = "Hmph, not bad."
	DefaultFeedbackWrong   = "Baka! Think it through again, nya!"
	DefaultChoicePrompt    = "Which one do you pick?"

	fallbackUnparseable = "This section is written way too dense... let me just walk you through it the plain way, nya."
)

// Normalize converts a decoded JSON array from the model into a playable
// Script. Malformed entries are dropped item by item; if nothing survives,
// a single fallback dialogue is returned so the result is never empty.
// Pure function: no side effects, no logging.
func Normalize(raw []any) Script {
	out := normalizeItems(raw)
	if len(out) == 0 {
		return FallbackScript(fallbackUnparseable, -1, "")
	}
	return out
}

// normalizeItems is the salvage loop without the empty-result fallback,
// so the generator can treat an empty normalization as a retryable failure.
func normalizeItems(raw []any) Script {
	out := make(Script, 0, len(raw))
	for _, el := range raw {
		rec, ok := el.(map[string]any)
		if !ok {
			continue
		}

		switch ItemType(strings.TrimSpace(asString(rec["type"]))) {
		case TypeSubHead:
			title := strings.TrimSpace(asString(rec["title"]))
			if title == "" {
				continue
			}
			out = append(out, Item{Type: TypeSubHead, Title: title})

		case TypeDialogue:
			text := strings.TrimSpace(asString(rec["text"]))
			if text == "" {
				continue
			}
			speaker := strings.TrimSpace(asString(rec["speaker"]))
			if speaker == "" {
				speaker = DefaultSpeaker
			}
			out = append(out, Item{
				Type:    TypeDialogue,
				Speaker: speaker,
				Text:    text,
				Emotion: ClampEmotion(asString(rec["emotion"])),
			})

		case TypeQuiz:
			question := strings.TrimSpace(asString(rec["question"]))
			options := optionList(rec["options"])
			if question == "" || len(options) < 2 {
				continue
			}
			out = append(out, Item{
				Type:            TypeQuiz,
				Question:        question,
				Options:         options,
				CorrectAnswer:   resolveCorrectAnswer(asString(rec["correct_answer"]), options),
				FeedbackCorrect: stringOrDefault(rec["feedback_correct"], DefaultFeedbackCorrect),
				FeedbackWrong:   stringOrDefault(rec["feedback_wrong"], DefaultFeedbackWrong),
				Explanation:     strings.TrimSpace(asString(rec["explanation"])),
				Emotion:         ClampEmotion(asString(rec["emotion"])),
			})

		case TypeChoice:
			options := optionList(rec["options"])
			if len(options) < 2 {
				continue
			}
			prompt := strings.TrimSpace(asString(rec["prompt"]))
			if prompt == "" {
				prompt = strings.TrimSpace(asString(rec["question"]))
			}
			if prompt == "" {
				prompt = DefaultChoicePrompt
			}
			out = append(out, Item{
				Type:        TypeChoice,
				Prompt:      prompt,
				Options:     options,
				Explanation: strings.TrimSpace(asString(rec["explanation"])),
				Emotion:     ClampEmotion(asString(rec["emotion"])),
			})
		}
	}
	return out
}

// FallbackScript builds the single-dialogue degraded script. The emotion
// alternates by chunk-index parity (even = normal, odd = shy) purely for
// cosmetic variety; the sentinel index -1 used for normalization failures
// lands on shy.
func FallbackScript(msg string, chunkIndex int, excerpt string) Script {
	text := msg
	if excerpt != "" {
		text += fmt.Sprintf("\n\n(Source excerpt: %s…)", excerpt)
	}
	emotion := EmotionNormal
	if chunkIndex%2 != 0 {
		emotion = EmotionShy
	}
	return Script{{
		Type:    TypeDialogue,
		Speaker: DefaultSpeaker,
		Text:    text,
		Emotion: emotion,
	}}
}

var (
	// Leading enumerators on option text: "(A) ", "（2）", then "A. ",
	// "3) ", "C、". Both ASCII and fullwidth punctuation appear in model
	// output, so the classes cover both.
	optParenLabelRe = regexp.MustCompile(`^\s*[（(]\s*([A-Za-z]|\d{1,2})\s*[）)]\s*`)
	optLabelRe      = regexp.MustCompile(`^\s*([A-Za-z]|\d{1,2})\s*[.)、,:：]\s*`)

	answerLetterRe = regexp.MustCompile(`^[（(]?\s*([A-Za-z])\s*[）)]?[.)、,:：]?\s*$`)
	answerDigitRe  = regexp.MustCompile(`^[（(]?\s*(\d{1,2})\s*[）)]?[.)、,:：]?\s*$`)
)

// CleanOptionText strips leading enumerators from an option, iterating up
// to 3 passes to handle double-prefixing ("A. (1) foo") and stopping early
// once a pass changes nothing. If stripping consumes the whole string, the
// original trimmed text is kept.
func CleanOptionText(value string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}

	for i := 0; i < 3; i++ {
		prev := text
		text = strings.TrimSpace(optParenLabelRe.ReplaceAllString(text, ""))
		text = strings.TrimSpace(optLabelRe.ReplaceAllString(text, ""))
		if text == prev {
			break
		}
	}
	if text == "" {
		return strings.TrimSpace(value)
	}
	return text
}

// optionLabelIndex maps a bare answer label ("B", "(2)", "c、") to a
// zero-based option index.
func optionLabelIndex(text string) (int, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}

	if m := answerLetterRe.FindStringSubmatch(s); m != nil {
		c := strings.ToUpper(m[1])[0]
		return int(c - 'A'), true
	}
	if m := answerDigitRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n - 1, true
	}
	return 0, false
}

// resolveCorrectAnswer matches the model's correct_answer against the
// cleaned option list: label match first, then literal text match. When
// nothing matches, the first option is substituted so the answer is
// always one of the options (deterministic, documented fallback).
func resolveCorrectAnswer(rawAnswer string, options []string) string {
	if len(options) == 0 {
		return strings.TrimSpace(rawAnswer)
	}

	raw := strings.TrimSpace(rawAnswer)
	if raw == "" {
		return options[0]
	}

	if idx, ok := optionLabelIndex(raw); ok && idx >= 0 && idx < len(options) {
		return options[idx]
	}

	cleaned := CleanOptionText(raw)
	if idx, ok := optionLabelIndex(cleaned); ok && idx >= 0 && idx < len(options) {
		return options[idx]
	}

	for _, opt := range options {
		if cleaned == strings.TrimSpace(opt) {
			return opt
		}
	}

	return options[0]
}

// optionList coerces a raw options value into cleaned option strings.
func optionList(v any) []string {
	raw, ok := v.([]any)
	if !ok || len(raw) < 2 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		out = append(out, CleanOptionText(asString(o)))
	}
	return out
}

// asString coerces scalar JSON values the way the prompt contract expects
// strings: numbers render with %v, anything structured is dropped.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func stringOrDefault(v any, def string) string {
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return def
	}
	return s
}
