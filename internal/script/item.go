package script

import "strings"

// Emotion is the closed set of narrator sprite emotions.
// Anything outside the set normalizes to EmotionNormal.
type Emotion string

const (
	EmotionNormal Emotion = "normal"
	EmotionHappy  Emotion = "happy"
	EmotionAngry  Emotion = "angry"
	EmotionShy    Emotion = "shy"
)

// ClampEmotion maps a raw model-provided emotion key onto the enum.
// The prompt asks for sprite keys like "char_happy", so the prefixed
// form is accepted alongside the bare name.
func ClampEmotion(raw string) Emotion {
	e := strings.TrimSpace(raw)
	e = strings.TrimPrefix(e, "char_")
	switch Emotion(e) {
	case EmotionHappy, EmotionAngry, EmotionShy:
		return Emotion(e)
	default:
		return EmotionNormal
	}
}

// ItemType discriminates the script item variants.
type ItemType string

const (
	TypeSubHead  ItemType = "sub_head"
	TypeDialogue ItemType = "dialogue"
	TypeQuiz     ItemType = "quiz"
	TypeChoice   ItemType = "choice"
)

// DefaultSpeaker is the narrator persona name used when the model
// omits a speaker.
const DefaultSpeaker = "Nana"

// Item is one playable beat. Type selects which fields are meaningful:
//
//	sub_head: Title
//	dialogue: Speaker, Text, Emotion
//	quiz:     Question, Options, CorrectAnswer, FeedbackCorrect,
//	          FeedbackWrong, Explanation, Emotion
//	choice:   Prompt, Options, Explanation, Emotion
type Item struct {
	Type ItemType `json:"type"`

	// sub_head
	Title string `json:"title,omitempty"`

	// dialogue
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text,omitempty"`

	// quiz
	Question        string   `json:"question,omitempty"`
	Options         []string `json:"options,omitempty"`
	CorrectAnswer   string   `json:"correct_answer,omitempty"`
	FeedbackCorrect string   `json:"feedback_correct,omitempty"`
	FeedbackWrong   string   `json:"feedback_wrong,omitempty"`

	// choice
	Prompt string `json:"prompt,omitempty"`

	// quiz + choice
	Explanation string `json:"explanation,omitempty"`

	// all but sub_head
	Emotion Emotion `json:"emotion,omitempty"`
}

// Script is the ordered, non-empty beat sequence generated for one chunk.
type Script []Item
