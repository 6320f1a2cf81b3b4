package models

// GrammarFeedback is the structured verdict returned by the grammar-check service
type GrammarFeedback struct {
	IsCorrect         bool   `json:"isCorrect"`
	Feedback          string `json:"feedback"`
	CorrectedSentence string `json:"correctedSentence"`
}
