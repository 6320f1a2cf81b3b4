package bot

import (
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lingoleap/internal/diff"
	"github.com/example/lingoleap/internal/mastery"
	"github.com/example/lingoleap/internal/quiz"
	"github.com/example/lingoleap/internal/spaced_repetition"
	"github.com/example/lingoleap/pkg/models"
)

func (b *Bot) handleLearn(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	st := b.state(chatID)

	// A storage fault degrades to an empty set so the learner just sees
	// "nothing due" instead of a dead command
	words := b.vocab.GetAllOrEmpty()
	due := spaced_repetition.DueWords(words, time.Now())
	if len(due) == 0 {
		return b.send(chatID, "Nothing is due right now. Check /list for your next review times.")
	}
	if len(due) > b.config.WordsPerSession {
		spaced_repetition.SortByNextReview(due)
		due = due[:b.config.WordsPerSession]
	}

	b.mu.Lock()
	b.endSession(st)
	st.vocabSession = quiz.NewVocabularySession(due, b.rnd)
	session := st.vocabSession
	b.mu.Unlock()

	if err := b.send(chatID, fmt.Sprintf("Review time! %d word(s) are due. Send /stop to leave at any point.", session.Len())); err != nil {
		return err
	}
	return b.askVocabQuestion(chatID, session)
}

func (b *Bot) askVocabQuestion(chatID int64, session *quiz.VocabularySession) error {
	word := session.Current()
	if word == nil {
		return nil
	}
	return b.send(chatID, fmt.Sprintf("%d/%d  Which word is this?\n\n%s (%s)",
		session.Index()+1, session.Len(), word.Definition, word.PartOfSpeech))
}

func (b *Bot) handleQuiz(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	category := strings.TrimSpace(message.CommandArguments())
	if category == "" {
		return b.send(chatID, "Usage: /quiz category (see /categories)")
	}

	all := b.structure.GetAllOrEmpty()
	var items []models.Structure
	for i := range all {
		if all[i].DisplayCategory() == category {
			items = append(items, all[i])
		}
	}
	if len(items) == 0 {
		return b.send(chatID, fmt.Sprintf("No structures in the %q set.", category))
	}

	mode := quiz.ModeNormal
	queue := quiz.Eligible(items)
	if mastery.CategoryMastered(items) {
		// A fully mastered set re-runs every quizzable item from scratch
		mode = quiz.ModePracticeAgain
		queue = queue[:0]
		for i := range items {
			if items[i].HasExample() {
				queue = append(queue, items[i])
			}
		}
	}
	if len(queue) == 0 {
		return b.send(chatID, fmt.Sprintf("The %q set has no structures with example sentences to quiz.", category))
	}

	st := b.state(chatID)
	b.mu.Lock()
	b.endSession(st)
	st.structSession = quiz.NewStructureSession(category, queue, mode)
	session := st.structSession
	b.mu.Unlock()

	intro := fmt.Sprintf("Quiz on %q: %d question(s). Type each example sentence from its structure hint. /skip if stuck, /stop to leave.", category, session.Len())
	if mode == quiz.ModePracticeAgain {
		intro = fmt.Sprintf("You have mastered %q — let's practice it again! %d question(s). Finishing the round restarts the set's progress.", category, session.Len())
	}
	if err := b.send(chatID, intro); err != nil {
		return err
	}
	return b.askStructureQuestion(chatID, session)
}

func (b *Bot) askStructureQuestion(chatID int64, session *quiz.StructureSession) error {
	item := session.Current()
	if item == nil {
		return nil
	}
	return b.send(chatID, fmt.Sprintf("%d/%d (%d left)  Write the example sentence for:\n\n%s",
		session.Index()+1, session.Len(), session.Remaining(), item.Structure))
}

func (b *Bot) handleSkip(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	st := b.state(chatID)

	b.mu.Lock()
	session := st.structSession
	b.mu.Unlock()
	if session == nil {
		return b.send(chatID, "No structure quiz is running. Start one with /quiz <category>.")
	}

	// Skip is accepted while the question is open, including the retry
	// window after a miss. It fails only when the session is finished or
	// an advance is already pending.
	result, err := session.Skip()
	if err != nil {
		return nil
	}
	if result.Updated != nil {
		if err := b.structure.UpdateMastery(result.Updated); err != nil {
			return err
		}
	}
	if err := b.send(chatID, fmt.Sprintf("Skipped. The answer was:\n\n\"%s\"", result.Structure.Example)); err != nil {
		return err
	}
	b.scheduleStructureAdvance(chatID, st, session, result.AdvanceAfter)
	return nil
}

func (b *Bot) handleStop(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	st := b.state(chatID)

	b.mu.Lock()
	hadSession := st.vocabSession != nil || st.structSession != nil || st.practiceWord != ""
	b.endSession(st)
	b.mu.Unlock()

	if !hadSession {
		return b.send(chatID, "Nothing to stop.")
	}
	return b.send(chatID, "Session stopped. Your progress so far has been kept.")
}

// HandleText routes a non-command message to whatever conversation is open
// in the chat: a pending practice sentence, or an active quiz session.
func (b *Bot) HandleText(message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	st := b.state(chatID)

	b.mu.Lock()
	practiceWord := st.practiceWord
	vocabSession := st.vocabSession
	structSession := st.structSession
	b.mu.Unlock()

	switch {
	case practiceWord != "":
		return b.handlePracticeSentence(chatID, st, practiceWord, message.Text)
	case vocabSession != nil:
		return b.handleVocabAnswer(chatID, st, vocabSession, message.Text)
	case structSession != nil:
		return b.handleStructureAnswer(chatID, st, structSession, message.Text)
	default:
		return b.send(chatID, "I wasn't expecting an answer. Send /help to see what I can do.")
	}
}

func (b *Bot) handleVocabAnswer(chatID int64, st *chatState, session *quiz.VocabularySession, answer string) error {
	result, err := session.Submit(answer, time.Now())
	if err != nil {
		// Done or feedback window; drop the input
		return nil
	}

	if err := b.vocab.UpdateReview(&result.Updated); err != nil {
		return err
	}

	var feedback string
	if result.Correct {
		feedback = fmt.Sprintf("✅ Correct! %q moves to %s; next review %s.",
			result.Word.Word,
			spaced_repetition.LabelFor(result.Updated.SRSLevel),
			formatReviewDate(&result.Updated, time.Now()))
	} else {
		feedback = fmt.Sprintf("❌ Not quite. The word was %q. It drops to %s and comes back %s.",
			result.Word.Word,
			spaced_repetition.LabelFor(result.Updated.SRSLevel),
			formatReviewDate(&result.Updated, time.Now()))
	}
	if err := b.send(chatID, feedback); err != nil {
		return err
	}

	st.timer.Schedule(result.AdvanceAfter, func() {
		b.mu.Lock()
		if st.vocabSession != session {
			b.mu.Unlock()
			return
		}
		more := session.Advance()
		if !more {
			st.vocabSession = nil
		}
		b.mu.Unlock()

		if more {
			if err := b.askVocabQuestion(chatID, session); err != nil {
				b.logSendError(chatID, err)
			}
			return
		}
		stats := session.Stats()
		if err := b.send(chatID, fmt.Sprintf("Review complete! %d correct, %d incorrect out of %d.",
			stats.Correct, stats.Incorrect, session.Len())); err != nil {
			b.logSendError(chatID, err)
		}
	})
	return nil
}

func (b *Bot) handleStructureAnswer(chatID int64, st *chatState, session *quiz.StructureSession, answer string) error {
	// A new message after a miss replaces the previous attempt
	session.EditInput()

	result, err := session.Submit(answer)
	if err != nil {
		return nil
	}
	if result.Updated != nil {
		if err := b.structure.UpdateMastery(result.Updated); err != nil {
			return err
		}
	}

	switch result.Phase {
	case quiz.PhaseCorrect:
		text := "✅ Correct!"
		if !result.FirstAttempt {
			text = "✅ Got it this time. On to the next one."
		}
		if err := b.send(chatID, text); err != nil {
			return err
		}
		b.scheduleStructureAdvance(chatID, st, session, result.AdvanceAfter)
		return nil
	default:
		text := fmt.Sprintf("❌ Not quite:\n\n%s\n\nEdit your answer and try again, or /skip.", renderDiff(result.Diff))
		return b.send(chatID, text)
	}
}

func (b *Bot) scheduleStructureAdvance(chatID int64, st *chatState, session *quiz.StructureSession, after time.Duration) {
	st.timer.Schedule(after, func() {
		b.mu.Lock()
		if st.structSession != session {
			b.mu.Unlock()
			return
		}
		more := session.Advance()
		if !more {
			st.structSession = nil
		}
		b.mu.Unlock()

		if more {
			if err := b.askStructureQuestion(chatID, session); err != nil {
				b.logSendError(chatID, err)
			}
			return
		}
		if err := b.finishStructureSession(chatID, session); err != nil {
			b.logSendError(chatID, err)
		}
	})
}

func (b *Bot) finishStructureSession(chatID int64, session *quiz.StructureSession) error {
	if session.NeedsReset() {
		if err := b.structure.ResetCategoryProgress(session.Category()); err != nil {
			return err
		}
	}

	stats := session.Stats()
	text := fmt.Sprintf("Quiz complete! %d correct, %d incorrect out of %d.",
		stats.Correct, stats.Incorrect, session.Len())
	if session.NeedsReset() {
		text += fmt.Sprintf("\nThe %q set starts fresh: every counter is back to zero.", session.Category())
	}
	return b.send(chatID, text)
}

func (b *Bot) handlePracticeSentence(chatID int64, st *chatState, word, sentence string) error {
	b.mu.Lock()
	st.practiceWord = ""
	b.mu.Unlock()

	if !strings.Contains(strings.ToLower(sentence), strings.ToLower(word)) {
		return b.send(chatID, fmt.Sprintf("Your sentence doesn't use the word %q. Send /practice %s to try again.", word, word))
	}

	feedback := b.grammar.Check(sentence, word)
	if feedback.IsCorrect {
		return b.send(chatID, "✅ "+feedback.Feedback)
	}
	text := "❌ " + feedback.Feedback
	if feedback.CorrectedSentence != "" && feedback.CorrectedSentence != sentence {
		text += fmt.Sprintf("\n\nSuggested: \"%s\"", feedback.CorrectedSentence)
	}
	return b.send(chatID, text)
}

// renderDiff flattens an alignment into plain text markers: missing words
// appear as [+word+], extra words as [-word-]. Plain text avoids Telegram
// markdown escaping of the learner's own input.
func renderDiff(tokens []diff.Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch t.Op {
		case diff.OpRemoved:
			parts = append(parts, "[-"+t.Text+"-]")
		case diff.OpAdded:
			parts = append(parts, "[+"+t.Text+"+]")
		default:
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, " ")
}

func (b *Bot) logSendError(chatID int64, err error) {
	if err != nil {
		log.Printf("Error in chat %d: %v", chatID, err)
	}
}
