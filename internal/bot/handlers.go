package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lingoleap/internal/database"
	"github.com/example/lingoleap/internal/excel"
	"github.com/example/lingoleap/internal/mastery"
	"github.com/example/lingoleap/internal/spaced_repetition"
	"github.com/example/lingoleap/pkg/models"
)

// HandleCommand routes a bot command to its handler
func (b *Bot) HandleCommand(message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.handleStart(message)
	case "help":
		return b.handleHelp(message)
	case "add":
		return b.handleAddWord(message)
	case "addstructure":
		return b.handleAddStructure(message)
	case "editword":
		return b.handleEditWord(message)
	case "editstructure":
		return b.handleEditStructure(message)
	case "delword":
		return b.handleDeleteWord(message)
	case "delstructure":
		return b.handleDeleteStructure(message)
	case "list":
		return b.handleListWords(message)
	case "find":
		return b.handleFindWords(message)
	case "remind":
		return b.handleRemind(message)
	case "categories":
		return b.handleListCategories(message)
	case "structures":
		return b.handleListStructures(message)
	case "rename":
		return b.handleRenameCategory(message)
	case "move":
		return b.handleMoveStructure(message)
	case "learn":
		return b.handleLearn(message)
	case "quiz":
		return b.handleQuiz(message)
	case "skip":
		return b.handleSkip(message)
	case "stop":
		return b.handleStop(message)
	case "practice":
		return b.handlePractice(message)
	case "importwords":
		return b.handleImportWords(message)
	case "importstructures":
		return b.handleImportStructures(message)
	default:
		return b.send(message.Chat.ID, "Unknown command. Send /help for the command list.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) error {
	b.mu.Lock()
	b.subscribers[message.Chat.ID] = true
	b.mu.Unlock()

	return b.send(message.Chat.ID,
		"Welcome to LingoLeap! I help you retain vocabulary and sentence structures "+
			"through spaced repetition.\n\n"+
			"Send /add to save a word, /learn to review due words, "+
			"/quiz <category> to practice structures.\n"+
			"Send /help for the full command list.")
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	return b.send(message.Chat.ID,
		"Vocabulary:\n"+
			"/add word | part of speech | definition\n"+
			"/editword word | part of speech | definition\n"+
			"/delword word\n"+
			"/list — all words with review status\n"+
			"/find text — search words and definitions\n"+
			"/learn — review the words that are due\n"+
			"/practice word — write a sentence, get grammar feedback\n\n"+
			"Structures:\n"+
			"/addstructure structure | category | example sentence\n"+
			"/editstructure structure | category | example sentence\n"+
			"/delstructure structure\n"+
			"/categories — your structure sets\n"+
			"/structures [category] — items of one set, or the full ordered list\n"+
			"/quiz category — fill-the-example quiz\n"+
			"/rename old name | new name\n"+
			"/move from | to — reorder the structure list\n\n"+
			"During a quiz: send your answer as a message, /skip if you don't "+
			"know, /stop to leave the session.\n\n"+
			"Import:\n"+
			"/importwords path.xlsx\n"+
			"/importstructures path.xlsx\n\n"+
			"/remind — subscribe to due-review reminders and check now")
}

// splitFields splits pipe-separated command arguments
func splitFields(args string, n int) []string {
	parts := strings.SplitN(args, "|", n)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (b *Bot) handleAddWord(message *tgbotapi.Message) error {
	parts := splitFields(message.CommandArguments(), 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return b.send(message.Chat.ID, "Usage: /add word | part of speech | definition")
	}

	word := models.VocabularyWord{Word: parts[0], PartOfSpeech: parts[1], Definition: parts[2]}
	if err := b.vocab.Create(&word); err != nil {
		return err
	}
	return b.send(message.Chat.ID,
		fmt.Sprintf("Added %q (%s). It is due for review now — send /learn to start.", word.Word, word.PartOfSpeech))
}

func (b *Bot) handleAddStructure(message *tgbotapi.Message) error {
	parts := splitFields(message.CommandArguments(), 3)
	if len(parts) < 3 || parts[0] == "" {
		return b.send(message.Chat.ID, "Usage: /addstructure structure | category | example sentence")
	}

	s := models.Structure{Structure: parts[0], Category: parts[1], Example: parts[2]}
	if err := b.structure.Create(&s); err != nil {
		return err
	}
	return b.send(message.Chat.ID,
		fmt.Sprintf("Added %q to the %q set.", s.Structure, s.DisplayCategory()))
}

func (b *Bot) handleEditWord(message *tgbotapi.Message) error {
	parts := splitFields(message.CommandArguments(), 3)
	if len(parts) < 3 || parts[0] == "" {
		return b.send(message.Chat.ID, "Usage: /editword word | part of speech | definition")
	}

	word, err := b.findWord(parts[0])
	if err != nil {
		return b.send(message.Chat.ID, fmt.Sprintf("I don't know the word %q.", parts[0]))
	}

	// Only the text fields change here; the scheduling fields belong to the
	// review scheduler.
	word.PartOfSpeech = parts[1]
	word.Definition = parts[2]
	if err := b.vocab.Update(word); err != nil {
		return err
	}
	return b.send(message.Chat.ID, fmt.Sprintf("Updated %q.", word.Word))
}

func (b *Bot) handleEditStructure(message *tgbotapi.Message) error {
	parts := splitFields(message.CommandArguments(), 3)
	if len(parts) < 3 || parts[0] == "" {
		return b.send(message.Chat.ID, "Usage: /editstructure structure | category | example sentence")
	}

	s, err := b.findStructure(parts[0])
	if err != nil {
		return b.send(message.Chat.ID, fmt.Sprintf("I don't know the structure %q.", parts[0]))
	}

	s.Category = parts[1]
	s.Example = parts[2]
	if err := b.structure.Update(s); err != nil {
		return err
	}
	return b.send(message.Chat.ID, fmt.Sprintf("Updated %q.", s.Structure))
}

func (b *Bot) handleDeleteWord(message *tgbotapi.Message) error {
	text := strings.TrimSpace(message.CommandArguments())
	if text == "" {
		return b.send(message.Chat.ID, "Usage: /delword word")
	}
	word, err := b.findWord(text)
	if err != nil {
		return b.send(message.Chat.ID, fmt.Sprintf("I don't know the word %q.", text))
	}
	if err := b.vocab.Delete(word.ID); err != nil {
		return err
	}
	return b.send(message.Chat.ID, fmt.Sprintf("Deleted %q.", word.Word))
}

func (b *Bot) handleDeleteStructure(message *tgbotapi.Message) error {
	text := strings.TrimSpace(message.CommandArguments())
	if text == "" {
		return b.send(message.Chat.ID, "Usage: /delstructure structure")
	}
	s, err := b.findStructure(text)
	if err != nil {
		return b.send(message.Chat.ID, fmt.Sprintf("I don't know the structure %q.", text))
	}
	if err := b.structure.Delete(s.ID); err != nil {
		return err
	}
	return b.send(message.Chat.ID, fmt.Sprintf("Deleted %q.", s.Structure))
}

func (b *Bot) handleListWords(message *tgbotapi.Message) error {
	words, err := b.vocab.GetAll()
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return b.send(message.Chat.ID, "No vocabulary words yet. Send /add to get started!")
	}

	spaced_repetition.SortByNextReview(words)
	now := time.Now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your vocabulary (%d words):\n\n", len(words))
	for i := range words {
		w := &words[i]
		fmt.Fprintf(&sb, "%s (%s) — %s, next review %s\n",
			w.Word, w.PartOfSpeech, spaced_repetition.LabelFor(w.SRSLevel), formatReviewDate(w, now))
	}
	return b.send(message.Chat.ID, sb.String())
}

func (b *Bot) handleFindWords(message *tgbotapi.Message) error {
	query := strings.TrimSpace(message.CommandArguments())
	if query == "" {
		return b.send(message.Chat.ID, "Usage: /find text (matches word or definition)")
	}
	words, err := b.vocab.Search(query)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return b.send(message.Chat.ID, fmt.Sprintf("No words match %q.", query))
	}

	now := time.Now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d match(es) for %q:\n\n", len(words), query)
	for i := range words {
		w := &words[i]
		fmt.Fprintf(&sb, "%s (%s) — %s, next review %s\n",
			w.Word, w.PartOfSpeech, spaced_repetition.LabelFor(w.SRSLevel), formatReviewDate(w, now))
	}
	return b.send(message.Chat.ID, sb.String())
}

func (b *Bot) handleRemind(message *tgbotapi.Message) error {
	if b.scheduler == nil {
		return b.send(message.Chat.ID, "Reminders are disabled.")
	}
	b.mu.Lock()
	b.subscribers[message.Chat.ID] = true
	b.mu.Unlock()

	if err := b.scheduler.RunManualCheck(); err != nil {
		return err
	}
	return b.send(message.Chat.ID, "Checked. You'll get a message whenever reviews are due.")
}

func (b *Bot) handleListCategories(message *tgbotapi.Message) error {
	structures, err := b.structure.GetAll()
	if err != nil {
		return err
	}
	if len(structures) == 0 {
		return b.send(message.Chat.ID, "No structure sets yet. Send /addstructure to create one.")
	}

	names, err := b.structure.Categories()
	if err != nil {
		return err
	}
	grouped := models.GroupByCategory(structures)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your structure sets (%d structures in %d sets):\n\n", len(structures), len(names))
	for _, name := range names {
		items := grouped[name]
		mastered := 0
		for i := range items {
			if mastery.IsMastered(items[i].ConsecutiveCorrect) {
				mastered++
			}
		}
		fmt.Fprintf(&sb, "%s — %d items, %d mastered\n", name, len(items), mastered)
	}
	sb.WriteString("\nSend /quiz <category> to practice a set.")
	return b.send(message.Chat.ID, sb.String())
}

func (b *Bot) handleListStructures(message *tgbotapi.Message) error {
	category := strings.TrimSpace(message.CommandArguments())

	// Without a category the full list is shown; its numbering is what
	// /move positions refer to.
	if category == "" {
		all, err := b.structure.GetAll()
		if err != nil {
			return err
		}
		if len(all) == 0 {
			return b.send(message.Chat.ID, "No structures yet. Send /addstructure to create one.")
		}
		var sb strings.Builder
		sb.WriteString("All structures (positions for /move):\n\n")
		writeStructureList(&sb, all, true)
		return b.send(message.Chat.ID, sb.String())
	}

	items, err := b.structure.GetByCategory(category)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.send(message.Chat.ID, fmt.Sprintf("No structures in the %q set.", category))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n\n", category)
	writeStructureList(&sb, items, false)
	return b.send(message.Chat.ID, sb.String())
}

func writeStructureList(sb *strings.Builder, items []models.Structure, withCategory bool) {
	for i := range items {
		s := &items[i]
		badge := ""
		if mastery.IsMastered(s.ConsecutiveCorrect) {
			badge = " ✅"
		}
		if withCategory {
			fmt.Fprintf(sb, "%d. %s (%s)%s\n   \"%s\"\n", i+1, s.Structure, s.DisplayCategory(), badge, s.Example)
		} else {
			fmt.Fprintf(sb, "%d. %s%s\n   \"%s\"\n", i+1, s.Structure, badge, s.Example)
		}
	}
}

func (b *Bot) handleRenameCategory(message *tgbotapi.Message) error {
	parts := splitFields(message.CommandArguments(), 2)
	if len(parts) < 2 || parts[0] == "" {
		return b.send(message.Chat.ID, "Usage: /rename old name | new name")
	}

	err := b.structure.RenameCategory(parts[0], parts[1])
	switch err {
	case nil:
		return b.send(message.Chat.ID, fmt.Sprintf("Renamed %q to %q.", parts[0], strings.TrimSpace(parts[1])))
	case database.ErrEmptyCategoryName:
		return b.send(message.Chat.ID, "Category name cannot be empty.")
	case database.ErrCategoryNameConflict:
		return b.send(message.Chat.ID, "This category name already exists.")
	default:
		return err
	}
}

func (b *Bot) handleMoveStructure(message *tgbotapi.Message) error {
	parts := splitFields(message.CommandArguments(), 2)
	if len(parts) < 2 {
		return b.send(message.Chat.ID, "Usage: /move from | to (positions from /structures with no category)")
	}
	from, err1 := strconv.Atoi(parts[0])
	to, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return b.send(message.Chat.ID, "Positions must be numbers.")
	}
	if err := b.structure.Move(from-1, to-1); err != nil {
		return err
	}
	return b.send(message.Chat.ID, "Reordered.")
}

func (b *Bot) handlePractice(message *tgbotapi.Message) error {
	if !b.config.GrammarEnabled {
		return b.send(message.Chat.ID, "Sentence practice is not available: no grammar service is configured.")
	}
	text := strings.TrimSpace(message.CommandArguments())
	if text == "" {
		return b.send(message.Chat.ID, "Usage: /practice word")
	}
	word, err := b.findWord(text)
	if err != nil {
		return b.send(message.Chat.ID, fmt.Sprintf("I don't know the word %q.", text))
	}

	st := b.state(message.Chat.ID)
	b.mu.Lock()
	st.practiceWord = word.Word
	b.mu.Unlock()

	return b.send(message.Chat.ID,
		fmt.Sprintf("Write a sentence using the word %q and I'll check the grammar.", word.Word))
}

func (b *Bot) handleImportWords(message *tgbotapi.Message) error {
	path := strings.TrimSpace(message.CommandArguments())
	if path == "" {
		return b.send(message.Chat.ID, "Usage: /importwords path.xlsx (columns: word, part of speech, definition)")
	}
	result, err := excel.ImportWords(excel.DefaultImportConfig(path))
	if err != nil {
		return b.send(message.Chat.ID, fmt.Sprintf("Import failed: %v", err))
	}
	return b.send(message.Chat.ID, formatImportResult(result))
}

func (b *Bot) handleImportStructures(message *tgbotapi.Message) error {
	path := strings.TrimSpace(message.CommandArguments())
	if path == "" {
		return b.send(message.Chat.ID, "Usage: /importstructures path.xlsx (columns: structure, category, example)")
	}
	result, err := excel.ImportStructures(excel.DefaultImportConfig(path))
	if err != nil {
		return b.send(message.Chat.ID, fmt.Sprintf("Import failed: %v", err))
	}
	return b.send(message.Chat.ID, formatImportResult(result))
}

func formatImportResult(result *excel.ImportResult) string {
	text := fmt.Sprintf("Processed %d rows: %d created, %d skipped.",
		result.TotalProcessed, result.Created, result.Skipped)
	if len(result.Errors) > 0 {
		text += fmt.Sprintf(" %d rows failed:\n%s", len(result.Errors), strings.Join(result.Errors, "\n"))
	}
	return text
}

// findWord looks a word up by its exact text, case-insensitively
func (b *Bot) findWord(text string) (*models.VocabularyWord, error) {
	words, err := b.vocab.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range words {
		if strings.EqualFold(words[i].Word, text) {
			return &words[i], nil
		}
	}
	return nil, fmt.Errorf("word %q not found", text)
}

// findStructure looks a structure up by its exact text, case-insensitively
func (b *Bot) findStructure(text string) (*models.Structure, error) {
	structures, err := b.structure.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range structures {
		if strings.EqualFold(structures[i].Structure, text) {
			return &structures[i], nil
		}
	}
	return nil, fmt.Errorf("structure %q not found", text)
}

// formatReviewDate renders a word's next review time relative to now
func formatReviewDate(w *models.VocabularyWord, now time.Time) string {
	next, ok := w.NextReviewTime()
	if !ok || !next.After(now) {
		return "due now"
	}
	mins := int(next.Sub(now).Round(time.Minute) / time.Minute)
	if mins < 60 {
		return fmt.Sprintf("in %d min", mins)
	}
	hours := (mins + 30) / 60
	if hours < 24 {
		return fmt.Sprintf("in %d hour(s)", hours)
	}
	return "on " + next.Format("2006-01-02")
}
