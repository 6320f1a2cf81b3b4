// Package bot is the Telegram interface of the application: it turns chat
// messages into quiz session transitions and record mutations.
package bot

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lingoleap/internal/ai"
	"github.com/example/lingoleap/internal/database"
	"github.com/example/lingoleap/internal/quiz"
	"github.com/example/lingoleap/internal/scheduler"
)

// chatState holds the per-chat conversation state. Only one quiz session is
// active per chat, and the advance timer belongs to that session.
type chatState struct {
	vocabSession  *quiz.VocabularySession
	structSession *quiz.StructureSession
	timer         quiz.AdvanceTimer
	// practiceWord is set while the chat owes us a practice sentence
	practiceWord string
}

// Bot represents the Telegram bot application
type Bot struct {
	api       *tgbotapi.BotAPI
	config    *Config
	vocab     *database.VocabularyRepository
	structure *database.StructureRepository
	grammar   *ai.GrammarChecker
	scheduler *scheduler.Scheduler
	rnd       *rand.Rand

	mu          sync.Mutex
	chats       map[int64]*chatState
	subscribers map[int64]bool
}

// New creates a new bot instance
func New() (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	if database.DB == nil {
		return nil, fmt.Errorf("database connection is not established")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram API client: %w", err)
	}

	config := DefaultConfig()

	var grammar *ai.GrammarChecker
	if config.GrammarEnabled {
		grammar, err = ai.New()
		if err != nil {
			log.Printf("Warning: grammar checker disabled: %v", err)
			config.GrammarEnabled = false
		}
	}

	b := &Bot{
		api:         api,
		config:      config,
		vocab:       database.NewVocabularyRepository(),
		structure:   database.NewStructureRepository(),
		grammar:     grammar,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		chats:       make(map[int64]*chatState),
		subscribers: make(map[int64]bool),
	}

	if config.SchedulerEnabled {
		b.scheduler = scheduler.New(b)
	}

	return b, nil
}

// Start runs the update loop until the context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	if b.scheduler != nil {
		b.scheduler.Start()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			if update.Message.IsCommand() {
				if err := b.HandleCommand(update.Message); err != nil {
					log.Printf("Error handling command %q: %v", update.Message.Command(), err)
				}
			} else if err := b.HandleText(update.Message); err != nil {
				log.Printf("Error handling message: %v", err)
			}
		}
	}
}

// Stop shuts the bot down, cancelling every pending session timer so no
// queued advance can fire into a closed session
func (b *Bot) Stop(ctx context.Context) error {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}

	b.mu.Lock()
	for _, state := range b.chats {
		state.timer.Cancel()
	}
	b.chats = make(map[int64]*chatState)
	b.mu.Unlock()

	b.api.StopReceivingUpdates()
	return nil
}

// SendDueReminder notifies every subscribed chat that reviews are due.
// It implements scheduler.Notifier.
func (b *Bot) SendDueReminder(dueCount int) error {
	b.mu.Lock()
	chatIDs := make([]int64, 0, len(b.subscribers))
	for id := range b.subscribers {
		chatIDs = append(chatIDs, id)
	}
	b.mu.Unlock()

	text := fmt.Sprintf("You have %d word(s) due for review. Send /learn to start.", dueCount)
	for _, chatID := range chatIDs {
		if err := b.send(chatID, text); err != nil {
			log.Printf("Error sending reminder to chat %d: %v", chatID, err)
		}
	}
	return nil
}

// state returns the chat's conversation state, creating it if needed
func (b *Bot) state(chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.chats[chatID]
	if !ok {
		st = &chatState{}
		b.chats[chatID] = st
	}
	return st
}

// endSession cancels the chat's pending timer and drops any active session
func (b *Bot) endSession(st *chatState) {
	st.timer.Cancel()
	st.vocabSession = nil
	st.structSession = nil
	st.practiceWord = ""
}

// send delivers a plain text message to a chat
func (b *Bot) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
