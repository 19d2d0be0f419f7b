package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sailorhq/speaknote/internal/query"
	"github.com/sailorhq/speaknote/internal/storage"
)

// Bot is an optional text front-end: incoming messages run the same query
// pipeline as spoken utterances and the narration is sent back as the reply.
type Bot struct {
	api     *tgbotapi.BotAPI
	service *query.Service
	notes   storage.NoteStorage
	logger  *zap.Logger
}

func New(token string, service *query.Service, notes storage.NoteStorage, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:     api,
		service: service,
		notes:   notes,
		logger:  logger,
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	// Messages are handled sequentially: the remote protocol supports only
	// one active run per conversation thread.
	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	narration := b.service.PerformQuery(ctx, message.Text)
	b.sendMessage(message.Chat.ID, narration)
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "notes":
		b.handleNotes(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to SpeakNote! 📝
Tell me what to remember and I'll file it as a note, or ask me what you have noted.

Examples:
- buy two eggs from Costco
- what do I need from Costco
- mark buy eggs as done

Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/notes - List all saved notes

Anything else you send is treated as a note-taking request or a question
about your notes.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleNotes(message *tgbotapi.Message) {
	notes, err := b.notes.ListNotes()
	if err != nil {
		b.logger.Error("Failed to list notes",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendMessage(message.Chat.ID, "Sorry, failed to retrieve your notes. Please try again later.")
		return
	}

	if len(notes) == 0 {
		b.sendMessage(message.Chat.ID, "You have no notes yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your notes:\n")
	for _, note := range notes {
		sb.WriteString(fmt.Sprintf("• %s [%s, %s]", note.Subject, note.Category, note.Status))
		if note.Deadline != "" {
			sb.WriteString(fmt.Sprintf(" due %s", note.Deadline))
		}
		sb.WriteString("\n")
	}
	b.sendMessage(message.Chat.ID, sb.String())
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
