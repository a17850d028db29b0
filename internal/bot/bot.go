package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/xaenox/intro-matcher/internal/models"
	"github.com/xaenox/intro-matcher/internal/storage"
	"go.uber.org/zap"
)

// Bot is the ingestion half: it watches group messages and enqueues
// candidate introductions for the worker. It never replies in groups.
type Bot struct {
	api      *tgbotapi.BotAPI
	storage  storage.Storage
	minWords int
	logger   *zap.Logger
}

func New(token string, storage storage.Storage, minWords int, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:      api,
		storage:  storage,
		minWords: minWords,
		logger:   logger,
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopping")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.MyChatMember != nil {
		b.handleChatMember(ctx, update.MyChatMember)
		return
	}
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if !isCandidate(message, b.minWords) {
		return
	}

	exists, err := b.storage.HasIntroduction(ctx, message.From.ID, message.Chat.ID)
	if err != nil {
		b.logger.Error("failed to check existing introduction",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
			zap.Int64("chat_id", message.Chat.ID))
		return
	}
	if exists {
		return
	}

	job := &models.Job{
		ID:        uuid.New(),
		ChatID:    message.Chat.ID,
		UserID:    message.From.ID,
		Username:  displayName(message.From),
		Text:      message.Text,
		MessageID: message.MessageID,
	}

	if err := b.storage.EnqueueJob(ctx, job); err != nil {
		b.logger.Error("failed to enqueue job",
			zap.Error(err),
			zap.String("job_id", job.ID.String()),
			zap.Int64("user_id", job.UserID),
			zap.Int64("chat_id", job.ChatID))
		return
	}

	b.logger.Info("job enqueued",
		zap.String("job_id", job.ID.String()),
		zap.Int64("chat_id", job.ChatID),
		zap.String("username", job.Username))
}

// handleChatMember registers chat metadata when the bot is added to a
// group.
func (b *Bot) handleChatMember(ctx context.Context, update *tgbotapi.ChatMemberUpdated) {
	status := update.NewChatMember.Status
	if status != "member" && status != "administrator" {
		return
	}

	chatInfo, err := b.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: update.Chat.ID},
	})
	if err != nil {
		b.logger.Error("failed to get chat info",
			zap.Error(err),
			zap.Int64("chat_id", update.Chat.ID))
		return
	}

	chat := &models.Chat{
		ID:    chatInfo.ID,
		Title: chatInfo.Title,
		Type:  chatInfo.Type,
	}

	if err := b.storage.UpsertChat(ctx, chat); err != nil {
		b.logger.Error("failed to save chat",
			zap.Error(err),
			zap.Int64("chat_id", chat.ID))
		return
	}

	b.logger.Info("chat registered",
		zap.Int64("chat_id", chat.ID),
		zap.String("title", chat.Title))
}
