package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// isCandidate applies the structural filter: plain text from a human,
// not a reply, and at least minWords whitespace-delimited words. The
// per-user uniqueness check against the store happens separately.
func isCandidate(message *tgbotapi.Message, minWords int) bool {
	if message == nil || message.Text == "" {
		return false
	}
	if message.From == nil || message.From.IsBot {
		return false
	}
	if message.ReplyToMessage != nil {
		return false
	}
	if !message.Chat.IsGroup() && !message.Chat.IsSuperGroup() {
		return false
	}
	return len(strings.Fields(message.Text)) >= minWords
}

// displayName picks the best available label for a user: the @handle,
// else the first name, else a synthetic id<user_id>.
func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	return fmt.Sprintf("id%d", user.ID)
}
