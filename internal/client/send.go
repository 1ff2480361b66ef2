package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	perrors "github.com/mzyui/poe-go/internal/errors"
	"github.com/mzyui/poe-go/internal/files"
	"github.com/mzyui/poe-go/internal/queries"
)

// maxUploadBytes caps the combined size of one message's attachments.
const maxUploadBytes = 350_000_000

// SendMessageData describes one outgoing message.
type SendMessageData struct {
	// Bot is the target bot's handle. Empty selects the account's default
	// bot.
	Bot string
	// Message is the prompt text.
	Message string
	// ChatID continues an existing conversation; zero starts a new one.
	ChatID int64
	// Files are optional attachments.
	Files []files.Input
}

// SendMessage sends a message and returns the context reconstructing the
// assistant's reply. The push channel is connected first so no reply event
// can be missed.
func (c *Client) SendMessage(ctx context.Context, data SendMessageData) (*MessageContext, error) {
	bot := data.Bot
	if bot == "" {
		settings, err := c.Settings(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving default bot: %w", err)
		}
		bot = settings.DefaultBot.DisplayName
	}

	info, err := c.BotInfo(ctx, bot)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("bot %s: %w", bot, perrors.ErrNotFound)
	}

	fs, err := files.Prepare(ctx, c.http, data.Files)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, f := range fs {
		total += f.Size()
	}
	if total > maxUploadBytes {
		return nil, perrors.NewAPIError("attachments too large: %d bytes", total)
	}
	attachments := make([]string, len(fs))
	for i := range fs {
		attachments[i] = fmt.Sprintf("file%d", i+1)
	}

	path := queries.PathGql
	if len(fs) > 0 {
		path = queries.PathGqlUpload
	}

	if err := c.ensureChannel(ctx); err != nil {
		return nil, err
	}

	vars := map[string]any{
		"chatId":          nil,
		"bot":             bot,
		"query":           data.Message,
		"shouldFetchChat": true,
		"source": map[string]any{
			"sourceType": "chat_input",
			"chatInputMetadata": map[string]any{
				"useVoiceRecord": false,
			},
		},
		"clientNonce":                   nonce(16),
		"sdid":                          c.sdid,
		"attachments":                   attachments,
		"existingMessageAttachmentsIds": []int64{},
		"messagePointsDisplayPrice":     info.MessagePointLimit.DisplayMessagePointPrice,
	}
	if data.ChatID != 0 {
		vars["chatId"] = data.ChatID
	}

	raw, err := c.execute(ctx, request{
		op:    queries.SendMessageMutation,
		path:  path,
		vars:  vars,
		files: fs,
	})
	if err != nil {
		return nil, err
	}

	body := gjson.ParseBytes(raw)
	if !body.Get("data").Exists() && body.Get("errors").Exists() {
		return nil, fmt.Errorf("bot %s: %w", bot, perrors.ErrNotFound)
	}
	edge := body.Get("data.messageEdgeCreate")
	if !edge.Exists() {
		return nil, perrors.NewAPIError("sending message to %s failed", bot)
	}

	if status := edge.Get("status").String(); status != "success" {
		if msg := edge.Get("statusMessage").String(); msg != "" {
			return nil, perrors.NewAPIError("%s: %s", status, msg)
		}
		return nil, perrors.NewAPIError("sending message to %s failed with status %s", bot, status)
	}
	for _, f := range fs {
		c.logger.Info().Str("file", f.Name).Msg("attachment uploaded")
	}

	var chat Chat
	if err := json.Unmarshal([]byte(edge.Get("chat").Raw), &chat); err != nil {
		return nil, &perrors.ParseError{Field: "messageEdgeCreate.chat"}
	}
	userMessage, err := messageNode(edge.Get("message"))
	if err != nil {
		return nil, err
	}
	botMessage, err := messageNode(edge.Get("botMessage"))
	if err != nil {
		return nil, err
	}
	return newMessageContext(c, chat, userMessage, botMessage), nil
}

// RetryMessage regenerates the last assistant reply of a conversation.
func (c *Client) RetryMessage(ctx context.Context, chatCode string) (*MessageContext, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.ChatPageQuery,
		vars: map[string]any{"chatCode": chatCode},
	})
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(raw).Get("data.chatOfCode")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, fmt.Errorf("chat %s: %w", chatCode, perrors.ErrNotFound)
	}
	price := data.Get("defaultBotObject.messagePointLimit.displayMessagePointPrice").Int()

	var messages []Message
	for _, edge := range data.Get("messagesConnection.edges").Array() {
		node := edge.Get("node")
		if !node.Exists() {
			continue
		}
		var m Message
		if err := json.Unmarshal([]byte(node.Raw), &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	if len(messages) < 2 {
		return nil, perrors.NewAPIError("chat %s has no exchange to retry", chatCode)
	}
	userMessage := messages[len(messages)-2]
	botMessage := messages[len(messages)-1]

	var chat Chat
	if err := json.Unmarshal([]byte(data.Raw), &chat); err != nil {
		return nil, &perrors.ParseError{Field: "chatOfCode"}
	}

	if err := c.ensureChannel(ctx); err != nil {
		return nil, err
	}

	raw, err = c.execute(ctx, request{
		op: queries.RegenerateMessageMutation,
		vars: map[string]any{
			"messageId":                 botMessage.MessageID,
			"messagePointsDisplayPrice": price,
		},
	})
	if err != nil {
		return nil, err
	}

	regen := gjson.ParseBytes(raw).Get("data.messageRegenerate")
	if !regen.Exists() {
		return nil, perrors.NewAPIError("retrying last message of chat %s failed", chatCode)
	}
	if msg := regen.Get("statusMessage").String(); msg != "" {
		return nil, perrors.NewAPIError("%s: %s", regen.Get("status").String(), msg)
	}
	return newMessageContext(c, chat, userMessage, botMessage), nil
}

// ensureChannel connects the push channel if no live connection exists.
func (c *Client) ensureChannel(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	return c.ConnectChannel(ctx)
}

// messageNode decodes an edge-wrapped message record.
func messageNode(edge gjson.Result) (Message, error) {
	node := edge.Get("node")
	if !node.Exists() {
		return Message{}, &perrors.ParseError{Field: "message.node"}
	}
	var m Message
	if err := json.Unmarshal([]byte(node.Raw), &m); err != nil {
		return Message{}, &perrors.ParseError{Field: "message.node"}
	}
	return m, nil
}
