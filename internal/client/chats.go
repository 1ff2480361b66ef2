package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/tidwall/gjson"

	perrors "github.com/mzyui/poe-go/internal/errors"
	"github.com/mzyui/poe-go/internal/queries"
)

// botNickname extracts the bot handle embedded in a shared-conversation page.
var botNickname = regexp.MustCompile(`nickname":"([^"]+)`)

// SetChatTitle renames a conversation.
func (c *Client) SetChatTitle(ctx context.Context, chatID int64, title string) (bool, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.ChatSetTitleMutation,
		vars: map[string]any{"chatId": chatID, "title": title},
	})
	if err != nil {
		return false, err
	}
	data := gjson.ParseBytes(raw).Get("data.chatSetTitle")
	if !data.Exists() {
		return false, nil
	}
	if msg := data.Get("statusMessage").String(); msg != "" {
		return false, perrors.NewAPIError("%s: %s", data.Get("status").String(), msg)
	}
	return true, nil
}

// SetContextOptimization toggles the backend's context-optimization flag for
// a conversation.
func (c *Client) SetContextOptimization(ctx context.Context, chatID int64, enabled bool) (bool, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.ChatSetContextOptimization,
		vars: map[string]any{"chatId": chatID, "isContextOptimizationOn": enabled},
	})
	if err != nil {
		return false, err
	}
	return gjson.ParseBytes(raw).Get("data.chatSetContextOptimization").Exists(), nil
}

// SetChatPointLimit caps the per-message point price of one conversation.
func (c *Client) SetChatPointLimit(ctx context.Context, chatID int64, limit int64) (bool, error) {
	raw, err := c.execute(ctx, request{
		op: queries.SetMessagePointPriceThreshold,
		vars: map[string]any{
			"chatId":                 chatID,
			"priceThresholdInPoints": strconv.FormatInt(limit, 10),
		},
	})
	if err != nil {
		return false, err
	}
	return gjson.ParseBytes(raw).Get("data.chatSetMessagePointPriceThreshold").Exists(), nil
}

// DeleteChat removes a conversation.
func (c *Client) DeleteChat(ctx context.Context, chatID int64) (bool, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.DeleteChatMutation,
		vars: map[string]any{"chatId": chatID},
	})
	if err != nil {
		return false, err
	}
	return gjson.ParseBytes(raw).Get("data.deleteChat").Exists(), nil
}

// PurgeAllConversations deletes every message of the account.
func (c *Client) PurgeAllConversations(ctx context.Context) bool {
	_, err := c.execute(ctx, request{op: queries.DeleteUserMessagesMutation})
	return err == nil
}

// ClearContext inserts a context break so the bot forgets the conversation
// so far.
func (c *Client) ClearContext(ctx context.Context, chatID int64) (bool, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.SendChatBreakMutation,
		vars: map[string]any{"chatId": chatID, "clientNonce": nonce(16)},
	})
	if err != nil {
		return false, err
	}
	return gjson.ParseBytes(raw).Get("data.messageBreakEdgeCreate").Exists(), nil
}

// ImportChat forks a shared conversation into the account. The share page is
// scraped for the bot handle the share belongs to.
func (c *Client) ImportChat(ctx context.Context, shareCode string) (*Chat, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/s/"+shareCode, nil)
	if err != nil {
		return nil, fmt.Errorf("creating share page request: %w", err)
	}
	c.applyHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching share page: %w", err)
	}
	defer resp.Body.Close()
	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading share page: %w", err)
	}

	m := botNickname.FindSubmatch(html)
	if m == nil {
		return nil, perrors.NewAPIError("share %s names no bot", shareCode)
	}
	botName := string(m[1])

	raw, err := c.execute(ctx, request{
		op: queries.ContinueChatFromShareMutation,
		vars: map[string]any{
			"shareCode": shareCode,
			"botName":   botName,
			"postId":    nil,
		},
	})
	if err != nil {
		return nil, err
	}
	data := gjson.ParseBytes(raw).Get("data.continueChatFromPoeShare")
	if !data.Exists() {
		return nil, perrors.NewAPIError("importing share %s failed", shareCode)
	}
	if msg := data.Get("statusMessage").String(); msg != "" {
		return nil, perrors.NewAPIError("%s: %s", data.Get("status").String(), msg)
	}

	// The mutation reports only status; the imported conversation is the
	// newest history entry.
	return c.History().Next(ctx)
}

// CancelMessage asks the backend to stop the conversation's active jobs.
func (c *Client) CancelMessage(ctx context.Context, chatID int64) (bool, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.CancelActiveJobsMutation,
		vars: map[string]any{"chatId": chatID},
	})
	if err != nil {
		return false, err
	}
	return gjson.ParseBytes(raw).Get("data.cancelViewerActiveJobs").Exists(), nil
}

// DeleteMessages removes individual messages from a conversation.
func (c *Client) DeleteMessages(ctx context.Context, chatCode string, messageIDs []int64) (bool, error) {
	connections := fmt.Sprintf("client:%s:__ChatMessagesView_chat_messagesConnection_connection", chatCode)
	raw, err := c.execute(ctx, request{
		op:   queries.DeleteMessagesMutation,
		vars: map[string]any{"connections": connections, "messageIds": messageIDs},
	})
	if err != nil {
		return false, err
	}
	return gjson.ParseBytes(raw).Get("data.messagesDelete").Exists(), nil
}

// TotalCostPoints returns the points charged for a message, or -1 when the
// backend reports none.
func (c *Client) TotalCostPoints(ctx context.Context, messageCode string) (int64, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.MessageInfoPageQuery,
		vars: map[string]any{"messageCode": messageCode},
	})
	if err != nil {
		return -1, err
	}
	points := gjson.ParseBytes(raw).Get("data.messageOfCode.responsibleJob.totalCostPoints")
	if !points.Exists() {
		return -1, nil
	}
	return points.Int(), nil
}

// ShareMessages publishes messages of a conversation and returns the share
// URL.
func (c *Client) ShareMessages(ctx context.Context, chatID int64, messageIDs []int64) (string, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.ShareMessagesMutation,
		vars: map[string]any{"chatId": chatID, "messageIds": messageIDs},
	})
	if err != nil {
		return "", err
	}
	shareCode := gjson.ParseBytes(raw).Get("data.messagesShare.shareCode")
	if !shareCode.Exists() {
		return "", perrors.NewAPIError("sharing messages of chat %d failed", chatID)
	}
	return c.baseURL + "/s/" + shareCode.String(), nil
}

// ListPreviewApps collects the share URLs of app previews generated from a
// message, probing indices until the backend stops answering.
func (c *Client) ListPreviewApps(ctx context.Context, messageID int64) ([]string, error) {
	var urls []string
	for {
		raw, err := c.execute(ctx, request{
			op:   queries.SharePreviewFromMessage,
			vars: map[string]any{"index": len(urls), "messageId": messageID},
		})
		if err != nil {
			return urls, err
		}
		shareURL := gjson.ParseBytes(raw).Get("data.sharePreviewFromMessage.sharedPreview.shareUrl")
		if !shareURL.Exists() {
			return urls, nil
		}
		urls = append(urls, shareURL.String())
	}
}
