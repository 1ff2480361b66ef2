package client

import "context"

// ChatContext binds one conversation to the session so repeated operations
// on it don't re-state its identifiers.
type ChatContext struct {
	c    *Client
	chat Chat
}

// ChatContext wraps a conversation record for follow-up operations.
func (c *Client) ChatContext(chat Chat) *ChatContext {
	return &ChatContext{c: c, chat: chat}
}

// ChatContext returns the reply's conversation bound for follow-up
// operations.
func (mc *MessageContext) ChatContext() *ChatContext {
	return mc.c.ChatContext(mc.chat)
}

// Chat returns the bound conversation record.
func (cc *ChatContext) Chat() Chat { return cc.chat }

// SendMessage continues the bound conversation; any ChatID in data is
// overridden.
func (cc *ChatContext) SendMessage(ctx context.Context, data SendMessageData) (*MessageContext, error) {
	data.ChatID = cc.chat.ChatID
	return cc.c.SendMessage(ctx, data)
}

// ClearContext inserts a context break into the conversation.
func (cc *ChatContext) ClearContext(ctx context.Context) (bool, error) {
	return cc.c.ClearContext(ctx, cc.chat.ChatID)
}

// SetTitle renames the conversation, refreshing the bound record on
// success.
func (cc *ChatContext) SetTitle(ctx context.Context, title string) (bool, error) {
	ok, err := cc.c.SetChatTitle(ctx, cc.chat.ChatID, title)
	if err != nil || !ok {
		return false, err
	}
	cc.chat.Title = title
	return true, nil
}

// SetContextOptimization toggles the conversation's context-optimization
// flag.
func (cc *ChatContext) SetContextOptimization(ctx context.Context, enabled bool) (bool, error) {
	return cc.c.SetContextOptimization(ctx, cc.chat.ChatID, enabled)
}

// Delete removes the conversation.
func (cc *ChatContext) Delete(ctx context.Context) (bool, error) {
	return cc.c.DeleteChat(ctx, cc.chat.ChatID)
}
