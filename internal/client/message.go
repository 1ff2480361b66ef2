package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"

	perrors "github.com/mzyui/poe-go/internal/errors"
	"github.com/mzyui/poe-go/internal/push"
)

// TextKind distinguishes the stream's output items.
type TextKind int

const (
	// TextChunk is an incremental suffix of the reply.
	TextChunk TextKind = iota
	// TextFull is a full replacement: the server rewrote earlier content.
	TextFull
	// TextError is a terminal failure reported through the message state.
	TextError
)

func (k TextKind) String() string {
	switch k {
	case TextChunk:
		return "chunk"
	case TextFull:
		return "full"
	default:
		return "error"
	}
}

// Text is one item of the reconstructed reply stream.
type Text struct {
	Kind    TextKind
	Content string
}

// MessageContext reconstructs one assistant reply from the session's push
// events. It borrows the session for the duration of the reconstruction and
// holds no state beyond the stream's progress. The produced sequence is
// finite and not restartable: once the stream reaches a terminal state no
// further items are produced.
type MessageContext struct {
	c           *Client
	chat        Chat
	userMessage Message
	botMessage  Message

	completed bool
	cancelled bool
	text      string
	chatTitle string
}

func newMessageContext(c *Client, chat Chat, userMessage, botMessage Message) *MessageContext {
	return &MessageContext{c: c, chat: chat, userMessage: userMessage, botMessage: botMessage}
}

// Chat returns the conversation this reply belongs to.
func (mc *MessageContext) Chat() Chat { return mc.chat }

// UserMessage returns the sent message record.
func (mc *MessageContext) UserMessage() Message { return mc.userMessage }

// BotMessage returns the assistant's message record.
func (mc *MessageContext) BotMessage() Message { return mc.botMessage }

// Title returns the conversation's persisted title, or the one captured from
// the stream when the conversation has none yet.
func (mc *MessageContext) Title() string {
	if mc.chat.Title != "" {
		return mc.chat.Title
	}
	return mc.chatTitle
}

// Next produces the next stream item. It returns nil once the stream has
// reached a terminal state.
func (mc *MessageContext) Next(ctx context.Context) (*Text, error) {
	if mc.cancelled || mc.completed {
		return nil, nil
	}
	for {
		ev, err := mc.readEvent(ctx)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, nil
		}
		added, ok := ev.Payload.(push.MessageAdded)
		if !ok {
			continue
		}
		if item := mc.applyAdded(added); item != nil {
			mc.c.rec.StreamItem(item.Kind.String())
			return item, nil
		}
	}
}

// Text drains the stream and returns the accumulated reply.
func (mc *MessageContext) Text(ctx context.Context) (string, error) {
	for {
		item, err := mc.Next(ctx)
		if err != nil {
			return mc.text, err
		}
		if item == nil {
			return mc.text, nil
		}
	}
}

// Cancel asks the backend to stop the in-flight job. The local stream only
// ends when the corresponding cancellation push event arrives.
func (mc *MessageContext) Cancel(ctx context.Context) (bool, error) {
	return mc.c.CancelMessage(ctx, mc.chat.ChatID)
}

// Retry regenerates the assistant's reply.
func (mc *MessageContext) Retry(ctx context.Context) (*MessageContext, error) {
	return mc.c.RetryMessage(ctx, mc.chat.ChatCode)
}

// Share returns a share URL covering the exchanged message pair.
func (mc *MessageContext) Share(ctx context.Context) (string, error) {
	return mc.c.ShareMessages(ctx, mc.chat.ChatID, []int64{mc.userMessage.MessageID, mc.botMessage.MessageID})
}

// TotalCostPoints returns the points charged for the reply.
func (mc *MessageContext) TotalCostPoints(ctx context.Context) (int64, error) {
	return mc.c.TotalCostPoints(ctx, mc.botMessage.MessageCode)
}

// ListPreviewApps returns share URLs of app previews generated from the reply.
func (mc *MessageContext) ListPreviewApps(ctx context.Context) ([]string, error) {
	return mc.c.ListPreviewApps(ctx, mc.botMessage.MessageID)
}

// Delete removes both sides of the exchange.
func (mc *MessageContext) Delete(ctx context.Context) (bool, error) {
	return mc.c.DeleteMessages(ctx, mc.chat.ChatCode, []int64{mc.botMessage.MessageID, mc.userMessage.MessageID})
}

// DeleteUserMessage removes only the sent message.
func (mc *MessageContext) DeleteUserMessage(ctx context.Context) (bool, error) {
	return mc.c.DeleteMessages(ctx, mc.chat.ChatCode, []int64{mc.userMessage.MessageID})
}

// DeleteBotMessage removes only the assistant's reply.
func (mc *MessageContext) DeleteBotMessage(ctx context.Context) (bool, error) {
	return mc.c.DeleteMessages(ctx, mc.chat.ChatCode, []int64{mc.botMessage.MessageID})
}

// readEvent returns the next pending event for this conversation: first from
// the session queue, else by reading the live connection, dispatching the
// frame, and looping. Returns nil once the stream is terminal and a title
// has been captured.
func (mc *MessageContext) readEvent(ctx context.Context) (*push.Event, error) {
	for {
		// Drain pending events before consulting the terminal flags, so a
		// frame that both completes the stream and carries its final text
		// still delivers that text.
		if ev, ok := mc.c.dequeue(mc.chat.ChatID); ok {
			return &ev, nil
		}
		// A cancelled stream ends immediately; a completed one keeps
		// listening until a title has been captured.
		if mc.cancelled || (mc.completed && mc.chatTitle != "") {
			return nil, nil
		}

		if mc.c.conn == nil {
			return nil, perrors.ErrNotConnected
		}
		_, frame, err := mc.c.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				// The remote closed the channel; reconnect and keep
				// waiting rather than failing the stream.
				if err := mc.c.Reconnect(ctx); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("reading push frame: %w", err)
		}
		if err := mc.processFrame(ctx, frame); err != nil {
			return nil, err
		}
	}
}

// processFrame dispatches one raw frame, applies its events to the stream
// state, and routes them into the session's conversation queues.
func (mc *MessageContext) processFrame(ctx context.Context, frame []byte) error {
	mc.c.rec.Frame()
	events, err := mc.c.dispatcher.Decode(frame)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if _, ok := ev.Payload.(push.RefetchChannel); ok {
			return mc.c.Reconnect(ctx)
		}
		mc.observe(ev)
		mc.c.rec.Events(ev.Subscription, 1)
		mc.c.enqueue(ev)
	}
	return nil
}

// observe applies an event's state transitions. Cancellation ends the local
// stream regardless of conversation id; title and completion only react to
// this conversation's events.
func (mc *MessageContext) observe(ev push.Event) {
	switch p := ev.Payload.(type) {
	case push.MessageCancelled:
		mc.cancelled = true
	case push.TitleUpdated:
		if ev.ChatID == mc.chat.ChatID {
			mc.chatTitle = p.Title
		}
	case push.JobUpdated:
		if ev.ChatID == mc.chat.ChatID && strings.HasPrefix(p.State, "complete") {
			mc.completed = true
		}
	}
	if mc.completed && mc.chatTitle == "" && mc.chat.Title != "" {
		mc.chatTitle = mc.chat.Title
	}
}

// applyAdded folds one incremental rendering into the accumulated text,
// returning the item to emit, or nil for duplicate or stale frames.
func (mc *MessageContext) applyAdded(m push.MessageAdded) *Text {
	switch m.State {
	case "complete", "completed", "incomplete":
	default:
		// Any other state is a terminal failure surfaced through the
		// message itself.
		mc.completed = true
		return &Text{Kind: TextError, Content: fmt.Sprintf("%s: %s\n", m.State, strings.TrimSpace(m.StateText))}
	}

	text := m.Text
	if strings.HasPrefix(m.State, "complete") && !strings.HasSuffix(text, "\n") {
		text = strings.TrimSpace(text) + "\n"
	}
	// Intermediate partial renders flicker a trailing ellipsis line; drop it.
	if strings.Contains(text, "...") && strings.HasSuffix(text, "\n") {
		text = strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, mc.text) {
		chunk := text[len(mc.text):]
		if chunk == "" {
			return nil
		}
		mc.text = text
		return &Text{Kind: TextChunk, Content: chunk}
	}
	if len(text) > len(mc.text) {
		// Not a simple extension: the server replaced earlier content.
		mc.text = text
		return &Text{Kind: TextFull, Content: text}
	}
	// Equal or shorter and not an extension: duplicate or stale frame.
	return nil
}
