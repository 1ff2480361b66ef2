package client

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/mzyui/poe-go/internal/errors"
	"github.com/mzyui/poe-go/internal/push"
)

// fakeConn replays canned frames in place of a live push connection.
type fakeConn struct {
	frames [][]byte
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	if len(f.frames) == 0 {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	fr := f.frames[0]
	f.frames = f.frames[1:]
	return websocket.TextMessage, fr, nil
}

func (f *fakeConn) WriteMessage(int, []byte) error { return nil }
func (f *fakeConn) Close() error                   { return nil }

func pushFrame(t *testing.T, payloads ...map[string]any) []byte {
	t.Helper()
	msgs := make([]string, 0, len(payloads))
	for _, p := range payloads {
		b, err := json.Marshal(p)
		require.NoError(t, err)
		msgs = append(msgs, string(b))
	}
	b, err := json.Marshal(map[string]any{"messages": msgs, "min_seq": 42})
	require.NoError(t, err)
	return b
}

func subPayload(subscription, uniqueID string, data map[string]any) map[string]any {
	return map[string]any{
		"message_type": "subscriptionUpdate",
		"payload": map[string]any{
			"unique_id":         uniqueID,
			"subscription_name": subscription,
			"data":              map[string]any{subscription: data},
		},
	}
}

func messageAdded(state, text string) map[string]any {
	return subPayload("messageAdded", "messageAdded:1", map[string]any{
		"messageId": 7,
		"state":     state,
		"text":      text,
		"author":    "bot",
	})
}

func streamContext(t *testing.T, frames ...[]byte) *MessageContext {
	t.Helper()
	c, err := New(Auth{PB: "pb", PLat: "lat", FormKey: "fk"})
	require.NoError(t, err)
	c.conn = &fakeConn{frames: frames}
	return newMessageContext(c, Chat{ChatID: 1, ChatCode: "c0de"}, Message{MessageID: 6}, Message{MessageID: 7})
}

func TestApplyAddedPrefixExtension(t *testing.T) {
	mc := streamContext(t)

	item := mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Hel"})
	require.NotNil(t, item)
	assert.Equal(t, TextChunk, item.Kind)
	assert.Equal(t, "Hel", item.Content)

	item = mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Hello"})
	require.NotNil(t, item)
	assert.Equal(t, TextChunk, item.Kind)
	assert.Equal(t, "lo", item.Content)
	assert.Equal(t, "Hello", mc.text)
}

func TestApplyAddedDuplicateDropped(t *testing.T) {
	mc := streamContext(t)
	require.NotNil(t, mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Hello"}))
	assert.Nil(t, mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Hello"}))
}

func TestApplyAddedReplacement(t *testing.T) {
	mc := streamContext(t)
	require.NotNil(t, mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Hello"}))

	item := mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Goodbye, world"})
	require.NotNil(t, item)
	assert.Equal(t, TextFull, item.Kind)
	assert.Equal(t, "Goodbye, world", item.Content)
}

func TestApplyAddedStaleDropped(t *testing.T) {
	mc := streamContext(t)
	require.NotNil(t, mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Hello, world"}))

	assert.Nil(t, mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Hel"}))
	assert.Equal(t, "Hello, world", mc.text)
}

func TestApplyAddedCompleteAppendsNewline(t *testing.T) {
	mc := streamContext(t)
	require.NotNil(t, mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Hello"}))

	item := mc.applyAdded(push.MessageAdded{State: "complete", Text: "Hello"})
	require.NotNil(t, item)
	assert.Equal(t, TextChunk, item.Kind)
	assert.Equal(t, "\n", item.Content)
	assert.Equal(t, "Hello\n", mc.text)
}

func TestApplyAddedEllipsisFlickerTrimmed(t *testing.T) {
	mc := streamContext(t)
	require.NotNil(t, mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Thinking"}))

	// The trailing newline of an ellipsis render is dropped, so the next
	// render still extends the accumulated text instead of replacing it.
	item := mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Thinking...\n"})
	require.NotNil(t, item)
	assert.Equal(t, TextChunk, item.Kind)
	assert.Equal(t, "...", item.Content)

	item = mc.applyAdded(push.MessageAdded{State: "incomplete", Text: "Thinking... done"})
	require.NotNil(t, item)
	assert.Equal(t, TextChunk, item.Kind)
	assert.Equal(t, " done", item.Content)
}

func TestApplyAddedErrorState(t *testing.T) {
	mc := streamContext(t)

	item := mc.applyAdded(push.MessageAdded{State: "rate_limit_exceeded", StateText: "Slow down "})
	require.NotNil(t, item)
	assert.Equal(t, TextError, item.Kind)
	assert.Equal(t, "rate_limit_exceeded: Slow down\n", item.Content)
	assert.True(t, mc.completed)
}

func TestNextReconstructsStream(t *testing.T) {
	mc := streamContext(t,
		pushFrame(t, messageAdded("incomplete", "Hel")),
		pushFrame(t, messageAdded("incomplete", "Hello")),
		pushFrame(t,
			messageAdded("complete", "Hello"),
			subPayload("jobUpdated", "jobUpdated:1", map[string]any{"state": "completed"}),
			subPayload("chatTitleUpdated", "chatTitleUpdated:1", map[string]any{"title": "Greeting"}),
		),
	)

	ctx := context.Background()
	var got []string
	for {
		item, err := mc.Next(ctx)
		require.NoError(t, err)
		if item == nil {
			break
		}
		got = append(got, item.Content)
	}
	assert.Equal(t, []string{"Hel", "lo", "\n"}, got)
	assert.Equal(t, "Hello\n", mc.text)
	assert.Equal(t, "Greeting", mc.Title())
}

func TestTextDrainsStream(t *testing.T) {
	mc := streamContext(t,
		pushFrame(t, messageAdded("incomplete", "Hi")),
		pushFrame(t,
			messageAdded("complete", "Hi there"),
			subPayload("jobUpdated", "jobUpdated:1", map[string]any{"state": "completed"}),
			subPayload("chatTitleUpdated", "chatTitleUpdated:1", map[string]any{"title": "Hi"}),
		),
	)

	text, err := mc.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hi there\n", text)
}

func TestCancellationEndsStreamRegardlessOfChat(t *testing.T) {
	mc := streamContext(t,
		pushFrame(t, subPayload("messageCancelled", "messageCancelled:999", map[string]any{"messageId": 1})),
	)
	mc.chatTitle = "already"

	item, err := mc.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.True(t, mc.cancelled)
}

func TestObserveIgnoresOtherConversations(t *testing.T) {
	mc := streamContext(t)

	mc.observe(push.Event{ChatID: 2, Payload: push.TitleUpdated{Title: "other"}})
	assert.Empty(t, mc.chatTitle)

	mc.observe(push.Event{ChatID: 2, Payload: push.JobUpdated{State: "completed"}})
	assert.False(t, mc.completed)
}

func TestObserveCompletionIsSticky(t *testing.T) {
	mc := streamContext(t)

	mc.observe(push.Event{ChatID: 1, Payload: push.JobUpdated{State: "queued"}})
	assert.False(t, mc.completed)

	mc.observe(push.Event{ChatID: 1, Payload: push.JobUpdated{State: "completed"}})
	require.True(t, mc.completed)

	// A late out-of-order lifecycle event must not revive the stream.
	mc.observe(push.Event{ChatID: 1, Payload: push.JobUpdated{State: "queued"}})
	assert.True(t, mc.completed)
}

func TestTitlePrefersPersisted(t *testing.T) {
	mc := streamContext(t)
	mc.chat.Title = "persisted"
	mc.chatTitle = "streamed"
	assert.Equal(t, "persisted", mc.Title())
}

func TestNextWithoutConnection(t *testing.T) {
	c, err := New(Auth{PB: "pb", PLat: "lat", FormKey: "fk"})
	require.NoError(t, err)
	mc := newMessageContext(c, Chat{ChatID: 1}, Message{}, Message{})

	_, err = mc.Next(context.Background())
	assert.ErrorIs(t, err, perrors.ErrNotConnected)
}

func TestNextAfterTerminalReturnsNil(t *testing.T) {
	mc := streamContext(t)
	mc.completed = true
	mc.chatTitle = "done"

	item, err := mc.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, item)
}
