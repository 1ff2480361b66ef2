package push

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame packs payload objects into an envelope the way the channel delivers
// them: each payload serialized to a string inside the messages array.
func frame(t *testing.T, payloads ...map[string]any) []byte {
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

func subscriptionPayload(subscription, uniqueID string, data map[string]any) map[string]any {
	return map[string]any{
		"message_type": "subscriptionUpdate",
		"payload": map[string]any{
			"unique_id":         uniqueID,
			"subscription_name": subscription,
			"data":              map[string]any{subscription: data},
		},
	}
}

func TestDecode_MessageAdded(t *testing.T) {
	d := NewDispatcher(zerolog.New(nil))
	events, err := d.Decode(frame(t, subscriptionPayload("messageAdded", "messageAdded:123", map[string]any{
		"id":           "TWVzc2FnZToy",
		"messageId":    7,
		"creationTime": 1700000000,
		"state":        "incomplete",
		"text":         "Hello",
		"author":       "bot",
	})))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, int64(123), ev.ChatID)
	assert.Equal(t, int64(7), ev.MessageID)
	assert.Equal(t, "messageAdded", ev.Subscription)
	assert.NotEmpty(t, ev.Hash)

	added, ok := ev.Payload.(MessageAdded)
	require.True(t, ok)
	assert.Equal(t, "Hello", added.Text)
	assert.Equal(t, "incomplete", added.State)
}

func TestDecode_RefetchChannelWinsOverEverything(t *testing.T) {
	d := NewDispatcher(zerolog.New(nil))
	events, err := d.Decode(frame(t,
		subscriptionPayload("messageAdded", "messageAdded:123", map[string]any{
			"messageId": 1, "state": "incomplete", "text": "a", "author": "bot",
		}),
		map[string]any{"message_type": "refetchChannel"},
		subscriptionPayload("jobUpdated", "jobUpdated:123", map[string]any{
			"jobId": 9, "state": "complete",
		}),
	))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.IsType(t, RefetchChannel{}, events[0].Payload)
}

func TestDecode_HumanAuthoredFiltered(t *testing.T) {
	d := NewDispatcher(zerolog.New(nil))
	events, err := d.Decode(frame(t, subscriptionPayload("messageAdded", "messageAdded:123", map[string]any{
		"messageId": 1, "state": "complete", "text": "hi", "author": "human",
	})))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecode_MalformedItemSkipped(t *testing.T) {
	d := NewDispatcher(zerolog.New(nil))
	events, err := d.Decode(frame(t,
		map[string]any{"message_type": "subscriptionUpdate", "payload": map[string]any{
			// missing unique_id and subscription_name
			"data": map[string]any{},
		}},
		subscriptionPayload("messageCancelled", "messageCancelled:55", map[string]any{"messageId": 3}),
	))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(55), events[0].ChatID)
	assert.IsType(t, MessageCancelled{}, events[0].Payload)
}

func TestDecode_SubscriptionClassification(t *testing.T) {
	d := NewDispatcher(zerolog.New(nil))

	events, err := d.Decode(frame(t,
		subscriptionPayload("chatTitleUpdated", "chatTitleUpdated:9", map[string]any{
			"id": "Q2hhdDo5", "title": "Greetings",
		}),
		subscriptionPayload("jobUpdated", "jobUpdated:9", map[string]any{
			"id": "Sm9iOjE", "jobId": 1, "state": "complete",
		}),
		subscriptionPayload("viewerStateUpdated", "viewerStateUpdated:9", map[string]any{
			"state": "something",
		}),
	))
	require.NoError(t, err)
	require.Len(t, events, 3)

	title, ok := events[0].Payload.(TitleUpdated)
	require.True(t, ok)
	assert.Equal(t, "Greetings", title.Title)

	job, ok := events[1].Payload.(JobUpdated)
	require.True(t, ok)
	assert.Equal(t, "complete", job.State)

	assert.IsType(t, Raw{}, events[2].Payload)
}

func TestDecode_NonNumericUniqueID(t *testing.T) {
	d := NewDispatcher(zerolog.New(nil))
	events, err := d.Decode(frame(t, subscriptionPayload("jobUpdated", "not-numeric", map[string]any{
		"jobId": 1, "state": "running",
	})))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(-1), events[0].ChatID)
}

func TestDecode_BadFrameIsTopLevelError(t *testing.T) {
	d := NewDispatcher(zerolog.New(nil))
	_, err := d.Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestDecode_IdenticalPayloadsShareHash(t *testing.T) {
	d := NewDispatcher(zerolog.New(nil))
	data := map[string]any{"messageId": 1, "state": "incomplete", "text": "x", "author": "bot"}
	events, err := d.Decode(frame(t,
		subscriptionPayload("messageAdded", "messageAdded:5", data),
		subscriptionPayload("messageAdded", "messageAdded:5", data),
	))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, events[0].Hash, events[1].Hash)
}
