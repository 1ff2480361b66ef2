// Package push decodes raw push-channel frames into typed per-conversation
// events. Parsing is pure; routing the resulting events into conversation
// queues is the session's job.
package push

import "encoding/json"

// Envelope is one inbound text frame: a batch of opaque payload strings plus
// the channel's minimum sequence number.
type Envelope struct {
	Messages []string `json:"messages"`
	MinSeq   int64    `json:"min_seq"`
}

// Event is one classified push event. Events for the same conversation are
// produced, and must stay, in arrival order.
type Event struct {
	// ChatID is the conversation id, parsed from the numeric suffix of the
	// payload's unique_id. -1 when the suffix is not numeric.
	ChatID int64

	// MessageID is the backend message id, when the payload carries one.
	MessageID int64

	// Subscription is the raw subscription name that produced the event.
	Subscription string

	// Hash is the MD5 of the serialized payload data. Consumers may use it
	// to detect exact duplicates.
	Hash string

	Payload Payload
}

// Payload is the variant payload of an event. Unrecognized subscription
// names fall through to Raw so new kinds never break dispatch.
type Payload interface {
	kind() string
}

// RefetchChannel tells the client to drop the current push connection and
// establish a fresh one. It invalidates every other payload that arrived in
// the same frame.
type RefetchChannel struct{}

// MessageCancelled reports that the in-flight assistant job was cancelled.
type MessageCancelled struct{}

// JobUpdated carries the lifecycle state of the backend job producing the
// reply.
type JobUpdated struct {
	ID    string `json:"id"`
	JobID int64  `json:"jobId"`
	State string `json:"state"`
}

// TitleUpdated carries a server-generated conversation title.
type TitleUpdated struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MessageAdded carries one incremental rendering of the assistant's reply.
type MessageAdded struct {
	ID           string `json:"id"`
	MessageID    int64  `json:"messageId"`
	CreationTime int64  `json:"creationTime"`
	State        string `json:"state"`
	StateText    string `json:"messageStateText"`
	Text         string `json:"text"`
	Author       string `json:"author"`
}

// Raw is the catch-all for subscription kinds the client does not interpret.
type Raw struct {
	Data json.RawMessage
}

func (RefetchChannel) kind() string   { return "refetchChannel" }
func (MessageCancelled) kind() string { return "messageCancelled" }
func (JobUpdated) kind() string       { return "jobUpdated" }
func (TitleUpdated) kind() string     { return "chatTitleUpdated" }
func (MessageAdded) kind() string     { return "messageAdded" }
func (Raw) kind() string              { return "raw" }
