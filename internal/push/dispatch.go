package push

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	perrors "github.com/mzyui/poe-go/internal/errors"
)

// Dispatcher turns raw inbound frames into classified events.
type Dispatcher struct {
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger.With().Str("component", "dispatch").Logger()}
}

// Decode parses one raw text frame. Malformed payloads inside the envelope
// are skipped so a single bad item cannot block the rest; a frame that is not
// an envelope at all is a top-level parse failure.
func (d *Dispatcher) Decode(frame []byte) ([]Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("decoding push envelope: %w", err)
	}

	var events []Event
	for _, raw := range env.Messages {
		ev, err := d.decodePayload(raw)
		if err != nil {
			d.logger.Warn().Err(err).Msg("skipping malformed push payload")
			continue
		}
		if ev == nil {
			continue
		}
		if _, ok := ev.Payload.(RefetchChannel); ok {
			// A refetch invalidates everything else in the frame.
			return []Event{*ev}, nil
		}
		events = append(events, *ev)
	}
	return events, nil
}

// decodePayload parses one opaque payload string. A nil event with nil error
// means the payload was filtered (human-authored).
func (d *Dispatcher) decodePayload(raw string) (*Event, error) {
	data := gjson.Parse(raw)

	if data.Get("message_type").String() == "refetchChannel" {
		return &Event{ChatID: -1, Payload: RefetchChannel{}}, nil
	}

	payload := data.Get("payload")
	if !payload.Exists() {
		return nil, &perrors.ParseError{Field: "payload"}
	}

	uniqueID := payload.Get("unique_id")
	if !uniqueID.Exists() {
		return nil, &perrors.ParseError{Field: "unique_id"}
	}
	chatID := chatIDFromUniqueID(uniqueID.String())

	subscription := payload.Get("subscription_name").String()
	if subscription == "" {
		return nil, &perrors.ParseError{Field: "subscription_name"}
	}

	payloadData := payload.Get("data").Get(subscription)
	if !payloadData.Exists() {
		return nil, &perrors.ParseError{Field: "data:" + subscription}
	}

	// Only system/bot-authored events are surfaced.
	if payloadData.Get("author").String() == "human" {
		return nil, nil
	}

	sum := md5.Sum([]byte(payloadData.Raw))
	ev := &Event{
		ChatID:       chatID,
		MessageID:    payloadData.Get("messageId").Int(),
		Subscription: subscription,
		Hash:         hex.EncodeToString(sum[:]),
	}

	switch {
	case strings.HasPrefix(subscription, "chat"):
		var p TitleUpdated
		if err := json.Unmarshal([]byte(payloadData.Raw), &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", subscription, err)
		}
		ev.Payload = p
	case strings.HasPrefix(subscription, "job"):
		var p JobUpdated
		if err := json.Unmarshal([]byte(payloadData.Raw), &p); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", subscription, err)
		}
		ev.Payload = p
	case subscription == "messageAdded":
		var p MessageAdded
		if err := json.Unmarshal([]byte(payloadData.Raw), &p); err != nil {
			return nil, fmt.Errorf("decoding messageAdded payload: %w", err)
		}
		ev.Payload = p
	case subscription == "messageCancelled":
		ev.Payload = MessageCancelled{}
	default:
		ev.Payload = Raw{Data: json.RawMessage(payloadData.Raw)}
	}
	return ev, nil
}

// chatIDFromUniqueID extracts the conversation id from a unique_id of the
// form "<subscription>:<id>".
func chatIDFromUniqueID(uniqueID string) int64 {
	idx := strings.LastIndex(uniqueID, ":")
	id, err := strconv.ParseInt(uniqueID[idx+1:], 10, 64)
	if err != nil {
		return -1
	}
	return id
}
