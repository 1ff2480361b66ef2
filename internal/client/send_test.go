package client

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/mzyui/poe-go/internal/errors"
)

func sendHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queryName, vars := decodeVars(t, r)
		switch queryName {
		case "HandleBotLandingPageQuery":
			io.WriteString(w, `{"success":true,"data":{"bot":{
				"botId":42,"handle":"Assistant","displayName":"Assistant",
				"messagePointLimit":{"displayMessagePointPrice":20}}}}`)
		case "SendMessageMutation":
			assert.Equal(t, "Assistant", vars["bot"])
			assert.Equal(t, "hello", vars["query"])
			assert.Equal(t, float64(20), vars["messagePointsDisplayPrice"])
			nonce, _ := vars["clientNonce"].(string)
			assert.Len(t, nonce, 16)

			io.WriteString(w, `{"success":true,"data":{"messageEdgeCreate":{
				"status":"success","statusMessage":"",
				"chat":{"chatId":9,"chatCode":"c0de","title":""},
				"message":{"node":{"messageId":100,"text":"hello","author":"human","state":"complete","contentType":"text_markdown","sourceType":"chat_input","id":"a"}},
				"botMessage":{"node":{"messageId":101,"text":"","author":"bot","state":"incomplete","contentType":"text_markdown","sourceType":"chat_input","id":"b"}}}}}`)
		default:
			t.Fatalf("unexpected operation %s", queryName)
		}
	}
}

func TestSendMessage(t *testing.T) {
	c, _ := testClient(t, sendHandler(t))
	c.conn = &fakeConn{}

	mc, err := c.SendMessage(context.Background(), SendMessageData{Bot: "Assistant", Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, int64(9), mc.Chat().ChatID)
	assert.Equal(t, int64(100), mc.UserMessage().MessageID)
	assert.Equal(t, int64(101), mc.BotMessage().MessageID)
}

func TestSendMessageNewChatOmitsChatID(t *testing.T) {
	var chatID any = "unset"
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queryName, vars := decodeVars(t, r)
		if queryName == "SendMessageMutation" {
			chatID = vars["chatId"]
			assert.Equal(t, true, vars["shouldFetchChat"])
		}
		sendHandler(t)(w, r)
	}))
	c.conn = &fakeConn{}

	_, err := c.SendMessage(context.Background(), SendMessageData{Bot: "Assistant", Message: "hello"})
	require.NoError(t, err)
	assert.Nil(t, chatID)
}

func TestSendMessageContinuesChat(t *testing.T) {
	var chatID any
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queryName, vars := decodeVars(t, r)
		if queryName == "SendMessageMutation" {
			chatID = vars["chatId"]
		}
		sendHandler(t)(w, r)
	}))
	c.conn = &fakeConn{}

	_, err := c.SendMessage(context.Background(), SendMessageData{Bot: "Assistant", Message: "hello", ChatID: 9})
	require.NoError(t, err)
	assert.Equal(t, float64(9), chatID)
}

func TestSendMessageUnknownBot(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":{"bot":null}}`)
	}))
	c.conn = &fakeConn{}

	_, err := c.SendMessage(context.Background(), SendMessageData{Bot: "Ghost", Message: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrNotFound)
	assert.Contains(t, err.Error(), "Ghost")
}

func TestRetryMessageUnknownChat(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":{"chatOfCode":null}}`)
	}))
	c.conn = &fakeConn{}

	_, err := c.RetryMessage(context.Background(), "n0pe")
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrNotFound)
}

func TestSendMessageStatusFailure(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queryName, _ := decodeVars(t, r)
		if queryName == "HandleBotLandingPageQuery" {
			sendHandler(t)(w, r)
			return
		}
		io.WriteString(w, `{"success":true,"data":{"messageEdgeCreate":{
			"status":"reached_limit","statusMessage":"Daily limit reached"}}}`)
	}))
	c.conn = &fakeConn{}

	_, err := c.SendMessage(context.Background(), SendMessageData{Bot: "Assistant", Message: "hello"})
	require.Error(t, err)
	assert.Equal(t, "reached_limit: Daily limit reached", err.Error())
}

func TestSendMessageDefaultBot(t *testing.T) {
	var askedSettings bool
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queryName, _ := decodeVars(t, r)
		if queryName == "settingsPageQuery" {
			askedSettings = true
			io.WriteString(w, `{"success":true,"data":{"viewer":{"defaultBot":{"botId":42,"displayName":"Assistant"}}}}`)
			return
		}
		sendHandler(t)(w, r)
	}))
	c.conn = &fakeConn{}

	mc, err := c.SendMessage(context.Background(), SendMessageData{Message: "hello"})
	require.NoError(t, err)
	assert.True(t, askedSettings)
	assert.Equal(t, int64(9), mc.Chat().ChatID)
}

func TestRetryMessage(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queryName, vars := decodeVars(t, r)
		switch queryName {
		case "ChatPageQuery":
			assert.Equal(t, "c0de", vars["chatCode"])
			io.WriteString(w, `{"success":true,"data":{"chatOfCode":{
				"chatId":9,"chatCode":"c0de","title":"t",
				"defaultBotObject":{"messagePointLimit":{"displayMessagePointPrice":20}},
				"messagesConnection":{"edges":[
					{"node":{"messageId":100,"text":"hi","author":"human","state":"complete","contentType":"text_markdown","sourceType":"chat_input","id":"a"}},
					{"node":{"messageId":101,"text":"hey","author":"bot","state":"complete","contentType":"text_markdown","sourceType":"chat_input","id":"b"}}]}}}}`)
		case "regenerateMessageMutation":
			assert.Equal(t, float64(101), vars["messageId"])
			assert.Equal(t, float64(20), vars["messagePointsDisplayPrice"])
			io.WriteString(w, `{"success":true,"data":{"messageRegenerate":{"status":"success","statusMessage":""}}}`)
		default:
			t.Fatalf("unexpected operation %s", queryName)
		}
	}))
	c.conn = &fakeConn{}

	mc, err := c.RetryMessage(context.Background(), "c0de")
	require.NoError(t, err)
	assert.Equal(t, int64(101), mc.BotMessage().MessageID)
	assert.Equal(t, int64(100), mc.UserMessage().MessageID)
}
