package client

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotInfoCachesByHandle(t *testing.T) {
	var calls int
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, `{"success":true,"data":{"bot":{
			"botId":42,"handle":"Assistant","displayName":"Assistant","model":"gpt"}}}`)
	}))

	info, err := c.BotInfo(context.Background(), "Assistant")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, int64(42), info.BotID)

	again, err := c.BotInfo(context.Background(), "Assistant")
	require.NoError(t, err)
	assert.Same(t, info, again)
	assert.Equal(t, 1, calls)
}

func TestBotInfoUnknownHandle(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":{"bot":null}}`)
	}))

	info, err := c.BotInfo(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestUserInfo(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":{"user":{
			"uid":7,"handle":"someone","fullName":"Some One","followerCount":3}}}`)
	}))

	info, err := c.UserInfo(context.Background(), "someone")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, int64(7), info.UID)
	assert.Equal(t, "someone", info.HandleOrNullable())
}

func TestFollowUser(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queryName, vars := decodeVars(t, r)
		assert.Equal(t, "UserFollowStateButton_poeUserSetFollow_Mutation", queryName)
		assert.Equal(t, true, vars["shouldFollow"])
		assert.Equal(t, float64(7), vars["targetUid"])
		io.WriteString(w, `{"success":true,"data":{"poeUserSetFollow":{"status":"success"}}}`)
	}))

	ok, err := c.FollowUser(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSettingsPointBalance(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":{"viewer":{
			"uid":1,
			"defaultBot":{"botId":42,"displayName":"Assistant"},
			"messagePointInfo":{"messagePointBalance":1234,"totalMessagePointAllotment":3000},
			"hasActiveSubscription":true}}}`)
	}))

	settings, err := c.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1234), settings.PointBalance())
	assert.Equal(t, "Assistant", settings.DefaultBot.DisplayName)
	assert.True(t, settings.HasActiveSubscription)
}

func TestSetDefaultPointLimitSendsString(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, vars := decodeVars(t, r)
		// The backend expects the threshold as a string.
		assert.Equal(t, "500", vars["priceThresholdInPoints"])
		io.WriteString(w, `{"success":true,"data":{"setAllChatDefaultMessagePointPriceThreshold":{}}}`)
	}))

	ok, err := c.SetDefaultPointLimit(context.Background(), 500)
	require.NoError(t, err)
	assert.True(t, ok)
}
