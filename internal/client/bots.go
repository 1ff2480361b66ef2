package client

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/tidwall/gjson"

	perrors "github.com/mzyui/poe-go/internal/errors"
	"github.com/mzyui/poe-go/internal/queries"
)

// BotInfo looks up a bot by handle. Results are cached per session; a nil
// result with nil error means the handle does not exist.
func (c *Client) BotInfo(ctx context.Context, handle string) (*BotInfo, error) {
	if info, ok := c.bots.Get(handle); ok {
		return info, nil
	}

	raw, err := c.execute(ctx, request{
		op:   queries.HandleBotLandingPageQuery,
		vars: map[string]any{"botHandle": handle},
	})
	if err != nil {
		return nil, err
	}
	data := gjson.ParseBytes(raw).Get("data.bot")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, nil
	}
	var info BotInfo
	if err := json.Unmarshal([]byte(data.Raw), &info); err != nil {
		return nil, &perrors.ParseError{Field: "bot"}
	}
	c.bots.Put(handle, &info)
	return &info, nil
}

// UserInfo looks up a user profile by handle. A nil result with nil error
// means the handle does not exist.
func (c *Client) UserInfo(ctx context.Context, handle string) (*UserInfo, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.HandleProfilePageQuery,
		vars: map[string]any{"handle": handle},
	})
	if err != nil {
		return nil, err
	}
	data := gjson.ParseBytes(raw).Get("data.user")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, nil
	}
	var info UserInfo
	if err := json.Unmarshal([]byte(data.Raw), &info); err != nil {
		return nil, &perrors.ParseError{Field: "user"}
	}
	return &info, nil
}

func (c *Client) setFollowState(ctx context.Context, uid int64, follow bool) (bool, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.SetFollowUserMutation,
		vars: map[string]any{"shouldFollow": follow, "targetUid": uid},
	})
	if err != nil {
		return false, err
	}
	return gjson.ParseBytes(raw).Get("data.poeUserSetFollow.status").String() == "success", nil
}

// FollowUser follows a user by uid.
func (c *Client) FollowUser(ctx context.Context, uid int64) (bool, error) {
	return c.setFollowState(ctx, uid, true)
}

// UnfollowUser unfollows a user by uid.
func (c *Client) UnfollowUser(ctx context.Context, uid int64) (bool, error) {
	return c.setFollowState(ctx, uid, false)
}

// Settings fetches the account's settings and point balance.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	raw, err := c.execute(ctx, request{op: queries.SettingsPageQuery})
	if err != nil {
		return nil, err
	}
	data := gjson.ParseBytes(raw).Get("data.viewer")
	if !data.Exists() {
		return nil, perrors.NewAPIError("fetching settings failed")
	}
	var settings Settings
	if err := json.Unmarshal([]byte(data.Raw), &settings); err != nil {
		return nil, &perrors.ParseError{Field: "viewer"}
	}
	return &settings, nil
}

// SetDefaultBot selects the bot new conversations default to.
func (c *Client) SetDefaultBot(ctx context.Context, botID int64) (bool, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.SetDefaultBotMutation,
		vars: map[string]any{"botId": botID},
	})
	if err != nil {
		return false, err
	}
	return gjson.ParseBytes(raw).Get("data.poeSetDefaultBot.status").String() == "success", nil
}

// SetDefaultPointLimit caps the default per-message point price across all
// conversations.
func (c *Client) SetDefaultPointLimit(ctx context.Context, limit int64) (bool, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.SetDefaultPointLimitMutation,
		vars: map[string]any{"priceThresholdInPoints": strconv.FormatInt(limit, 10)},
	})
	if err != nil {
		return false, err
	}
	return gjson.ParseBytes(raw).Get("data.setAllChatDefaultMessagePointPriceThreshold").IsObject(), nil
}
