package client

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"

	perrors "github.com/mzyui/poe-go/internal/errors"
	"github.com/mzyui/poe-go/internal/queries"
)

// DefaultCategory is the explore listing's catch-all category.
const DefaultCategory = "defaultCategory"

// EntityType selects what an explore/search listing returns.
type EntityType string

const (
	EntityBot  EntityType = "bot"
	EntityUser EntityType = "user"
)

// SearchData parameterizes an explore or search listing.
type SearchData struct {
	// Query switches the listing to full-text search. Empty browses by
	// category instead.
	Query string
	// CategoryName restricts category browsing; empty means all.
	CategoryName string
	// EntityType picks bots or users. Defaults to bots.
	EntityType EntityType
	// Count is the category-browse page size. Defaults to 50.
	Count int
}

// History lists the account's conversations, newest first.
func (c *Client) History() *Cursor[Chat] {
	return newCursor(func(ctx context.Context, cursor string) ([]Chat, string, bool, error) {
		vars := map[string]any{"count": 10}
		if cursor != "" {
			vars["cursor"] = cursor
		}
		raw, err := c.execute(ctx, request{op: queries.ChatHistoryPaginationQuery, vars: vars})
		if err != nil {
			return nil, "", false, err
		}
		return decodePage[Chat](gjson.ParseBytes(raw).Get("data.chats"))
	})
}

// Explore lists bots or user profiles, either browsing a category or running
// a full-text search. The category is validated upfront so a typo fails the
// call instead of silently listing nothing.
func (c *Client) Explore(ctx context.Context, data SearchData) (*Cursor[Entity], error) {
	if data.CategoryName == "" {
		data.CategoryName = DefaultCategory
	}
	if data.EntityType == "" {
		data.EntityType = EntityBot
	}
	if data.Count <= 0 {
		data.Count = 50
	}
	// Browsing users has no category listing; it is always a search.
	search := data.Query != "" || data.EntityType == EntityUser

	if !search && data.CategoryName != DefaultCategory {
		categories, err := c.AvailableCategories(ctx)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(categories, data.CategoryName) {
			return nil, fmt.Errorf("category %s: %w", data.CategoryName, perrors.ErrNotFound)
		}
	}

	return newCursor(func(ctx context.Context, cursor string) ([]Entity, string, bool, error) {
		var (
			op         queries.Operation
			connection string
			vars       map[string]any
		)
		if search {
			op = queries.SearchResultsPaginationQuery
			connection = "data.searchEntityConnection"
			vars = map[string]any{
				"query":      data.Query,
				"entityType": string(data.EntityType),
				"count":      50,
			}
		} else {
			op = queries.ExploreBotsPaginationQuery
			connection = "data.exploreBotsConnection"
			vars = map[string]any{
				"categoryName": data.CategoryName,
				"count":        data.Count,
			}
		}
		if cursor != "" {
			vars["cursor"] = cursor
		}

		raw, err := c.execute(ctx, request{op: op, vars: vars})
		if err != nil {
			return nil, "", false, err
		}

		page := gjson.ParseBytes(raw).Get(connection)
		next := page.Get("pageInfo.endCursor").String()

		var items []Entity
		for _, edge := range page.Get("edges").Array() {
			node := edge.Get("node")
			if !node.Exists() {
				continue
			}
			var entity Entity
			if data.EntityType == EntityBot {
				var bot BotInfo
				if err := json.Unmarshal([]byte(node.Raw), &bot); err != nil {
					continue
				}
				entity.Bot = &bot
			} else {
				var user UserInfo
				if err := json.Unmarshal([]byte(node.Raw), &user); err != nil {
					continue
				}
				entity.User = &user
			}
			items = append(items, entity)
		}
		return items, next, morePages(page, len(items)), nil
	}), nil
}

// AvailableCategories lists the explore categories the backend offers.
func (c *Client) AvailableCategories(ctx context.Context) ([]string, error) {
	raw, err := c.execute(ctx, request{
		op:   queries.ExploreBotsIndexPageQuery,
		vars: map[string]any{"categoryName": DefaultCategory},
	})
	if err != nil {
		return nil, err
	}
	var categories []string
	for _, category := range gjson.ParseBytes(raw).Get("data.exploreBotsCategoryObjects").Array() {
		if name := category.Get("categoryName"); name.Exists() {
			categories = append(categories, name.String())
		}
	}
	return categories, nil
}

// decodePage unpacks one connection page: edge nodes, the trailing cursor,
// and whether another page follows.
func decodePage[T any](page gjson.Result) ([]T, string, bool, error) {
	next := page.Get("pageInfo.endCursor").String()

	var items []T
	for _, edge := range page.Get("edges").Array() {
		node := edge.Get("node")
		if !node.Exists() {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(node.Raw), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, next, morePages(page, len(items)), nil
}

// morePages decides whether to issue another page request. The backend's
// connection pages carry hasNextPage; when it is absent, keep going as long
// as the current page produced items, terminating on the first empty page.
func morePages(page gjson.Result, decoded int) bool {
	if hasNext := page.Get("pageInfo.hasNextPage"); hasNext.Exists() {
		return hasNext.Bool()
	}
	return decoded > 0
}
