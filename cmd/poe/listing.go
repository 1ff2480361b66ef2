package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mzyui/poe-go/internal/client"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List conversations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSession()
			if err != nil {
				return err
			}
			chats, err := c.History().Take(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, chat := range chats {
				fmt.Printf("%d\t%s\t%s\n", chat.ChatID, chat.ChatCode, chat.Title)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum conversations to list (-1 for all)")
	return cmd
}

func newExploreCmd() *cobra.Command {
	var (
		query    string
		category string
		users    bool
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse or search bots and user profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSession()
			if err != nil {
				return err
			}

			data := client.SearchData{Query: query, CategoryName: category}
			if users {
				data.EntityType = client.EntityUser
			}
			cursor, err := c.Explore(cmd.Context(), data)
			if err != nil {
				return err
			}
			entities, err := cursor.Take(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, e := range entities {
				switch {
				case e.Bot != nil:
					fmt.Printf("bot\t%s\t%s\n", e.Bot.Handle, e.Bot.Description)
				case e.User != nil:
					fmt.Printf("user\t%s\t%s\n", e.User.HandleOrNullable(), e.User.FullName)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "full-text search instead of category browsing")
	cmd.Flags().StringVarP(&category, "category", "c", "", "explore category")
	cmd.Flags().BoolVar(&users, "users", false, "list user profiles instead of bots")
	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "maximum entries to list (-1 for all)")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List explore categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSession()
			if err != nil {
				return err
			}
			categories, err := c.AvailableCategories(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range categories {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot <handle>",
		Short: "Show a bot's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSession()
			if err != nil {
				return err
			}
			info, err := c.BotInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if info == nil {
				return fmt.Errorf("bot %s not found", args[0])
			}
			fmt.Printf("handle:       %s\n", info.Handle)
			fmt.Printf("display name: %s\n", info.DisplayName)
			fmt.Printf("model:        %s\n", info.Model)
			fmt.Printf("powered by:   %s\n", info.PoweredBy)
			fmt.Printf("description:  %s\n", info.Description)
			return nil
		},
	}
}

func newUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <handle>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSession()
			if err != nil {
				return err
			}
			info, err := c.UserInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if info == nil {
				return fmt.Errorf("user %s not found", args[0])
			}
			fmt.Printf("handle:    %s\n", info.HandleOrNullable())
			fmt.Printf("name:      %s\n", info.FullName)
			fmt.Printf("followers: %d\n", info.FollowerCount)
			return nil
		},
	}
}

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show account settings and point balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSession()
			if err != nil {
				return err
			}
			settings, err := c.Settings(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("default bot:   %s\n", settings.DefaultBot.DisplayName)
			fmt.Printf("point balance: %d\n", settings.PointBalance())
			fmt.Printf("subscription:  %v\n", settings.HasActiveSubscription)
			return nil
		},
	}
}
