package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mzyui/poe-go/internal/client"
	"github.com/mzyui/poe-go/internal/files"
)

func newChatCmd() *cobra.Command {
	var (
		bot       string
		chatID    int64
		filePaths []string
		fileURLs  []string
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message and stream the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newSession()
			if err != nil {
				return err
			}

			var inputs []files.Input
			for _, p := range filePaths {
				inputs = append(inputs, files.Local(p))
			}
			for _, u := range fileURLs {
				inputs = append(inputs, files.Remote(u))
			}

			mc, err := c.SendMessage(cmd.Context(), client.SendMessageData{
				Bot:     bot,
				Message: strings.Join(args, " "),
				ChatID:  chatID,
				Files:   inputs,
			})
			if err != nil {
				return err
			}

			for {
				item, err := mc.Next(cmd.Context())
				if err != nil {
					return err
				}
				if item == nil {
					break
				}
				switch item.Kind {
				case client.TextFull:
					// Replacement rewrites what was already printed; start a
					// fresh line so the final text stays readable.
					fmt.Print("\n" + item.Content)
				case client.TextError:
					fmt.Fprint(os.Stderr, item.Content)
				default:
					fmt.Print(item.Content)
				}
			}

			logger.Info().
				Int64("chat_id", mc.Chat().ChatID).
				Str("title", mc.Title()).
				Msg("reply complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&bot, "bot", "b", "", "bot handle (default: the account's default bot)")
	cmd.Flags().Int64Var(&chatID, "chat-id", 0, "continue an existing conversation")
	cmd.Flags().StringArrayVarP(&filePaths, "file", "f", nil, "attach a local file (repeatable)")
	cmd.Flags().StringArrayVar(&fileURLs, "file-url", nil, "attach a remote file (repeatable)")
	return cmd
}
