package main

import (
	"fmt"

	"github.com/AlShabiliBadia/Shorter-links/internal/dto"
	"github.com/AlShabiliBadia/Shorter-links/internal/model"
	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/AlShabiliBadia/Shorter-links/internal/service"
	"github.com/spf13/cobra"
)

var createURL string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an anonymous short link",
	Example: `  shortlink create --url="https://go.dev/doc/effective_go"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		links := service.NewLinkService(repository.NewStore(a.db, nil), a.logger)
		link, err := links.CreateLink(cmd.Context(), createURL, model.Anonymous())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Code: %s\nShort URL: %s\n",
			link.ShortCode, dto.ShortURL(a.cfg.Server.BaseURL, link.ShortCode))
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createURL, "url", "", "target URL to shorten")
	_ = createCmd.MarkFlagRequired("url")
}
