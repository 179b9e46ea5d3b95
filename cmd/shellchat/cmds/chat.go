package cmds

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rosettacloud/shellchat/pkg/client"
	"github.com/rosettacloud/shellchat/pkg/tokens"
	"github.com/rosettacloud/shellchat/pkg/transcript"
	"github.com/rosettacloud/shellchat/pkg/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open an interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := client.Options{
			Endpoint:       cfg.Endpoint,
			ModelID:        cfg.ModelID,
			ReconnectDelay: cfg.ReconnectDelay,
			SendRetryDelay: cfg.SendRetryDelay,
		}

		if cfg.TokenEndpoint != "" {
			tc, err := tokens.NewClient(cfg.TokenEndpoint)
			if err != nil {
				return err
			}
			opts.Tokens = tc.Source(cfg.UserID, cfg.CacheName)
		}

		if cfg.TranscriptPath != "" {
			store, err := transcript.Open(cfg.TranscriptPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			opts.Recorder = store
		}

		c, err := client.New(opts)
		if err != nil {
			return err
		}
		log.Info().Str("session_id", c.SessionID()).Str("endpoint", cfg.Endpoint).Msg("starting chat session")

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			err := c.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			defer cancel()
			program := tea.NewProgram(
				tui.New(c, c.Store().Watch(ctx)),
				tea.WithAltScreen(),
			)
			_, err := program.Run()
			return errors.Wrap(err, "run tui")
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
