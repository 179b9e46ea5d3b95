package cmds

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rosettacloud/shellchat/pkg/transcript"
)

var transcriptDB string

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Inspect locally recorded chat transcripts",
}

var transcriptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openTranscript(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		infos, err := store.Sessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no recorded sessions")
			return nil
		}
		for _, info := range infos {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d messages\n",
				info.SessionID, info.StartedAt.Format("2006-01-02 15:04"), info.Messages)
		}
		return nil
	},
}

var transcriptFormat string

var transcriptExportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export one session as markdown or json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openTranscript(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		sessionID := args[0]
		msgs, err := store.Messages(cmd.Context(), sessionID)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			return errors.Errorf("no messages recorded for session %s", sessionID)
		}

		switch transcriptFormat {
		case "md", "markdown":
			return transcript.WriteMarkdown(cmd.OutOrStdout(), sessionID, msgs)
		case "json":
			return transcript.WriteJSON(cmd.OutOrStdout(), sessionID, msgs)
		default:
			return errors.Errorf("unknown format %q (want md or json)", transcriptFormat)
		}
	},
}

func openTranscript(cmd *cobra.Command) (*transcript.Store, error) {
	path := transcriptDB
	if path == "" && configPath != "" {
		if cfg, err := loadConfig(cmd); err == nil {
			path = cfg.TranscriptPath
		}
	}
	if path == "" {
		return nil, errors.New("no transcript database (set --db or transcript_path in the config)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "transcript database %s", path)
	}
	return transcript.Open(path)
}

func init() {
	transcriptCmd.PersistentFlags().StringVar(&transcriptDB, "db", "", "Path to the transcript database")
	transcriptExportCmd.Flags().StringVar(&transcriptFormat, "format", "md", "Export format (md|json)")
	transcriptCmd.AddCommand(transcriptListCmd, transcriptExportCmd)
	rootCmd.AddCommand(transcriptCmd)
}
