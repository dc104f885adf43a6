package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/the-dev-tools/contextmap/internal/action"
	"github.com/the-dev-tools/contextmap/internal/script"
	"github.com/the-dev-tools/contextmap/pkg/collab"
)

func newReplayCmd(a *app) *cobra.Command {
	var collaborate bool
	cmd := &cobra.Command{
		Use:   "replay [project-id] [script]",
		Short: "Apply a YAML edit script to a stored project",
		Long: `Replay runs each step of a script through the editor, saving the project
after every change. With --collab the edits go through a collaborative
session instead of the local history.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open script: %w", err)
			}
			defer f.Close()
			sc, err := script.Parse(f)
			if err != nil {
				return err
			}

			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			p, err := s.Load(ctx, args[0])
			if err != nil {
				return err
			}

			ctrl := collab.NewController(
				collab.WithLogger(a.logger),
				collab.WithCaptureTimeout(a.cfg.CaptureTimeout),
			)
			e := action.NewEditor(p,
				action.WithSaver(s),
				action.WithTracker(action.NewLogTracker(a.logger)),
				action.WithLogger(a.logger),
				action.WithHistoryLimit(a.cfg.HistoryLimit),
				action.WithController(ctrl),
			)
			defer e.Close()

			if collaborate {
				if err := e.StartCollaboration(); err != nil {
					return err
				}
			}
			if err := script.Run(ctx, e, sc); err != nil {
				return err
			}

			a.logger.Info("script replayed", "project_id", p.ID, "steps", len(sc.Steps), "collab", collaborate)
			printSummary(cmd.OutOrStdout(), e.Project())
			return nil
		},
	}
	cmd.Flags().BoolVar(&collaborate, "collab", false, "edit through a collaborative session")
	return cmd
}
