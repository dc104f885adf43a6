package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/the-dev-tools/contextmap/pkg/idwrap"
	"github.com/the-dev-tools/contextmap/pkg/model/mproject"
)

var (
	ErrEmptyProjectFile  = errors.New("project file is empty")
	ErrNameWithManyFiles = errors.New("--name needs exactly one file")
)

func newImportCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import projects from YAML files",
		Long: `Import reads projects from YAML and stores them. A project without an id
gets a new one. Importing a project with an existing id replaces it.
Nothing is stored unless every file parses.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if name != "" && len(args) > 1 {
				return ErrNameWithManyFiles
			}

			projects := make([]mproject.Project, len(args))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, path := range args {
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					p, err := readProject(path)
					if err != nil {
						return err
					}
					projects[i] = p
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			for i, p := range projects {
				if name != "" {
					p.Name = name
				}
				if err := s.Save(ctx, p); err != nil {
					return fmt.Errorf("failed to import project: %w", err)
				}
				a.logger.Info("project imported", "project_id", p.ID, "file", args[i])
				fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "override the project name")
	return cmd
}

func readProject(path string) (mproject.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mproject.Project{}, fmt.Errorf("failed to read file: %w", err)
	}
	var p mproject.Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return mproject.Project{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if p.ID == "" && p.Name == "" && len(p.Contexts) == 0 {
		return mproject.Project{}, fmt.Errorf("%w: %s", ErrEmptyProjectFile, path)
	}
	if p.ID == "" {
		p.ID = idwrap.NewNow(idwrap.KindProject)
	}
	p.Normalize()
	if err := p.FlowStages.Validate(); err != nil {
		return mproject.Project{}, fmt.Errorf("invalid flow stages in %s: %w", path, err)
	}
	return p, nil
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [project-id]",
		Short: "Export a stored project as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			p, err := s.Load(ctx, args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return fmt.Errorf("failed to write project: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [project-id]",
		Short: "Print a summary of a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			p, err := s.Load(ctx, args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func printSummary(out io.Writer, p mproject.Project) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Project\t%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(w, "Contexts\t%d\n", len(p.Contexts))
	fmt.Fprintf(w, "Relationships\t%d\n", len(p.Relationships))
	fmt.Fprintf(w, "Groups\t%d\n", len(p.Groups))
	fmt.Fprintf(w, "Actors\t%d\n", len(p.Actors))
	fmt.Fprintf(w, "User needs\t%d\n", len(p.UserNeeds))
	connections := len(p.ActorConnections) + len(p.ActorNeedConnections) + len(p.NeedContextConnections)
	fmt.Fprintf(w, "Connections\t%d\n", connections)
	for _, s := range p.FlowStages {
		fmt.Fprintf(w, "Stage\t%s @ %g\n", s.Name, s.Position)
	}
	if p.Temporal != nil {
		for _, k := range p.Temporal.Keyframes {
			fmt.Fprintf(w, "Keyframe\t%s (%d active)\n", k.Date, len(k.ActiveContextIDs))
		}
	}
	w.Flush()
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			projects, err := s.List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tREVISION\tUPDATED")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Revision, p.UpdatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}
