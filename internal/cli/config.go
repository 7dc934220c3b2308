package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/runoshun/git-relay/internal/app"
	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/usecase"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Init     bool
		Global   bool
		Template bool
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display or create configuration",
		Long: `Display the effective configuration after merging all sources.

Shows which config files were loaded and the final merged configuration.
With --init, writes a commented template to the repository config file
(.relay/config.toml), or to the global file with --global.

Examples:
  # Show effective configuration
  relay config

  # Print the template without writing it
  relay config --template

  # Create the repository config
  relay config --init

  # Create the global config
  relay config --init --global`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Init && opts.Template {
				return errors.New("--init and --template cannot be used together")
			}
			if opts.Global && !opts.Init {
				return errors.New("--global can only be used with --init")
			}

			w := cmd.OutOrStdout()
			switch {
			case opts.Template:
				return runConfigTemplate(cmd, c, w)
			case opts.Init:
				return runConfigInit(cmd, c, w, opts.Global)
			}
			return runConfigShow(cmd, c, w)
		},
	}

	cmd.Flags().BoolVar(&opts.Init, "init", false, "Create a config file from the template")
	cmd.Flags().BoolVar(&opts.Global, "global", false, "Use the global config file (with --init)")
	cmd.Flags().BoolVar(&opts.Template, "template", false, "Print the config template")

	return cmd
}

func runConfigShow(cmd *cobra.Command, c *app.Container, w io.Writer) error {
	out, err := c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, "[Loaded from]")
	for _, info := range []domain.ConfigInfo{out.GlobalConfig, out.RepoConfig} {
		if info.Exists {
			_, _ = fmt.Fprintf(w, "- %s\n", info.Path)
		} else {
			_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.Path)
		}
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "[Effective Config]")
	_, _ = fmt.Fprint(w, out.Effective)
	return nil
}

func runConfigTemplate(cmd *cobra.Command, c *app.Container, w io.Writer) error {
	out, err := c.ShowConfigTemplateUseCase().Execute(cmd.Context(), usecase.ShowConfigTemplateInput{
		Config: domain.NewDefaultConfig(),
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(w, out.Template)
	return nil
}

func runConfigInit(cmd *cobra.Command, c *app.Container, w io.Writer, global bool) error {
	out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{
		Config: domain.NewDefaultConfig(),
		Global: global,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Created config: %s\n", out.Path)
	return nil
}
