package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nix-mox/moxlint/internal/adapters/outbound/fs"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/tui"
	"github.com/nix-mox/moxlint/internal/domain/knowledge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCompleteCmd() *cobra.Command {
	var (
		jsonOutput bool
		prefix     string
	)

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "List nix-mox library completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates := knowledge.Complete(knowledge.CompletionContext{Prefix: prefix})
			if prefix != "" {
				filtered := candidates[:0]
				for _, c := range candidates {
					if strings.HasPrefix(c.Label, prefix) {
						filtered = append(filtered, c)
					}
				}
				candidates = filtered
			}

			if jsonOutput {
				return renderJSON(cmd.OutOrStdout(), candidates)
			}
			for _, c := range candidates {
				fmt.Fprintln(cmd.OutOrStdout(), c.Label)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output candidates as JSON")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list functions starting with prefix")

	return cmd
}

func newHoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hover <function>",
		Short: "Show documentation for a nix-mox function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, ok := knowledge.Hover(args[0])
			if !ok {
				return fmt.Errorf("no documentation for %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc)
			return nil
		},
	}
}

func newDefinitionCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "definition <function>",
		Short: "Print the file declaring a nix-mox function",
		Long:  "Print the path of the workspace file declaring the function. Fails when the function is unknown or the file does not exist in this workspace.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, ok := knowledge.Definition(args[0])
			if !ok {
				return fmt.Errorf("no definition known for %q", args[0])
			}

			svc := newServices(cmd, settingsFrom(v), false)
			root, err := svc.workspaceRoot()
			if err != nil {
				return err
			}
			path := filepath.Join(root, filepath.FromSlash(rel))
			if !fs.New().Exists(path) {
				return fmt.Errorf("%s is not present in workspace %s", rel, root)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newCatalogCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the nix-mox function catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				return renderJSON(cmd.OutOrStdout(), knowledge.Catalog())
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderCatalog(knowledge.Catalog()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the catalog as JSON")

	return cmd
}
