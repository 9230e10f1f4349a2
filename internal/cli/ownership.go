package cli

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/revledger-go/config"
	"github.com/bitfsorg/revledger-go/revshare"
)

// NewOwnershipCommand creates the ownership command group.
func NewOwnershipCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ownership",
		Short: "Manage the investor ownership table",
		Long: `Manage <datadir>/ownership.yaml, which maps each project's investors to
basis points (1/100 of a percent). A project's investors may own at most
10000 basis points in total.`,
	}
	cmd.AddCommand(newOwnershipSetCommand(opts))
	cmd.AddCommand(newOwnershipShowCommand(opts))
	cmd.AddCommand(newOwnershipImportCommand(opts))
	return cmd
}

func newOwnershipSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <project> <investor> <basis-points>",
		Short: "Set an investor's ownership of a project (0 removes it)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseUint("project", args[0])
			if err != nil {
				return err
			}
			bp, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid basis points %q", args[2]))
			}

			path := config.OwnershipPath(opts.DataDir)
			file, err := LoadOwnership(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "load ownership", err)
			}
			if err := file.Set(projectID, args[1], uint32(bp)); err != nil {
				return WrapExitError(ExitFailure, "set ownership", err)
			}
			if err := SaveOwnership(path, file); err != nil {
				return WrapExitError(ExitCommandError, "save ownership", err)
			}

			return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Print(map[string]interface{}{
				"project_id":   projectID,
				"investor":     args[1],
				"basis_points": bp,
			}, func(w io.Writer) {
				fmt.Fprintf(w, "Project %d: %s owns %d basis points\n", projectID, args[1], bp)
			})
		},
	}
}

func newOwnershipImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <registry-file>",
		Short: "Replace a project's ownership with a shareholder registry",
		Long: `Import a serialized shareholder registry (raw or hex encoded). Each
shareholder is keyed by its P2PKH address on the configured network and owns
floor(shares * 10000 / total shares) basis points of the registry's project.
The project's previous ownership entries are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			reg, err := readRegistry(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "read registry", err)
			}
			lookup, err := revshare.NewRegistryOwnership(cfg.IsMainnet(), reg)
			if err != nil {
				return WrapExitError(ExitFailure, "import registry", err)
			}

			path := config.OwnershipPath(opts.DataDir)
			file, err := LoadOwnership(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "load ownership", err)
			}
			project := make(map[string]uint32)
			for _, inv := range lookup.Investors(reg.ProjectID) {
				bp, _ := lookup.BasisPoints(reg.ProjectID, inv)
				project[string(inv)] = bp
			}
			if len(project) == 0 {
				delete(file.Projects, reg.ProjectID)
			} else {
				file.Projects[reg.ProjectID] = project
			}
			if err := SaveOwnership(path, file); err != nil {
				return WrapExitError(ExitCommandError, "save ownership", err)
			}

			return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Print(map[string]interface{}{
				"project_id": reg.ProjectID,
				"investors":  project,
			}, func(w io.Writer) {
				fmt.Fprintf(w, "Imported %d shareholders into project %d\n", len(project), reg.ProjectID)
			})
		},
	}
}

// readRegistry loads a serialized registry, accepting hex text as well as raw bytes.
func readRegistry(path string) (*revshare.RegistryState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if decoded, err := hex.DecodeString(string(bytes.TrimSpace(data))); err == nil {
		data = decoded
	}
	return revshare.DeserializeRegistry(data)
}

func newOwnershipShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the ownership table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := LoadOwnership(config.OwnershipPath(opts.DataDir))
			if err != nil {
				return WrapExitError(ExitCommandError, "load ownership", err)
			}
			return NewOutputFormatter(opts.Format, cmd.OutOrStdout()).Print(file, func(w io.Writer) {
				printOwnership(w, file)
			})
		},
	}
}

func printOwnership(w io.Writer, file *OwnershipFile) {
	if len(file.Projects) == 0 {
		fmt.Fprintln(w, "No ownership recorded")
		return
	}
	projects := make([]uint64, 0, len(file.Projects))
	for id := range file.Projects {
		projects = append(projects, id)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i] < projects[j] })

	for _, id := range projects {
		fmt.Fprintf(w, "Project %d\n", id)
		investors := make([]string, 0, len(file.Projects[id]))
		for inv := range file.Projects[id] {
			investors = append(investors, inv)
		}
		sort.Strings(investors)
		for _, inv := range investors {
			fmt.Fprintf(w, "  %s  %d\n", inv, file.Projects[id][inv])
		}
	}
}
