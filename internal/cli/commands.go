package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/equiptracker/internal/common"
	"github.com/dmitrijs2005/equiptracker/internal/filex"
	"github.com/dmitrijs2005/equiptracker/internal/server/catalog"
	"github.com/dmitrijs2005/equiptracker/internal/server/models"
	"github.com/dmitrijs2005/equiptracker/internal/timex"
)

func (a *App) listCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries of the active window, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := a.entries.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{
					"entries":    listing.Entries,
					"resetHours": listing.ResetHours,
					"lastReset":  timex.FormatInstant(listing.LastReset),
				})
			}

			fmt.Fprintf(out, "Window started %s, resets every %d hours\n\n",
				timex.FormatInstant(listing.LastReset), listing.ResetHours)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIMESTAMP\tNAME\tLOCATION\tROBOT\tSURROGATE\tHEADSET\tON SURROGATE")
			for _, e := range listing.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Timestamp, e.Name,
					models.Deref(e.Location), models.Deref(e.Robot), models.Deref(e.Surrogate),
					e.Headset, yesNo(e.HeadsetOnSurrogate))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (a *App) addCommand() *cobra.Command {
	var (
		name, location, robot, surrogate, headset string
		onSurrogate                               bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			optional := func(flag, v string) *string {
				if !f.Changed(flag) {
					return nil
				}
				return models.Ptr(v)
			}

			e, err := a.entries.Create(cmd.Context(), models.NewEntry{
				Name:               name,
				Location:           optional("location", location),
				Robot:              optional("robot", robot),
				Surrogate:          optional("surrogate", surrogate),
				Headset:            headset,
				HeadsetOnSurrogate: onSurrogate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s at %s\n", e.ID, e.Timestamp)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "person making the allocation")
	f.StringVar(&location, "location", "", "location, e.g. \"Room A\"")
	f.StringVar(&robot, "robot", "", "robot id, e.g. B-001")
	f.StringVar(&surrogate, "surrogate", "", "surrogate id, e.g. TB-001")
	f.StringVar(&headset, "headset", "", "headset number")
	f.BoolVar(&onSurrogate, "on-surrogate", false, "headset is mounted on the surrogate")
	return cmd
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.entries.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *App) exportCommand() *cobra.Command {
	var start, end, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ordered CSV export",
		Long: "Write the CSV export of the active window, optionally limited to\n" +
			"entries between --start and --end (inclusive, ISO-8601, naive values are UTC).\n" +
			"--out may be a file, a directory (the suggested file name is used) or - for stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := a.export.Export(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(rep.Data)
				return err
			}

			path := out
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				path = filepath.Join(out, rep.Filename)
			}
			if err := filex.WriteFileAtomic(path, rep.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", rep.Rows, path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&start, "start", "", "range start")
	f.StringVar(&end, "end", "", "range end")
	f.StringVarP(&out, "out", "o", "-", "output file, directory or -")
	return cmd
}

// dumpCommand prints the stored document as it is, without materializing
// the window, so nothing is repaired, reset or written.
func (a *App) dumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the raw stored state without modifying it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.manager.State().Load(cmd.Context())
			if errors.Is(err, common.ErrorNotFound) {
				fmt.Fprintln(cmd.ErrOrStderr(), "no state stored yet")
				return nil
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write(raw); err != nil {
				return err
			}
			_, err = fmt.Fprintln(out)
			return err
		},
	}
}

func catalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "catalog",
		Short:       "Print the equipment catalogue as JSON",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noStorage: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), catalog.Default())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
