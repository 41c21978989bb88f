/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ssargent/fsbx/pkg/codec"
	"github.com/ssargent/fsbx/pkg/volume"
)

// listEntry is one line of `fsbx list`
type listEntry struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Size     int    `json:"size"`
	Mode     string `json:"mode,omitempty"`
	Mtime    string `json:"mtime,omitempty"`
	UID      uint64 `json:"uid,omitempty"`
	GID      uint64 `json:"gid,omitempty"`
	Digest   string `json:"digest"`
}

func newListEntry(rec codec.Record) listEntry {
	e := listEntry{
		Kind:     string(rec.Kind()),
		Name:     rec.Name(),
		Category: rec.Category(),
		Size:     len(rec.Payload()),
		Digest:   rec.Digest().String(),
	}
	if fr, ok := rec.(*codec.FileRecord); ok {
		e.Mode = fr.Meta.Mode().String()
		e.Mtime = fr.Meta.ModTime().UTC().Format(time.RFC3339)
		e.UID = fr.Meta.UID
		e.GID = fr.Meta.GID
	}
	return e
}

func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List the records of a backup volume",
		Long: `List the records of a backup volume without extracting them.

Examples:
  fsbx list backup.fsb
  fsbx list -t table --format json backup.fsb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			kind, _ := cmd.Flags().GetString("type")
			category, _ := cmd.Flags().GetString("category")
			format, _ := cmd.Flags().GetString("format")

			vol, err := a.container.GetVolumeOpener()(args[0])
			if err != nil {
				return err
			}

			var entries []listEntry
			it := vol.Records().Filtered(volume.Filter{Kind: kind, Category: category})
			for it.Next() {
				entries = append(entries, newListEntry(it.Record()))
			}
			if err := it.Err(); err != nil {
				// print what decoded cleanly before reporting the failure
				_ = outputEntries(cmd.OutOrStdout(), format, entries)
				return err
			}

			return outputEntries(cmd.OutOrStdout(), format, entries)
		},
	}

	listCmd.Flags().StringP("type", "t", "", "Only list records of this kind (file or table)")
	listCmd.Flags().StringP("category", "c", "", "Only list records of this category")
	listCmd.Flags().String("format", "table", "Output format (table or json)")

	return listCmd
}

func outputEntries(w io.Writer, format string, entries []listEntry) error {
	switch format {
	case "json":
		if entries == nil {
			entries = []listEntry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "table", "":
		return outputEntriesTable(w, entries)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputEntriesTable(w io.Writer, entries []listEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No records found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tCATEGORY\tSIZE\tMODE\tMTIME\tNAME")
	for _, e := range entries {
		mode, mtime := e.Mode, e.Mtime
		if mode == "" {
			mode, mtime = "-", "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Kind, e.Category, humanize.Bytes(uint64(e.Size)), mode, mtime, e.Name)
	}
	return tw.Flush()
}
