/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show the header, element list and record statistics of a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			vol, err := a.container.GetVolumeOpener()(args[0])
			if err != nil {
				return err
			}

			counts := map[string]int{}
			sizes := map[string]uint64{}
			it := vol.Records().Iterator()
			for it.Next() {
				rec := it.Record()
				key := string(rec.Kind()) + "\t" + rec.Category()
				counts[key]++
				sizes[key] += uint64(len(rec.Payload()))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Header:")
			for _, line := range strings.Split(strings.TrimRight(vol.Header(), "\n"), "\n") {
				fmt.Fprintf(out, "  %s\n", line)
			}
			fmt.Fprintf(out, "Elements: %d\n", len(vol.Elements()))
			for _, e := range vol.Elements() {
				fmt.Fprintf(out, "  %s\n", e)
			}
			fmt.Fprintf(out, "Payload: %s compressed, %s decompressed\n",
				humanize.Bytes(uint64(vol.CompressedLen())), humanize.Bytes(uint64(vol.Len())))

			keys := make([]string, 0, len(counts))
			for k := range counts {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tCATEGORY\tRECORDS\tSIZE")
			for _, k := range keys {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", k, counts[k], humanize.Bytes(sizes[k]))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			return it.Err()
		},
	}
}
