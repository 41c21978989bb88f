/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check every record checksum without writing anything",
		Long: `Decode a backup volume and verify the MD5 digest of every record.

The command exits non-zero at the first malformed or corrupt record.

Example:
  fsbx verify backup.fsb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			vol, err := a.container.GetVolumeOpener()(args[0])
			if err != nil {
				return err
			}

			dec := vol.Records()
			records, err := dec.All()
			if err != nil {
				a.logger.Error().Err(err).Int("verified", len(records)).Msg("verification failed")
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d records, %s decompressed from %s\n",
				len(records), humanize.Bytes(uint64(vol.Len())), humanize.Bytes(uint64(vol.CompressedLen())))
			return nil
		},
	}
}
