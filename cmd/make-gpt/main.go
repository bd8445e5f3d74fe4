// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// The make-gpt command synthesizes a GPT disk image from a JSON descriptor.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siderolabs/go-gptimage/descriptor"
	"github.com/siderolabs/go-gptimage/gpt"
	"github.com/siderolabs/go-gptimage/imagefile"
)

var rootCmdFlags struct {
	bootable bool
	debug    bool
}

var rootCmd = &cobra.Command{
	Use:   "make-gpt <descriptor.json> <output.img>",
	Short: "Synthesize a GPT disk image from a JSON descriptor",
	Long: `make-gpt builds the protective MBR, primary and backup GPT headers and
partition entry arrays for the disk described by the JSON descriptor, and
writes them out as a raw (sparse) disk image.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.NewNop()

		if rootCmdFlags.debug {
			var err error

			logger, err = zap.NewDevelopment()
			if err != nil {
				return err
			}

			defer logger.Sync() //nolint:errcheck
		}

		desc, err := descriptor.LoadFile(args[0])
		if err != nil {
			return err
		}

		opts := []gpt.Option{gpt.WithLogger(logger)}

		if rootCmdFlags.bootable {
			opts = append(opts, gpt.WithMarkPMBRBootable())
		}

		data, err := gpt.Build(desc, opts...)
		if err != nil {
			return err
		}

		if err = imagefile.Write(args[1], desc, data); err != nil {
			return err
		}

		logger.Info("image written",
			zap.String("path", args[1]),
			zap.Uint64("size", desc.BlockSize*desc.NumberOfBlocks),
			zap.Int("partitions", len(desc.Partitions)),
		)

		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&rootCmdFlags.bootable, "bootable", false, "mark the protective MBR partition record bootable")
	rootCmd.Flags().BoolVar(&rootCmdFlags.debug, "debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
