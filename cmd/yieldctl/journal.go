package main

import (
	"encoding/hex"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libyield-go/engine"
	"github.com/bitfsorg/libyield-go/event"
)

func newJournalCmd(a *app) *cobra.Command {
	var (
		after  uint64
		limit  int
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print the hash-chained event journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				if verify {
					if err := e.VerifyJournal(); err != nil {
						return err
					}
					printf(cmd, "journal ok\n")
				}
				for _, r := range e.Journal(after, limit) {
					ev, err := r.Event()
					if err != nil {
						return err
					}
					printf(cmd, "%6d  %s  %-28s %s", r.Seq, r.At.UTC().Format(time.RFC3339), r.Kind, hex.EncodeToString(r.Hash[:8]))
					fields := event.Fields(ev)
					delete(fields, "event")
					keys := make([]string, 0, len(fields))
					for k := range fields {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					for _, k := range keys {
						printf(cmd, "  %s=%v", k, fields[k])
					}
					printf(cmd, "\n")
				}
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&after, "after", 0, "only records after this sequence number")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records to print (0 for all)")
	cmd.Flags().BoolVar(&verify, "verify", false, "verify the hash chain first")
	return cmd
}
