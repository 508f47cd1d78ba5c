package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/conversion"
	"github.com/bitfsorg/libyield-go/engine"
)

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Manage time-locked conversion requests",
	}
	cmd.AddCommand(
		newConvertRequestCmd(a),
		newConvertTransitionCmd(a, "process", "Mark a pending request as processing (owner)",
			(*engine.Engine).MarkAsProcessing),
		newConvertTransitionCmd(a, "complete", "Complete a request whose lock has expired (owner)",
			(*engine.Engine).CompleteConversion),
		newConvertTransitionCmd(a, "cancel", "Cancel an open request (owner)",
			(*engine.Engine).CancelRequest),
		newConvertShowCmd(a),
		newConvertListCmd(a),
	)
	return cmd
}

func newConvertRequestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "request <amount>",
		Short: "Lock an amount of --as for conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := a.parseAmount(args[0])
			if err != nil {
				return err
			}
			return a.withEngine(func(e *engine.Engine) error {
				requester, err := a.caller(e)
				if err != nil {
					return err
				}
				id, err := e.RequestConversion(requester, amount)
				if err != nil {
					return err
				}
				req, err := e.Request(id)
				if err != nil {
					return err
				}
				printf(cmd, "request %d: %s locked until %s\n",
					id, a.formatAmount(req.Amount), req.LockedUntil.UTC().Format(time.RFC3339))
				return nil
			})
		},
	}
}

func newConvertTransitionCmd(a *app, use, short string,
	op func(*engine.Engine, account.Address, uint64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withEngine(func(e *engine.Engine) error {
				caller, err := a.caller(e)
				if err != nil {
					return err
				}
				if err := op(e, caller, id); err != nil {
					return err
				}
				req, err := e.Request(id)
				if err != nil {
					return err
				}
				printf(cmd, "request %d: %s\n", id, req.Status)
				return nil
			})
		},
	}
}

func newConvertShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withEngine(func(e *engine.Engine) error {
				req, err := e.Request(id)
				if err != nil {
					return err
				}
				printf(cmd, "id:           %d\n", req.ID)
				printf(cmd, "requester:    %s\n", a.formatAddr(req.Requester))
				printf(cmd, "amount:       %s\n", a.formatAmount(req.Amount))
				printf(cmd, "status:       %s\n", req.Status)
				printf(cmd, "requested at: %s\n", req.RequestedAt.UTC().Format(time.RFC3339))
				printf(cmd, "locked until: %s\n", req.LockedUntil.UTC().Format(time.RFC3339))
				return nil
			})
		},
	}
}

func newConvertListCmd(a *app) *cobra.Command {
	var (
		user          string
		offset, limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open requests, or every request of --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(e *engine.Engine) error {
				var reqs []*conversion.Request
				if user != "" {
					who, err := account.Parse(user)
					if err != nil {
						return err
					}
					for _, id := range e.UserRequests(who) {
						r, err := e.Request(id)
						if err != nil {
							return err
						}
						reqs = append(reqs, r)
					}
				} else {
					reqs = e.PendingRequests(offset, limit)
				}
				for _, r := range reqs {
					printf(cmd, "%6d  %-10s  %s  %s  %s\n", r.ID, r.Status, a.formatAddr(r.Requester),
						a.formatAmount(r.Amount), r.LockedUntil.UTC().Format(time.RFC3339))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "list all requests of this account")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many open requests")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum open requests to list (0 for all)")
	return cmd
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid request id %q", s)
	}
	return id, nil
}
