package main

import (
	"github.com/urfave/cli/v2"
)

var pending = cli.Command{
	Name:   "pending",
	Usage:  "list the unconfirmed spends of an account",
	Action: pendingAction,
	Flags:  []cli.Flag{&accountFlag},
	Subcommands: []*cli.Command{
		{
			Name:   "refresh",
			Usage:  "drop the pending transactions that got confirmed",
			Action: refreshPendingAction,
		},
	},
}

func pendingAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	resp, err := client.get(accountPath(ctx, "pending"))
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func refreshPendingAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	resp, err := client.post("/v1/pending/refresh", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
