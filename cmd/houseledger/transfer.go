package main

import (
	"github.com/urfave/cli/v2"
)

var transfer = cli.Command{
	Name:  "transfer",
	Usage: "move credit between the master account and a child account",
	Subcommands: []*cli.Command{
		{
			Name:   "from_master",
			Usage:  "credit a child account with funds of the master account",
			Action: transferFromMasterAction,
			Flags:  []cli.Flag{&accountFlag, &amountFlag, &satsFlag},
		},
		{
			Name:   "to_master",
			Usage:  "give credit of a child account back to the master account",
			Action: transferToMasterAction,
			Flags:  []cli.Flag{&accountFlag, &amountFlag, &satsFlag},
		},
	},
}

func transferFromMasterAction(ctx *cli.Context) error {
	return transferAction(ctx, "transfer/from_master")
}

func transferToMasterAction(ctx *cli.Context) error {
	return transferAction(ctx, "transfer/to_master")
}

func transferAction(ctx *cli.Context, action string) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	body, err := amountBody(ctx)
	if err != nil {
		return err
	}

	resp, err := client.post(accountPath(ctx, action), body)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
