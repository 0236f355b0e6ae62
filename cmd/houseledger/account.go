package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var accountFlag = cli.IntFlag{
	Name:  "account",
	Usage: "the id of the account",
	Value: 1,
}

var balance = cli.Command{
	Name:   "balance",
	Usage:  "get the balance of an account",
	Action: balanceAction,
	Flags:  []cli.Flag{&accountFlag},
}

var address = cli.Command{
	Name:   "address",
	Usage:  "issue a new receive address for an account",
	Action: addressAction,
	Flags:  []cli.Flag{&accountFlag},
}

func balanceAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	resp, err := client.get(accountPath(ctx, "balance"))
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func addressAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	resp, err := client.post(accountPath(ctx, "address"), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func accountPath(ctx *cli.Context, action string) string {
	return fmt.Sprintf("/v1/accounts/%d/%s", ctx.Int("account"), action)
}
