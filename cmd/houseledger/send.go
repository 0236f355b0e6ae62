package main

import (
	"github.com/urfave/cli/v2"
)

var (
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "the amount in BTC, like 0.015",
	}
	satsFlag = cli.Uint64Flag{
		Name:  "sats",
		Usage: "the amount in satoshis, alternative to --amount",
	}
)

var send = cli.Command{
	Name:   "send",
	Usage:  "pay an amount to a bitcoin address on behalf of an account",
	Action: sendAction,
	Flags: []cli.Flag{
		&accountFlag,
		&amountFlag,
		&satsFlag,
		&cli.StringFlag{
			Name:     "destination",
			Usage:    "the bitcoin address to pay",
			Required: true,
		},
	},
}

func sendAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	body, err := amountBody(ctx)
	if err != nil {
		return err
	}
	body["destination"] = ctx.String("destination")

	resp, err := client.post(accountPath(ctx, "spend"), body)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func amountBody(ctx *cli.Context) (map[string]interface{}, error) {
	btc, sats := ctx.String("amount"), ctx.Uint64("sats")
	if (btc == "") == (sats == 0) {
		return nil, &invalidUsageError{ctx, ctx.Command.Name}
	}
	if btc != "" {
		return map[string]interface{}{"amount_btc": btc}, nil
	}
	return map[string]interface{}{"amount_sats": sats}, nil
}
