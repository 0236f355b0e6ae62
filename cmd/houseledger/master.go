package main

import (
	"github.com/urfave/cli/v2"
)

var master = cli.Command{
	Name:   "master",
	Usage:  "get the global view of the shared wallet",
	Action: masterAction,
}

func masterAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	resp, err := client.get("/v1/master")
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
