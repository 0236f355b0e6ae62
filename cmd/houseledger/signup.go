package main

import (
	"github.com/urfave/cli/v2"
)

var signup = cli.Command{
	Name:   "signup",
	Usage:  "sign up a new user and create the account they own",
	Action: signUpAction,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Usage:    "the username of the new user",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "email",
			Usage:    "the email of the new user",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "first_name",
			Usage: "the first name of the new user",
		},
		&cli.StringFlag{
			Name:  "last_name",
			Usage: "the last name of the new user",
		},
		&cli.StringSliceFlag{
			Name:  "permission",
			Usage: "a permission of the account, either send or receive. Defaults to receive",
		},
	},
}

func signUpAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	resp, err := client.post("/v1/sign_up", map[string]interface{}{
		"username":    ctx.String("username"),
		"email":       ctx.String("email"),
		"first_name":  ctx.String("first_name"),
		"last_name":   ctx.String("last_name"),
		"permissions": ctx.StringSlice("permission"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
