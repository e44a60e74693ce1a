package main

import (
	"context"
	"fmt"

	"github.com/sabaq/backend/core/user"
)

func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser) error {
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "created %s %q (id %d)\n", usr.Role, usr.Username, usr.ID)
	return nil
}
