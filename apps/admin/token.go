package main

import (
	"context"
	"fmt"

	"github.com/sabaq/backend/apps/api/echo"
)

func (cli *commandLine) token(ctx context.Context, uname string) error {
	usr, err := cli.usrSvc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, cli.conf), cli.conf.SecretKey)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, token)
	return nil
}
