package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) enroll(ctx context.Context, uname string, courseID int) error {
	usr, err := cli.usrSvc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if _, err = cli.courseSvc.Enroll(ctx, usr, courseID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%q enrolled in course %d\n", usr.Username, courseID)
	return nil
}
