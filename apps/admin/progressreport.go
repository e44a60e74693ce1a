package main

import (
	"context"
	"fmt"

	"github.com/sabaq/backend/core/course"
)

func (cli *commandLine) progressReport(ctx context.Context, uname string) error {
	curator, err := cli.usrSvc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	report, err := cli.courseSvc.CuratorProgress(ctx, curator)
	if err != nil {
		return err
	}
	if curator.Email == "" {
		return fmt.Errorf("curator %q has no email", curator.Username)
	}
	cli.mailSvc.SendMessages(course.NewProgressReportMessage(curator, report))
	_, _ = fmt.Fprintf(cli.out, "progress of %d students sent to %s\n", len(report), curator.Email)
	return nil
}
