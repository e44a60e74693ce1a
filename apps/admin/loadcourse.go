package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/sabaq/backend/core/course"
)

func (cli *commandLine) loadCourse(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening course file")
	}
	defer func() { _ = f.Close() }()

	content, err := course.LoadCourseContent(f)
	if err != nil {
		return err
	}
	crs, err := cli.courseSvc.ImportCourse(ctx, cli.validate, content)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "created course %q (id %d) with %d topics\n", crs.Title, crs.ID, len(content.Topics))
	return nil
}
