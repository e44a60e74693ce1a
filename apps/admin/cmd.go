package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/core/user"
	"github.com/sabaq/backend/storage/cache"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	db        *sql.DB // nil on the in-memory store
	out       io.Writer
	usrSvc    *user.Service
	courseSvc *course.Service
	mailSvc   core.EmailService
	validate  *validator.Validate
	cache     cache.Client // optional
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                                    - run a goose command (up, down, status...)")
	_, _ = fmt.Fprintln(cli.out, "  adduser -username U -name N -role R [-email E] [-curator C] - create a user")
	_, _ = fmt.Fprintln(cli.out, "  enroll -username U -course ID                             - enroll a user in a course")
	_, _ = fmt.Fprintln(cli.out, "  token -username U                                         - print a signed API token")
	_, _ = fmt.Fprintln(cli.out, "  loadcourse -file FILE                                     - import a YAML course file")
	_, _ = fmt.Fprintln(cli.out, "  progressreport -curator U                                 - email a curator their students' progress")
	_, _ = fmt.Fprintln(cli.out, "  flushcache                                                - drop every cached course listing")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserRole := addUserCmd.String("role", user.RoleStudent, "curator | student | seller")
	addUserCurator := addUserCmd.String("curator", "", "The curator's username (students only).")

	enrollCmd := flag.NewFlagSet("enroll", flag.ExitOnError)
	enrollUname := enrollCmd.String("username", "", "The user's username.")
	enrollCourse := enrollCmd.Int("course", 0, "The course ID.")

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenUname := tokenCmd.String("username", "", "The user's username.")

	loadCourseCmd := flag.NewFlagSet("loadcourse", flag.ExitOnError)
	loadCourseFile := loadCourseCmd.String("file", "", "Path to the YAML course file.")

	reportCmd := flag.NewFlagSet("progressreport", flag.ExitOnError)
	reportCurator := reportCmd.String("curator", "", "The curator's username.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			_, _ = fmt.Fprintln(cli.out, "Usage: migrate COMMAND [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, user.NewUser{
			Username: *addUserUname,
			Name:     *addUserName,
			Email:    *addUserEmail,
			Role:     *addUserRole,
			Curator:  *addUserCurator,
		})
	case "enroll":
		if err := enrollCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *enrollUname == "" || *enrollCourse == 0 {
			enrollCmd.Usage()
			return errHelp
		}
		return cli.enroll(ctx, *enrollUname, *enrollCourse)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenUname == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(ctx, *tokenUname)
	case "loadcourse":
		if err := loadCourseCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loadCourseFile == "" {
			loadCourseCmd.Usage()
			return errHelp
		}
		return cli.loadCourse(ctx, *loadCourseFile)
	case "progressreport":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *reportCurator == "" {
			reportCmd.Usage()
			return errHelp
		}
		return cli.progressReport(ctx, *reportCurator)
	case "flushcache":
		return cli.flushCache(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}
