package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/report"
	"github.com/trezcool/alama/storage/database"
	sqlxrepos "github.com/trezcool/alama/storage/database/sqlx"
	filedb "github.com/trezcool/alama/storage/file"
)

var (
	openSourceFunc = openSource // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  analytics -class ID     - class analytics dashboard")
	fmt.Println("  leaderboard -class ID   - class leaderboard with badges")
	fmt.Println("  rankings -section ID    - section rankings by GWA and per subject")
	fmt.Println("  grades -student ID      - a student's grades, GWA and GPA")
	fmt.Println("Every command also takes -source db|file and -file PATH.")
}

type command struct {
	flags *flag.FlagSet
	id    *int
	exec  func(ctx context.Context, svc *report.Service, id int) (interface{}, error)
}

func (cli *commandLine) newCommand(name, idFlag, idUsage string, exec func(context.Context, *report.Service, int) (interface{}, error)) *command {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cmd := &command{flags: fs, exec: exec}
	cmd.id = fs.Int(idFlag, 0, idUsage)
	fs.StringVar(&cli.conf.Source.Kind, "source", cli.conf.Source.Kind, "Where records are read from: db or file.")
	fs.StringVar(&cli.conf.Source.File, "file", cli.conf.Source.File, "YAML or JSON dataset, with -source file.")
	return cmd
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	commands := map[string]*command{
		"analytics": cli.newCommand("analytics", "class", "The class ID.",
			func(ctx context.Context, svc *report.Service, id int) (interface{}, error) {
				return svc.ClassAnalytics(ctx, id)
			}),
		"leaderboard": cli.newCommand("leaderboard", "class", "The class ID.",
			func(ctx context.Context, svc *report.Service, id int) (interface{}, error) {
				return svc.ClassLeaderboard(ctx, id)
			}),
		"rankings": cli.newCommand("rankings", "section", "The section ID.",
			func(ctx context.Context, svc *report.Service, id int) (interface{}, error) {
				return svc.SectionLeaderboard(ctx, id)
			}),
		"grades": cli.newCommand("grades", "student", "The student ID.",
			func(ctx context.Context, svc *report.Service, id int) (interface{}, error) {
				return svc.StudentGrades(ctx, id)
			}),
	}

	cmd, ok := commands[args[1]]
	if !ok {
		cli.printUsage()
		return errHelp
	}
	if err := cmd.flags.Parse(args[2:]); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	if *cmd.id <= 0 {
		cmd.flags.Usage()
		return errHelp
	}
	if err := cli.conf.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src, closeSource, err := openSourceFunc(ctx, cli.conf)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSource(); err != nil {
			cli.logger.Warn("closing source", err)
		}
	}()

	svc := report.NewService(src, cli.logger, report.OptionsFromConfig(cli.conf.Report))
	res, err := cmd.exec(ctx, svc, *cmd.id)
	if err != nil {
		return err
	}
	return cli.print(res)
}

func (cli *commandLine) print(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openSource(ctx context.Context, conf *core.Config) (report.Source, func() error, error) {
	if conf.Source.Kind == "file" {
		src, err := filedb.Open(conf.Source.File)
		if err != nil {
			return nil, nil, err
		}
		return src, func() error { return nil }, nil
	}

	db, err := database.Open(ctx, conf.Database)
	if err != nil {
		return nil, nil, err
	}
	return sqlxrepos.NewGradeRepository(db, conf.Database.Driver), db.Close, nil
}
