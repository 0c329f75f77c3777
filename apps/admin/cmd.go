package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/homework"
	"github.com/trezcool/darasa/core/leaderboard"
	"github.com/trezcool/darasa/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	store core.DocumentStore
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  seed-homework -tenant TENANT -grade GRADE -subject SUBJECT -title TITLE -due DUE [-description TEXT] - publish a homework")
	fmt.Fprintln(cli.out, "  leaderboard -tenant TENANT - print the tenant's current ranking")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed-homework", flag.ContinueOnError)
	seedTenant := seedCmd.String("tenant", "", "The school the homework belongs to.")
	seedGrade := seedCmd.Int("grade", 0, "The grade the homework targets.")
	seedSubject := seedCmd.String("subject", "", "The subject tag.")
	seedTitle := seedCmd.String("title", "", "The homework title.")
	seedDue := seedCmd.String("due", "", "The due date, free-form.")
	seedDescription := seedCmd.String("description", "", "Optional description.")

	boardCmd := flag.NewFlagSet("leaderboard", flag.ContinueOnError)
	boardTenant := boardCmd.String("tenant", "", "The school to rank.")

	switch args[1] {
	case "seed-homework":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedTenant == "" || *seedGrade == 0 || *seedSubject == "" || *seedTitle == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seedHomework(*seedTenant, *seedGrade, *seedSubject, *seedTitle, *seedDescription, *seedDue)
	case "leaderboard":
		if err := boardCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *boardTenant == "" {
			boardCmd.Usage()
			return errHelp
		}
		return cli.leaderboard(*boardTenant)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) seedHomework(tenant string, grade int, subject, title, description, due string) error {
	id, err := cli.store.Add(context.Background(), homework.Collection, map[string]interface{}{
		"tenantId":    tenant,
		"grade":       grade,
		"subject":     core.CleanString(subject),
		"title":       core.CleanString(title),
		"description": core.CleanString(description),
		"dueDate":     core.CleanString(due),
		"createdAt":   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "homework created: %s\n", id)
	return nil
}

func (cli *commandLine) leaderboard(tenant string) error {
	docs, err := cli.store.Query(context.Background(), student.Collection,
		core.Filter{Field: "tenantId", Value: tenant},
	)
	if err != nil {
		return err
	}
	students := make([]student.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, student.FromDocument(doc))
	}
	for _, e := range leaderboard.Rank(students) {
		fmt.Fprintf(cli.out, "#%d %s (%d topics)\n", e.Rank, e.Name, e.Completed)
	}
	return nil
}
