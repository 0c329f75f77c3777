package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	logsvc "github.com/trezcool/darasa/services/logger"
	firestoredb "github.com/trezcool/darasa/storage/document/firestore"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	if conf.FirestoreProject == "" {
		logger.Fatal("a firestore project must be configured for admin commands")
	}

	store, err := firestoredb.Open(context.Background(), conf.FirestoreProject, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening document store: %v", err), err)
	}
	defer store.Close()

	cli := &commandLine{store: store, out: os.Stdout}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		logger.Fatal(fmt.Sprintf("admin command failed: %v", err), err)
	}
}
