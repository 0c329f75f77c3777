package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/identity"
	"github.com/trezcool/darasa/core/leaderboard"
	"github.com/trezcool/darasa/core/student"
	logsvc "github.com/trezcool/darasa/services/logger"
	firestoredb "github.com/trezcool/darasa/storage/document/firestore"
	inmemstore "github.com/trezcool/darasa/storage/document/inmem"
	sqlitekv "github.com/trezcool/darasa/storage/kv"
)

// Headless shell: resolves the local identity, opens the live leaderboard
// for the session's tenant and prints every refresh until interrupted. The
// mobile shells wire the same services; this binary is the dev smoke run.
func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "APP : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	ctx := context.Background()

	// local preference store
	kv, err := sqlitekv.Open(conf.DataDir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening preference store: %v", err), err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error("closing preference store", err)
		}
	}()

	// hosted document store; in-memory when no project is configured (dev mode)
	var store core.DocumentStore
	if conf.FirestoreProject != "" {
		fs, err := firestoredb.Open(ctx, conf.FirestoreProject, logger)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening document store: %v", err), err)
		}
		defer fs.Close()
		store = fs
	} else {
		logger.Info("no project configured; using an in-memory store")
		mem := inmemstore.New()
		seedDevStudents(ctx, mem, conf.DefaultTenant)
		store = mem
	}

	// =========================================================================
	// Resolve Identity & Start

	// the native shell owns the live auth session; outside it only the
	// persisted fallback applies.
	id := identity.NewResolver(nil, kv).Resolve()
	sess := core.NewSessionContext(id.UID, kv, conf)

	students := student.NewService(store, sess, logger)

	logger.Info(fmt.Sprintf("%s initializing : version %q : tenant %q : uid %q (anonymous=%t)",
		conf.AppName, conf.Build, sess.Tenant.ID, sess.UID, sess.Anonymous))
	defer logger.Info(conf.AppName + " stopped")

	sub, err := students.Watch(ctx, func(snapshot []student.Student) {
		for _, e := range leaderboard.Rank(snapshot) {
			logger.Info(fmt.Sprintf("#%d %s (%d topics)", e.Rank, e.Name, e.Completed))
		}
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("subscribing to leaderboard: %v", err), err)
	}
	defer sub.Close()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: shutting down", sig))
}

func seedDevStudents(ctx context.Context, store core.DocumentStore, tenant string) {
	now := time.Now().UTC()
	seeds := []map[string]interface{}{
		{"name": "Asha", "grade": 7, "tenantId": tenant, "completedTopics": []string{"fractions", "decimals"}, "createdAt": now},
		{"name": "Brian", "grade": 7, "tenantId": tenant, "completedTopics": []string{"fractions"}, "createdAt": now},
		{"name": "Chiku", "grade": 7, "tenantId": tenant, "completedTopics": []string{}, "createdAt": now},
	}
	for _, fields := range seeds {
		_, _ = store.Add(ctx, student.Collection, fields)
	}
}
