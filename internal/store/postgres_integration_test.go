// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

//go:build integration

package store_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/muvr/profile/internal/entity"
	"github.com/muvr/profile/internal/store"
	"github.com/muvr/profile/internal/user"
)

func startPostgres(ctx context.Context) (string, func(), error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("profile_test"),
		postgres.WithUsername("profile"),
		postgres.WithPassword("profile"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return "", nil, err
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}
	return dsn, func() { _ = container.Terminate(ctx) }, nil
}

var _ = Describe("PostgresEventLog", func() {
	var (
		ctx      context.Context
		log      *store.PostgresEventLog
		teardown func()
	)

	BeforeEach(func() {
		ctx = context.Background()
		dsn, stop, err := startPostgres(ctx)
		Expect(err).NotTo(HaveOccurred())

		migrator, err := store.NewMigrator(dsn)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		log, err = store.Connect(ctx, dsn, store.ConnectOptions{MaxRetries: 5, BaseDelay: 100 * time.Millisecond})
		Expect(err).NotTo(HaveOccurred())

		teardown = func() {
			log.Close()
			stop()
		}
	})

	AfterEach(func() {
		teardown()
	})

	It("reads back appended events in order", func() {
		stream := entity.StreamName("alice")
		registered := user.Registered{Algorithm: user.AlgorithmSHA512, PasswordHash: []byte{1, 2, 3}, PasswordSalt: "ff"}
		profile := user.PublicProfileSet{Profile: user.PublicProfile{FirstName: "Alice", LastName: "Smith", Age: 30}}

		Expect(log.Append(ctx, stream, 1, registered)).To(Succeed())
		Expect(log.Append(ctx, stream, 2, profile)).To(Succeed())

		events, err := log.Read(ctx, stream)
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(Equal([]user.Event{registered, profile}))
	})

	It("returns an empty slice for an unknown stream", func() {
		events, err := log.Read(ctx, entity.StreamName("nobody"))
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())
	})

	It("reports a sequence conflict when a position is taken", func() {
		stream := entity.StreamName("bob")
		Expect(log.Append(ctx, stream, 1, user.PublicProfileSet{})).To(Succeed())

		err := log.Append(ctx, stream, 1, user.PublicProfileSet{})
		Expect(err).To(MatchError(entity.ErrSequenceConflict))
	})

	It("accepts exactly one of many racing writers", func() {
		stream := entity.StreamName("carol")
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)
		for range 10 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				if err := log.Append(ctx, stream, 1, user.PublicProfileSet{}); err == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		Expect(accepted).To(Equal(1))
	})

	It("restores an entity through a fresh registry", func() {
		decider, err := user.NewDecider(user.DeciderConfig{Algorithm: user.AlgorithmArgon2id})
		Expect(err).NotTo(HaveOccurred())

		first, err := entity.NewRegistry(entity.Config{Log: log, Decider: decider})
		Expect(err).NotTo(HaveOccurred())
		_, err = first.Submit(ctx, "dana", user.Register{Password: "hunter2"})
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Close()).To(Succeed())

		second, err := entity.NewRegistry(entity.Config{Log: log, Decider: decider})
		Expect(err).NotTo(HaveOccurred())
		defer second.Close()

		reply, err := second.Submit(ctx, "dana", user.Login{Password: "hunter2"})
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(BeAssignableToTypeOf(user.Token("")))
	})
})
