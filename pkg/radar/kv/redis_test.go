/*
Copyright 2025 Jordi Gil.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package kv_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/signalradar/core/pkg/radar/kv"
)

var _ = Describe("RedisStore", func() {
	var (
		ctx    context.Context
		server *miniredis.Miniredis
		store  *kv.RedisStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		server, err = miniredis.Run()
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(server.Close)

		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		store = kv.NewRedisStore(client)
	})

	It("returns ErrNotFound for an absent key", func() {
		_, err := store.Get(ctx, "missing")
		Expect(err).To(MatchError(kv.ErrNotFound))
	})

	It("round-trips a put value", func() {
		Expect(store.Put(ctx, "k", []byte("v"), 0)).To(Succeed())
		got, err := store.Get(ctx, "k")
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal([]byte("v")))
	})

	It("expires a key once its ttl elapses, via miniredis's FastForward", func() {
		Expect(store.Put(ctx, "k", []byte("v"), time.Second)).To(Succeed())
		server.FastForward(2 * time.Second)
		_, err := store.Get(ctx, "k")
		Expect(err).To(MatchError(kv.ErrNotFound))
	})
})
