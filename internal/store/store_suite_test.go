// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

package store_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/preppathway/preppathway/internal/store"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

var _ = Describe("MigrationName", func() {
	It("resolves the accounts migration", func() {
		name, err := store.MigrationName(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("000001_accounts"))
	})

	It("resolves the sessions migration", func() {
		name, err := store.MigrationName(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("000002_sessions"))
	})

	It("resolves the password resets migration", func() {
		name, err := store.MigrationName(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("000003_password_resets"))
	})

	It("returns empty for an unknown version", func() {
		name, err := store.MigrationName(99)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(BeEmpty())
	})
})
