package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/memory/inmemory"
)

// testRecord creates a simple record for testing with the given ID.
func testRecord(id string) memory.Record {
	return memory.Record{
		ID:          id,
		Content:     "content of " + id,
		Category:    "general",
		CreatedAt:   "2026-03-01T12:00:00Z",
		SuccessRate: 0.5,
	}
}

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
	})

	AfterEach(func() {
		driver.Close()
	})

	It("implements memory.Driver", func() {
		var _ memory.Driver = driver
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a record", func() {
			rec := testRecord("a")
			Expect(driver.Put(ctx, rec)).To(Succeed())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(rec))
		})

		It("replaces an existing record", func() {
			Expect(driver.Put(ctx, testRecord("a"))).To(Succeed())

			updated := testRecord("a")
			updated.Content = "replaced"
			Expect(driver.Put(ctx, updated)).To(Succeed())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Content).To(Equal("replaced"))
			Expect(driver.Count()).To(Equal(1))
		})

		It("rejects an empty ID", func() {
			Expect(driver.Put(ctx, memory.Record{})).To(HaveOccurred())
		})

		It("returns ErrNotFound for a missing record", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(MatchError(memory.ErrNotFound))
		})
	})

	Describe("List", func() {
		It("returns all records sorted by ID", func() {
			for _, id := range []string{"c", "a", "b"} {
				Expect(driver.Put(ctx, testRecord(id))).To(Succeed())
			}

			recs, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(3))
			Expect(recs[0].ID).To(Equal("a"))
			Expect(recs[1].ID).To(Equal("b"))
			Expect(recs[2].ID).To(Equal("c"))
		})

		It("returns an empty slice for an empty store", func() {
			recs, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(BeEmpty())
		})
	})

	Describe("Touch", func() {
		It("increments the access count and stamps last accessed", func() {
			Expect(driver.Put(ctx, testRecord("a"))).To(Succeed())

			now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
			Expect(driver.Touch(ctx, "a", now)).To(Succeed())
			Expect(driver.Touch(ctx, "a", now.Add(time.Hour))).To(Succeed())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AccessCount).To(Equal(2))
			Expect(got.LastAccessed).To(Equal("2026-03-02T10:30:00Z"))
		})

		It("returns ErrNotFound for a missing record", func() {
			Expect(driver.Touch(ctx, "missing", time.Now())).To(MatchError(memory.ErrNotFound))
		})
	})

	Describe("UpdateOutcome", func() {
		It("folds a success into the rate", func() {
			Expect(driver.Put(ctx, testRecord("a"))).To(Succeed())
			Expect(driver.UpdateOutcome(ctx, "a", true)).To(Succeed())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SuccessRate).To(BeNumerically("~", 0.6, 1e-9))
		})

		It("folds a failure into the rate", func() {
			Expect(driver.Put(ctx, testRecord("a"))).To(Succeed())
			Expect(driver.UpdateOutcome(ctx, "a", false)).To(Succeed())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SuccessRate).To(BeNumerically("~", 0.4, 1e-9))
		})

		It("returns ErrNotFound for a missing record", func() {
			Expect(driver.UpdateOutcome(ctx, "missing", true)).To(MatchError(memory.ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes records and reports the count", func() {
			for _, id := range []string{"a", "b", "c"} {
				Expect(driver.Put(ctx, testRecord(id))).To(Succeed())
			}

			deleted, err := driver.Delete(ctx, []string{"a", "c", "unknown"})
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(Equal(2))
			Expect(driver.Count()).To(Equal(1))

			_, err = driver.Get(ctx, "a")
			Expect(err).To(MatchError(memory.ErrNotFound))
		})

		It("is a no-op for an empty ID list", func() {
			deleted, err := driver.Delete(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeZero())
		})
	})
})
