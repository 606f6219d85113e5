package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/memory/sqlite"
)

// sqliteTestRecord creates a simple record for testing with the given ID.
func sqliteTestRecord(id string) memory.Record {
	return memory.Record{
		ID:          id,
		Content:     "content of " + id,
		SizeBytes:   64,
		Category:    "general",
		CreatedAt:   "2026-03-01T12:00:00Z",
		SuccessRate: 0.5,
	}
}

var _ = Describe("Driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewDriver(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	It("implements memory.Driver", func() {
		var _ memory.Driver = driver
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			s, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			// Verify file was created
			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("persists records across reopen", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			s, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Put(ctx, sqliteTestRecord("a"))).To(Succeed())
			Expect(s.Close()).To(Succeed())

			reopened, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			got, err := reopened.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Content).To(Equal("content of a"))
		})
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a record with all fields", func() {
			rec := sqliteTestRecord("a")
			rec.LastAccessed = "2026-03-02T08:00:00Z"
			rec.AccessCount = 7
			rec.ErrorRelated = true
			rec.SolutionRelated = true

			Expect(driver.Put(ctx, rec)).To(Succeed())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(rec))
		})

		It("upserts on duplicate ID", func() {
			Expect(driver.Put(ctx, sqliteTestRecord("a"))).To(Succeed())

			updated := sqliteTestRecord("a")
			updated.Content = "replaced"
			Expect(driver.Put(ctx, updated)).To(Succeed())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Content).To(Equal("replaced"))

			recs, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))
		})

		It("returns ErrNotFound for a missing record", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(MatchError(memory.ErrNotFound))
		})
	})

	Describe("List", func() {
		It("returns all records sorted by ID", func() {
			for _, id := range []string{"c", "a", "b"} {
				Expect(driver.Put(ctx, sqliteTestRecord(id))).To(Succeed())
			}

			recs, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(3))
			Expect(recs[0].ID).To(Equal("a"))
			Expect(recs[2].ID).To(Equal("c"))
		})
	})

	Describe("Touch", func() {
		It("increments the access count and stamps last accessed", func() {
			Expect(driver.Put(ctx, sqliteTestRecord("a"))).To(Succeed())

			now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
			Expect(driver.Touch(ctx, "a", now)).To(Succeed())

			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AccessCount).To(Equal(1))
			Expect(got.LastAccessed).To(Equal("2026-03-02T09:30:00Z"))
		})

		It("returns ErrNotFound for a missing record", func() {
			Expect(driver.Touch(ctx, "missing", time.Now())).To(MatchError(memory.ErrNotFound))
		})
	})

	Describe("UpdateOutcome", func() {
		It("folds outcomes into the success rate", func() {
			Expect(driver.Put(ctx, sqliteTestRecord("a"))).To(Succeed())

			Expect(driver.UpdateOutcome(ctx, "a", true)).To(Succeed())
			got, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SuccessRate).To(BeNumerically("~", 0.6, 1e-9))

			Expect(driver.UpdateOutcome(ctx, "a", false)).To(Succeed())
			got, err = driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SuccessRate).To(BeNumerically("~", 0.48, 1e-9))
		})

		It("returns ErrNotFound for a missing record", func() {
			Expect(driver.UpdateOutcome(ctx, "missing", true)).To(MatchError(memory.ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes records and reports the count", func() {
			for _, id := range []string{"a", "b", "c"} {
				Expect(driver.Put(ctx, sqliteTestRecord(id))).To(Succeed())
			}

			deleted, err := driver.Delete(ctx, []string{"a", "c", "unknown"})
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(Equal(2))

			recs, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].ID).To(Equal("b"))
		})

		It("is a no-op for an empty ID list", func() {
			deleted, err := driver.Delete(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeZero())
		})
	})
})
