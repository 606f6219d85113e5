package clock_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemosyneco/keep/pkg/clock"
)

var _ = Describe("Parse", func() {
	It("parses Z-suffixed timestamps", func() {
		t, ok := clock.Parse("2026-03-01T12:00:00Z")
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	})

	It("parses explicit positive offsets", func() {
		t, ok := clock.Parse("2026-03-01T21:00:00+09:00")
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	})

	It("parses explicit negative offsets", func() {
		t, ok := clock.Parse("2026-03-01T07:00:00-05:00")
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	})

	It("normalizes all encodings of one instant to the same UTC instant", func() {
		forms := []string{
			"2026-03-01T12:00:00Z",
			"2026-03-01T12:00:00+00:00",
			"2026-03-01T07:00:00-05:00",
			"2026-03-01T21:00:00+09:00",
		}
		want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		for _, form := range forms {
			t, ok := clock.Parse(form)
			Expect(ok).To(BeTrue(), form)
			Expect(t).To(Equal(want), form)
		}
	})

	It("treats offset-naive timestamps as UTC", func() {
		t, ok := clock.Parse("2026-03-01T12:00:00")
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	})

	It("parses fractional seconds", func() {
		t, ok := clock.Parse("2026-03-01T12:00:00.500Z")
		Expect(ok).To(BeTrue())
		Expect(t.Nanosecond()).To(Equal(500000000))
	})

	It("parses bare dates", func() {
		t, ok := clock.Parse("2026-03-01")
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	})

	It("rejects garbage without raising", func() {
		_, ok := clock.Parse("not-a-timestamp")
		Expect(ok).To(BeFalse())
	})

	It("rejects empty and whitespace-only input", func() {
		_, ok := clock.Parse("")
		Expect(ok).To(BeFalse())

		_, ok = clock.Parse("   ")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Age", func() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	It("returns the elapsed duration for past instants", func() {
		Expect(clock.Age(now, now.Add(-48*time.Hour))).To(Equal(48 * time.Hour))
	})

	It("clamps future instants to zero", func() {
		Expect(clock.Age(now, now.Add(time.Hour))).To(Equal(time.Duration(0)))
	})

	It("treats the zero time as maximally stale", func() {
		Expect(clock.Age(now, time.Time{})).To(BeNumerically(">", 365*24*time.Hour))
	})

	It("converts to fractional days", func() {
		Expect(clock.AgeDays(now, now.Add(-36*time.Hour))).To(BeNumerically("~", 1.5, 1e-9))
	})
})

var _ = Describe("Clocks", func() {
	It("pins Fixed to the given instant in UTC", func() {
		est := time.FixedZone("EST", -5*3600)
		local := time.Date(2026, 3, 1, 7, 0, 0, 0, est)
		c := clock.At(local)
		Expect(c.Now()).To(Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	})

	It("returns UTC from System", func() {
		Expect(clock.System{}.Now().Location()).To(Equal(time.UTC))
	})
})
