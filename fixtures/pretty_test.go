package fixtures

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	"github.com/flanksource/verdict/models"
)

var _ = Describe("Match Outcome Pretty", func() {
	DescribeTable("should format outcomes correctly",
		func(outcome models.MatchOutcome, expectedContains []string) {
			output, err := clicky.Format(outcome)
			Expect(err).NotTo(HaveOccurred())
			Expect(output).NotTo(BeEmpty())

			switch outcome.Status {
			case task.StatusPASS:
				Expect(output).To(MatchRegexp("PASS|✓"))
			case task.StatusFAIL, task.StatusFailed:
				Expect(output).To(MatchRegexp("failed|FAIL|✗"))
			case task.StatusSKIP:
				Expect(output).To(MatchRegexp("SKIP|○|⊘"))
			}
		},
		Entry("passing fixture",
			models.MatchOutcome{
				Fixture:  "clean-crate",
				Expected: models.ExpectClean,
				Status:   task.StatusPASS,
				Duration: 1200 * time.Millisecond,
			},
			[]string{"✓", "clean-crate", "1.2s"}),

		Entry("failing fixture with reason",
			models.MatchOutcome{
				Fixture:  "bad-lint",
				Expected: models.ExpectLintIssues,
				Status:   task.StatusFAIL,
				Duration: 500 * time.Millisecond,
				Reason:   "expected lint issues, found none",
			},
			[]string{"✗", "bad-lint", "expected lint issues, found none"}),

		Entry("excluded fixture",
			models.MatchOutcome{
				Fixture: "broken-manifest",
				Status:  task.StatusSKIP,
				Reason:  "invalid manifest",
			},
			[]string{"○", "broken-manifest"}),

		Entry("fixture with diagnostics attached",
			models.MatchOutcome{
				Fixture:  "bad-both",
				Expected: models.ExpectBoth,
				Status:   task.StatusPASS,
				Analysis: &models.AnalysisResult{
					Diagnostics: []models.DiagnosticRecord{
						{Kind: models.KindLint, Rule: "clippy::needless_return", Message: "unneeded return"},
						{Kind: models.KindFormat, Message: "formatting differs"},
					},
				},
			},
			[]string{"✓", "bad-both", "1 lint", "1 format"}),
	)
})

var _ = Describe("Run Stats", func() {
	DescribeTable("should detect failures correctly",
		func(stats models.Stats, ok bool, hasFailures bool) {
			Expect(stats.IsOK()).To(Equal(ok))
			Expect(stats.HasFailures()).To(Equal(hasFailures))
		},
		Entry("all passed",
			models.Stats{Total: 3, Passed: 3},
			true, false),

		Entry("has failures",
			models.Stats{Total: 3, Passed: 2, Failed: 1},
			false, true),

		Entry("excluded fixtures block a green run",
			models.Stats{Total: 3, Passed: 2, Excluded: 1},
			false, false),

		Entry("invocation errors count as failures",
			models.Stats{Total: 2, Passed: 1, Error: 1},
			false, true),

		Entry("empty run is not ok",
			models.Stats{},
			false, false),
	)
})
