package harness

import (
	"sort"
	"sync"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/samber/lo"

	"github.com/flanksource/verdict/fixtures"
	"github.com/flanksource/verdict/models"
)

// Report is the ordered account of one run: exactly one outcome per
// fixture, including declarations that failed to load. Outcomes arrive
// concurrently but always render in name order, so two runs over the same
// fixtures produce identical reports.
type Report struct {
	WorkDir  string        `json:"work_dir,omitempty"`
	Git      *GitInfo      `json:"git,omitempty"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration,omitempty"`

	mu       sync.Mutex
	recorded map[string]models.MatchOutcome
}

func NewReport(workDir string) *Report {
	return &Report{
		WorkDir:  workDir,
		Git:      CollectGitInfo(workDir),
		Started:  time.Now(),
		recorded: make(map[string]models.MatchOutcome),
	}
}

// Record stores one fixture's outcome. Recording the same fixture again
// replaces the earlier entry, so re-verification cannot duplicate it.
func (r *Report) Record(outcome models.MatchOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded[outcome.Fixture] = outcome
}

// Finish marks every fixture that never reported as cancelled and freezes
// the duration. Calling it again changes nothing.
func (r *Report) Finish(selected []fixtures.Fixture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fixture := range selected {
		if _, ok := r.recorded[fixture.Name]; !ok {
			r.recorded[fixture.Name] = fixture.Outcome().Cancelf("run cancelled")
		}
	}
	if r.Duration == 0 {
		r.Duration = time.Since(r.Started)
	}
}

// Outcomes returns every recorded outcome sorted by fixture name.
func (r *Report) Outcomes() []models.MatchOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcomes := lo.Values(r.recorded)
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Fixture < outcomes[j].Fixture
	})
	return outcomes
}

// Stats folds every outcome into run totals.
func (r *Report) Stats() models.Stats {
	stats := models.Stats{}
	for _, outcome := range r.Outcomes() {
		outcome := outcome
		stats = stats.Add(&outcome)
	}
	return stats
}

func (r *Report) IsOK() bool {
	return r.Stats().IsOK()
}

// ExitCode is 0 only for a fully green run: every fixture verified and
// passed, nothing excluded, errored or cancelled.
func (r *Report) ExitCode() int {
	if r.IsOK() {
		return 0
	}
	return 1
}

// Summary is the serializable form of a report for structured output.
type Summary struct {
	WorkDir  string                `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`
	Git      *GitInfo              `json:"git,omitempty" yaml:"git,omitempty"`
	Started  time.Time             `json:"started" yaml:"started"`
	Duration time.Duration         `json:"duration,omitempty" yaml:"duration,omitempty"`
	Stats    models.Stats          `json:"stats" yaml:"stats"`
	Outcomes []models.MatchOutcome `json:"outcomes" yaml:"outcomes"`
}

func (r *Report) Summary() Summary {
	return Summary{
		WorkDir:  r.WorkDir,
		Git:      r.Git,
		Started:  r.Started,
		Duration: r.Duration,
		Stats:    r.Stats(),
		Outcomes: r.Outcomes(),
	}
}

// Pretty renders one line per fixture followed by the run totals and the
// provenance footer.
func (s Summary) Pretty() api.Text {
	t := clicky.Text("")
	for _, outcome := range s.Outcomes {
		t = t.Add(outcome.Pretty()).NewLine()
	}

	t = t.Add(s.Stats.Pretty())
	t = t.Add(clicky.KeyValue(" duration", s.Duration.Round(time.Millisecond), "muted"))
	if s.Git != nil {
		t = t.NewLine().Append(s.Git.String(), "text-gray-500")
	}
	return t
}

func (r *Report) Pretty() api.Text {
	return r.Summary().Pretty()
}

func (r *Report) String() string {
	return r.Pretty().String()
}
