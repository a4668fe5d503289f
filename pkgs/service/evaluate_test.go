package service

import (
	"sync/atomic"
	"testing"

	"challenge-orchestrator/pkgs/store"

	"github.com/stretchr/testify/assert"
)

type stubLicense struct {
	verdicts map[string]bool
	calls    int32
}

func (s *stubLicense) Check(repoURL string) (bool, string) {
	atomic.AddInt32(&s.calls, 1)
	if pass, ok := s.verdicts[repoURL]; ok && pass {
		return true, "MIT found on main"
	}
	return false, "Error fetching LICENSE: connection refused"
}

type stubPage struct {
	verdicts map[string]bool
	calls    int32
}

func (s *stubPage) Check(pageURL string) (bool, string) {
	atomic.AddInt32(&s.calls, 1)
	if pass, ok := s.verdicts[pageURL]; ok && pass {
		return true, "Required element exists"
	}
	return false, "Element missing"
}

func quietEvaluator(license LicenseChecker, page PageChecker) *Evaluator {
	e := NewEvaluator(license, page)
	e.Pause = 0
	return e
}

func TestEvaluateChecksAreIndependent(t *testing.T) {
	license := &stubLicense{} // always errors
	page := &stubPage{verdicts: map[string]bool{"https://alice.github.io/repo/": true}}

	v := quietEvaluator(license, page).Evaluate(store.RosterEntry{
		Email:    "alice@example.com",
		RepoURL:  "https://github.com/alice/repo",
		PagesURL: "https://alice.github.io/repo/",
	})

	// A license fetch failure never blocks the page check.
	assert.False(t, v.LicensePass)
	assert.Contains(t, v.LicenseReason, "Error fetching LICENSE:")
	assert.True(t, v.PagePass)
	assert.Equal(t, "Required element exists", v.PageReason)
	assert.Equal(t, int32(1), atomic.LoadInt32(&page.calls))
}

func TestEvaluateMissingRepoShortCircuits(t *testing.T) {
	license := &stubLicense{}
	page := &stubPage{}

	v := quietEvaluator(license, page).Evaluate(store.RosterEntry{
		Email:    "bob@example.com",
		PagesURL: "https://bob.github.io/repo/",
	})

	assert.False(t, v.LicensePass)
	assert.Equal(t, "not applicable", v.LicenseReason)
	assert.Equal(t, int32(0), atomic.LoadInt32(&license.calls), "no network call for an absent repo url")
	assert.Equal(t, int32(1), atomic.LoadInt32(&page.calls))
}

func TestEvaluateAllYieldsVerdictPerEntry(t *testing.T) {
	entries := []store.RosterEntry{
		{Email: "a@example.com", RepoURL: "https://github.com/a/r", PagesURL: "https://a.github.io/r/"},
		{Email: "b@example.com", RepoURL: "https://github.com/b/r", PagesURL: "https://b.github.io/r/"},
		{Email: "c@example.com", RepoURL: "https://github.com/c/r", PagesURL: "https://c.github.io/r/"},
	}
	license := &stubLicense{verdicts: map[string]bool{"https://github.com/b/r": true}}
	page := &stubPage{verdicts: map[string]bool{"https://a.github.io/r/": true, "https://b.github.io/r/": true}}

	results := quietEvaluator(license, page).EvaluateAll(entries)

	assert.Len(t, results, len(entries))
	for i, r := range results {
		assert.Equal(t, entries[i].Email, r.Entry.Email)
	}
	assert.False(t, results[0].Verdict.LicensePass)
	assert.True(t, results[0].Verdict.PagePass)
	assert.True(t, results[1].Verdict.LicensePass)
	assert.True(t, results[1].Verdict.PagePass)
	assert.False(t, results[2].Verdict.LicensePass)
	assert.False(t, results[2].Verdict.PagePass)
}

func TestEvaluateAllBoundedParallel(t *testing.T) {
	entries := make([]store.RosterEntry, 8)
	for i := range entries {
		entries[i] = store.RosterEntry{Email: "p@example.com", PagesURL: "https://p.github.io/r/"}
	}
	e := quietEvaluator(&stubLicense{}, &stubPage{verdicts: map[string]bool{"https://p.github.io/r/": true}})
	e.Workers = 3

	results := e.EvaluateAll(entries)

	assert.Len(t, results, len(entries))
	for _, r := range results {
		assert.True(t, r.Verdict.PagePass)
	}
}
