package pipeline

import "time"

type invoiceCode struct {
	invoice string
	code    string
}

type openRun struct {
	length  int
	members []invoiceCode
}

// runTracker follows consecutive same-code rows through a single pass.
// A row continues its code's run when the previous row (qualifying or not)
// had the same code, or when the previous timestamp seen for that code is
// within window of the row's own.
type runTracker struct {
	window   time.Duration
	prevCode string
	lastTime map[string]time.Time
	open     map[string]*openRun
	best     map[invoiceCode]int
}

func newRunTracker(window time.Duration) *runTracker {
	return &runTracker{
		window:   window,
		lastTime: map[string]time.Time{},
		open:     map[string]*openRun{},
		best:     map[invoiceCode]int{},
	}
}

// skip records a row that did not qualify for the mapping.
func (t *runTracker) skip(code string) {
	t.prevCode = code
}

func (t *runTracker) observe(invoice, code string, ts time.Time, hasTime bool) {
	member := invoiceCode{invoice: invoice, code: code}

	if t.continues(code, ts, hasTime) {
		run := t.open[code]
		if run == nil {
			run = &openRun{}
			t.open[code] = run
		}
		run.length++
		run.members = append(run.members, member)
	} else {
		t.close(code)
		t.open[code] = &openRun{length: 1, members: []invoiceCode{member}}
	}

	if hasTime {
		t.lastTime[code] = ts
	}
	t.prevCode = code
}

func (t *runTracker) continues(code string, ts time.Time, hasTime bool) bool {
	if t.prevCode == code {
		return true
	}
	last, ok := t.lastTime[code]
	if !ok || !hasTime {
		return false
	}
	return ts.Sub(last).Abs() <= t.window
}

func (t *runTracker) close(code string) {
	run := t.open[code]
	delete(t.open, code)
	if run == nil || run.length <= 1 {
		return
	}
	for _, m := range run.members {
		if run.length > t.best[m] {
			t.best[m] = run.length
		}
	}
}

// finish closes every open run and returns run lengths above one.
func (t *runTracker) finish() map[string]map[string]int {
	for code := range t.open {
		t.close(code)
	}
	out := map[string]map[string]int{}
	for key, n := range t.best {
		if n <= 1 {
			continue
		}
		if out[key.invoice] == nil {
			out[key.invoice] = map[string]int{}
		}
		out[key.invoice][key.code] = n
	}
	return out
}
