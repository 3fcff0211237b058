package automation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"acsWorker/internal/browser"
)

func TestVisible(t *testing.T) {
	tests := []struct {
		name           string
		state          browser.ElementState
		requireEnabled bool
		want           bool
	}{
		{"видимый", shown(), false, true},
		{"display none", hidden(), false, false},
		{"visibility hidden", browser.ElementState{Display: "block", Visibility: "hidden", Height: 20}, false, false},
		{"visibility collapse", browser.ElementState{Display: "block", Visibility: "collapse", Height: 20}, false, false},
		{"нулевая высота", browser.ElementState{Display: "block", Visibility: "visible", Width: 100}, false, false},
		{"disabled поле", browser.ElementState{Display: "block", Visibility: "visible", Height: 20, Disabled: true}, false, true},
		{"disabled кнопка", browser.ElementState{Display: "block", Visibility: "visible", Height: 20, Disabled: true}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.state, tt.requireEnabled))
		})
	}
}

func TestCandidates(t *testing.T) {
	known := []string{"#otp", "input[type='tel']", "#otp"}

	assert.Equal(t, []string{"#otp", "input[type='tel']"}, Candidates("", known))
	assert.Equal(t, []string{"#code", "#otp", "input[type='tel']"}, Candidates(" #code ", known))
	assert.Equal(t, []string{"#otp", "input[type='tel']"}, Candidates("https://bank/acs", known))
	assert.Equal(t, []string{`button:has-text("Onayla")`, "#otp", "input[type='tel']"},
		Candidates(`button:contains("Onayla")`, known))
}

func newDiscoverer(t *testing.T) *Discoverer {
	r := newTestRunner(t, Deps{})
	return &Discoverer{cat: r.cat, t: r.t, log: r.log}
}

func TestFindVisible_SkipsHiddenEarlierCandidate(t *testing.T) {
	page := newFakePage()
	page.set("#hidden-otp", hidden())
	page.set("#otp", shown())

	sel, ok := newDiscoverer(t).FindVisible(context.Background(), page, []string{"#hidden-otp", "#otp"}, false)

	assert.True(t, ok)
	assert.Equal(t, "#otp", sel)
	assert.Equal(t, []string{"#hidden-otp", "#otp"}, page.waited)
}

func TestFindVisible_KeepsOrderAmongVisible(t *testing.T) {
	page := newFakePage()
	page.set("#first", shown())
	page.set("#second", shown())

	sel, ok := newDiscoverer(t).FindVisible(context.Background(), page, []string{"#first", "#second"}, false)

	assert.True(t, ok)
	assert.Equal(t, "#first", sel)
}

func TestFindVisible_AddressesVisibleMatch(t *testing.T) {
	page := newFakePage()
	page.set("input[type='tel']", hidden(), browser.ElementState{Display: "block", Visibility: "visible", Height: 0}, shown())

	sel, ok := newDiscoverer(t).FindVisible(context.Background(), page, []string{"input[type='tel']"}, false)

	assert.True(t, ok)
	assert.Equal(t, "input[type='tel'] >> nth=2", sel)
}

func TestFindVisible_DisabledSubmitSkipped(t *testing.T) {
	page := newFakePage()
	disabled := shown()
	disabled.Disabled = true
	page.set("#submit", disabled)
	page.set("button[type='submit']", shown())

	sel, ok := newDiscoverer(t).FindVisible(context.Background(), page, []string{"#submit", "button[type='submit']"}, true)

	assert.True(t, ok)
	assert.Equal(t, "button[type='submit']", sel)
}

func TestFindVisible_NothingVisible(t *testing.T) {
	page := newFakePage()
	page.set("#otp", hidden())

	_, ok := newDiscoverer(t).FindVisible(context.Background(), page, []string{"#otp", "#missing"}, false)
	assert.False(t, ok)
}

func TestDiscover_OperatorSelectorFirst(t *testing.T) {
	page := newFakePage()
	page.set("#bankOtp", shown())
	page.set("input[name='otpCode']", shown())
	page.set("#go", shown())

	req := &Request{ChallengeSelector: "#bankOtp", SubmitSelector: "#go"}
	found := newDiscoverer(t).Discover(context.Background(), page, req)

	assert.Equal(t, "#bankOtp", found.OTPSelector)
	assert.Equal(t, "#go", found.SubmitSelector)
}

func TestDiscover_NoOTPSkipsSubmitSearch(t *testing.T) {
	page := newFakePage()
	page.set("button[type='submit']", shown())

	found := newDiscoverer(t).Discover(context.Background(), page, &Request{})

	assert.Empty(t, found.OTPSelector)
	assert.Empty(t, found.SubmitSelector)
	assert.NotContains(t, page.waited, "button[type='submit']")
}
