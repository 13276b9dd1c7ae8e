package access

import "strings"

const (
	// PublicRoot is the landing page for visitors without a session.
	PublicRoot = "/"
	// DashboardRoot is the authenticated area.
	DashboardRoot = "/dashboard"
)

// HistoryMode is how the client applies a navigation decision.
type HistoryMode string

// HistoryReplace rewrites the current entry instead of pushing a new one.
const HistoryReplace HistoryMode = "replace"

// NavigationState is what the client reports on mount or on an auth event.
type NavigationState struct {
	Path             string    `json:"path"`
	Code             string    `json:"code"`
	Error            string    `json:"error"`
	HasTokenFragment bool      `json:"has_token_fragment"`
	Event            AuthEvent `json:"event"`
	SessionPresent   bool      `json:"session_present"`
}

// NavigationDecision tells the client how to reconcile its URL.
// Every mutation is applied with History, which is always replace.
type NavigationDecision struct {
	RedirectTo    string      `json:"redirect_to,omitempty"`
	StripFragment bool        `json:"strip_fragment"`
	StripQuery    bool        `json:"strip_query"`
	ExchangeCode  string      `json:"exchange_code,omitempty"`
	History       HistoryMode `json:"history"`
}

// NoOp reports whether the decision changes nothing.
func (d NavigationDecision) NoOp() bool {
	return d.RedirectTo == "" && !d.StripFragment && !d.StripQuery && d.ExchangeCode == ""
}

// InDashboard reports whether path is inside the authenticated area.
func InDashboard(path string) bool {
	return path == DashboardRoot || strings.HasPrefix(path, DashboardRoot+"/")
}

// Resolve reconciles the visible route with session presence.
func Resolve(s NavigationState) NavigationDecision {
	d := NavigationDecision{History: HistoryReplace}

	switch s.Event {
	case EventSignedIn:
		d.StripFragment = s.HasTokenFragment
		if !InDashboard(s.Path) {
			d.RedirectTo = DashboardRoot
		}
		return d
	case EventSignedOut:
		if s.Path != PublicRoot {
			d.RedirectTo = PublicRoot
		}
		return d
	case EventNone:
	default:
		return d
	}

	// Mount.
	if s.Code != "" && s.Error == "" {
		d.ExchangeCode = s.Code
		return d
	}
	if s.SessionPresent && s.Path == PublicRoot {
		d.RedirectTo = DashboardRoot
	}
	return d
}

// AfterExchange finishes a mount decision once the code exchange has run.
// A failed exchange leaves the URL untouched.
func AfterExchange(d NavigationDecision, sessionCreated bool) NavigationDecision {
	out := NavigationDecision{History: HistoryReplace}
	if d.ExchangeCode == "" || !sessionCreated {
		return out
	}
	out.StripQuery = true
	out.RedirectTo = DashboardRoot
	return out
}
