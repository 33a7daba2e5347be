// Package classify derives presentation metadata from a raw feed
// entry: its category, a description with groupware invite boilerplate
// stripped, and RSVP requirements.
package classify

import (
	"regexp"
	"strings"

	"clubsync/internal/model"
)

// Result is the classifier's verdict for one entry.
type Result struct {
	// Category is one of the model.Category* names. Resolution to a
	// configured category id (or none) is the reconciler's job.
	Category string

	// Description is the cleaned description to store.
	Description string

	RequiresRSVP bool

	// RSVPLink is empty when no usable link was found.
	RSVPLink string
}

var (
	// A Teams invite block starts with a long underscore separator or
	// one of the literal invite headers.
	teamsBlockRe = regexp.MustCompile(`(?i)_{5,}|Microsoft Teams meeting|Join Microsoft Teams Meeting`)

	teamsJoinURLRe = regexp.MustCompile(`(?i)https://teams\.microsoft\.com/l/meetup-join/[^\s<>"]+`)

	urlRe = regexp.MustCompile(`https?://[^\s<>"]+`)

	ticketWordRe = regexp.MustCompile(`\btickets?\b`)
)

const teamsDomain = "teams.microsoft.com"

// Classify inspects an entry's title and raw description.
func Classify(title, rawDescription string) Result {
	cleaned := CleanDescription(rawDescription)

	required, link := detectRSVP(title, cleaned, rawDescription)

	return Result{
		Category:     classifyCategory(title, cleaned),
		Description:  cleaned,
		RequiresRSVP: required,
		RSVPLink:     link,
	}
}

// classifyCategory picks a category name. Explicit bracket tags always
// win; keyword fallback checks "office hours" before "meeting" because
// it is the more specific phrase; everything else is "Other".
func classifyCategory(title, description string) string {
	text := strings.ToLower(title + " " + description)

	switch {
	case strings.Contains(text, "[event]") || strings.Contains(text, "[e]"):
		return model.CategoryEvents
	case strings.Contains(text, "[meeting]") || strings.Contains(text, "[m]"):
		return model.CategoryMeetings
	case strings.Contains(text, "[office hours]") || strings.Contains(text, "[oh]"):
		return model.CategoryOfficeHours
	case strings.Contains(text, "[other]") || strings.Contains(text, "[o]"):
		return model.CategoryOther
	}

	if strings.Contains(text, "office hours") {
		return model.CategoryOfficeHours
	}
	if strings.Contains(text, "meeting") {
		return model.CategoryMeetings
	}

	return model.CategoryOther
}

// CleanDescription strips a Teams meeting-invite block from a
// description, replacing it with a short placeholder that preserves the
// join URL when one can be extracted. Descriptions without an invite
// block pass through unchanged.
func CleanDescription(description string) string {
	loc := teamsBlockRe.FindStringIndex(description)
	if loc == nil {
		return description
	}

	before := strings.TrimSpace(description[:loc[0]])
	block := description[loc[0]:]

	suffix := " [Teams meeting - link in original calendar]"
	if joinURL := teamsJoinURLRe.FindString(block); joinURL != "" {
		suffix = " [Teams: " + joinURL + "]"
	}

	return strings.TrimSpace(before + suffix)
}

// detectRSVP decides whether an entry requires RSVP and picks the link.
//
// Triggers: an explicit ticket tag, the word "ticket(s)" (suppressed
// when the cleaned description still looks like a Teams-only invite, so
// meeting links alone do not read as ticketed events), or the words
// "rsvp"/"register". The link is the first URL in the raw description
// that is not on the Teams domain, falling back to the first URL found.
func detectRSVP(title, cleanedDescription, rawDescription string) (bool, string) {
	titleText := strings.ToLower(title)
	descText := strings.ToLower(cleanedDescription)

	hasTicketTag := strings.Contains(titleText, "[t]") || strings.Contains(titleText, "[ticket]") ||
		strings.Contains(descText, "[t]") || strings.Contains(descText, "[ticket]")
	hasTicketWord := ticketWordRe.MatchString(descText)
	hasRSVPWord := strings.Contains(descText, "rsvp") || strings.Contains(descText, "register")

	required := hasTicketTag ||
		(hasTicketWord && !strings.Contains(descText, "teams")) ||
		hasRSVPWord

	if !required {
		return false, ""
	}

	urls := urlRe.FindAllString(rawDescription, -1)
	for _, u := range urls {
		if !strings.Contains(u, teamsDomain) {
			return true, u
		}
	}
	if len(urls) > 0 {
		return true, urls[0]
	}
	return true, ""
}
