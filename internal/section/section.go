// Package section classifies article URLs into the periodical's named
// sections and defines their canonical display order.
package section

import "strings"

// Other is the sentinel bucket for articles whose URL matches no known
// section segment. It always sorts last in the table of contents.
const Other = "Other"

// Order is the canonical display order of sections. It governs table of
// contents grouping; Other is handled separately and comes last.
var Order = []string{
	"The world this week",
	"Leaders",
	"Letters",
	"By Invitation",
	"Briefing",
	"United States",
	"The Americas",
	"Asia",
	"China",
	"Middle East & Africa",
	"Europe",
	"Britain",
	"International",
	"Business",
	"Finance & economics",
	"Science & technology",
	"Culture",
	"Economic & financial indicators",
	"Obituary",
}

// urlSegments maps a URL path segment to its section name. The slice is
// ordered; the first containment match wins.
var urlSegments = []struct {
	segment string
	name    string
}{
	{"/the-world-this-week/", "The world this week"},
	{"/leaders/", "Leaders"},
	{"/letters/", "Letters"},
	{"/by-invitation/", "By Invitation"},
	{"/briefing/", "Briefing"},
	{"/united-states/", "United States"},
	{"/the-americas/", "The Americas"},
	{"/asia/", "Asia"},
	{"/china/", "China"},
	{"/middle-east-and-africa/", "Middle East & Africa"},
	{"/europe/", "Europe"},
	{"/britain/", "Britain"},
	{"/international/", "International"},
	{"/business/", "Business"},
	{"/finance-and-economics/", "Finance & economics"},
	{"/science-and-technology/", "Science & technology"},
	{"/culture/", "Culture"},
	{"/economic-and-financial-indicators/", "Economic & financial indicators"},
	{"/obituary/", "Obituary"},
}

// FromURL returns the section name for an article URL, or Other when no
// segment matches.
func FromURL(url string) string {
	for _, p := range urlSegments {
		if strings.Contains(url, p.segment) {
			return p.name
		}
	}
	return Other
}

// Canonical returns name when it is one of the known sections and Other
// for anything else, including the empty string.
func Canonical(name string) string {
	for _, n := range Order {
		if n == name {
			return name
		}
	}
	return Other
}
