// Package prompt assembles the upstream instruction and prompt strings from
// already-validated request fields. The instruction blobs are fixed per
// analysis mode and opaque to the rest of the service.
package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects which fixed instruction template is sent upstream.
type Mode string

const (
	ModeProject                Mode = "project"
	ModeAuthorizationFramework Mode = "authorizationFramework"
)

// ValidMode reports whether s is one of the two supported analysis modes.
func ValidMode(s string) bool {
	return Mode(s) == ModeProject || Mode(s) == ModeAuthorizationFramework
}

// Input carries validated scenario fields. Trends are already normalized.
type Input struct {
	Country       string
	Sector        string
	Description   string
	Latitude      *float64
	Longitude     *float64
	LocationLabel string
	Trends        map[string]int
	Mode          Mode
}

const projectInstructions = `You are a senior infrastructure risk analyst. Produce a structured
scenario analysis for the proposed project: context, stakeholder landscape,
key risks with likelihood, mitigation options, and a 5-year outlook.
Write in clear prose with section headings.`

const authorizationInstructions = `You are a regulatory affairs analyst. Produce a structured
assessment of the authorization and permitting framework applicable to the
described activity: competent authorities, required permits, typical
timelines, common bottlenecks, and recent regulatory trends.
Write in clear prose with section headings.`

// Instructions returns the fixed instruction blob for the mode.
func Instructions(m Mode) string {
	if m == ModeAuthorizationFramework {
		return authorizationInstructions
	}
	return projectInstructions
}

// Build renders the user prompt from the input fields.
func Build(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Country: %s\n", in.Country)
	fmt.Fprintf(&b, "Sector: %s\n", in.Sector)
	if in.LocationLabel != "" {
		fmt.Fprintf(&b, "Location: %s\n", in.LocationLabel)
	}
	if in.Latitude != nil && in.Longitude != nil {
		fmt.Fprintf(&b, "Coordinates: %.5f, %.5f\n", *in.Latitude, *in.Longitude)
	}
	if len(in.Trends) > 0 {
		keys := make([]string, 0, len(in.Trends))
		for k := range in.Trends {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("Trend intensities (1=low, 3=high):\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  - %s: %d\n", k, in.Trends[k])
		}
	}
	b.WriteString("\nScenario description:\n")
	b.WriteString(in.Description)
	return b.String()
}
