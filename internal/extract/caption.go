package extract

import (
	"regexp"
	"strings"

	"github.com/weeklybind/weeklybind/internal/textutil"
)

// creditPatterns match attribution prefixes inside a figure caption,
// capturing up to the next period or end of string. Checked in order;
// the first match wins.
var creditPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Illustration:.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)(Photo:.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)(Source:.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)(Chart:.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)(Credit:.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)(Image:.*?)(?:\.|$)`),
}

// splitCaption separates a figure caption into caption and credit. When
// no attribution prefix is found the whole text is the caption.
func splitCaption(full string) (caption, credit string) {
	for _, re := range creditPatterns {
		loc := re.FindStringSubmatchIndex(full)
		if loc == nil {
			continue
		}
		credit = strings.TrimSpace(full[loc[2]:loc[3]])
		caption = textutil.CollapseWhitespace(full[:loc[0]] + full[loc[1]:])
		return caption, credit
	}
	return full, ""
}
