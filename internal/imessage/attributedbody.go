package imessage

import "strings"

// Markers that identify serialization metadata rather than message text
// inside an attributedBody blob.
var metadataMarkers = []string{
	"nsstring",
	"nsattributed",
	"nsmutable",
	"__kimmessagepartattributename",
}

// decodeAttributedBody pulls the message text out of an attributedBody
// blob. Newer macOS versions store text only there, as a serialized
// NSAttributedString; rather than parse the archive, take the longest run
// of printable characters that is not serialization metadata. Returns ""
// when nothing recoverable is found.
func decodeAttributedBody(blob []byte) string {
	if len(blob) == 0 {
		return ""
	}

	var runs []string
	var current strings.Builder
	for _, b := range blob {
		if b >= 0x20 && b <= 0x7E {
			current.WriteByte(b)
			continue
		}
		if current.Len() >= 2 {
			runs = append(runs, current.String())
		}
		current.Reset()
	}
	if current.Len() >= 2 {
		runs = append(runs, current.String())
	}

	best := ""
	for _, run := range runs {
		lower := strings.ToLower(run)
		skip := false
		for _, marker := range metadataMarkers {
			if strings.Contains(lower, marker) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if len(run) > len(best) {
			best = run
		}
	}
	return strings.TrimSpace(best)
}
