package ddc

import "strings"

// modelFromEDID pulls the monitor name out of the EDID descriptor blocks
// (tag 0xFC). Returns "" when no name descriptor is present.
func modelFromEDID(edid []byte) string {
	if len(edid) < 126 {
		return ""
	}
	for j := 54; j+18 <= 126; j += 18 {
		if edid[j] == 0 && edid[j+1] == 0 && edid[j+2] == 0 && edid[j+3] == 0xFC {
			name := string(edid[j+5 : j+18])
			// The name field is newline-terminated and space-padded.
			if i := strings.IndexByte(name, '\n'); i >= 0 {
				name = name[:i]
			}
			return strings.TrimSpace(name)
		}
	}
	return ""
}
