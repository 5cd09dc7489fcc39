// Package source defines the canonical input-source name space shared by all
// monitor control backends, and the HDMI/DisplayPort classification used to
// decide toggle direction.
package source

import (
	"strconv"
	"strings"
)

// Sentinel display values. They live in the same string space as real source
// names so the UI can render them without special cases.
const (
	Unknown    = "Unknown"
	ErrorValue = "Error"
)

// Canonical source names. Backends normalize whatever the hardware or vendor
// API reports into these before anything else sees the value.
const (
	HDMI1 = "HDMI 1"
	HDMI2 = "HDMI 2"
	DP1   = "DisplayPort 1"
	DP2   = "DisplayPort 2"
	USBC  = "USB-C"
	DVI1  = "DVI 1"
	DVI2  = "DVI 2"
	VGA1  = "VGA 1"
	VGA2  = "VGA 2"
)

// Class groups source names into the two families the toggle operation
// switches between.
type Class int

const (
	ClassUnknown Class = iota
	ClassHDMI
	ClassDisplayPort
)

func (c Class) String() string {
	switch c {
	case ClassHDMI:
		return "hdmi"
	case ClassDisplayPort:
		return "displayport"
	default:
		return "unknown"
	}
}

// vcpNames maps VCP feature 0x60 (input source) values to canonical names.
// Codes follow the MCCS standard table.
var vcpNames = map[uint16]string{
	1:  VGA1,
	2:  VGA2,
	3:  DVI1,
	4:  DVI2,
	15: DP1,
	16: DP2,
	17: HDMI1,
	18: HDMI2,
	27: USBC,
}

// vcpCodes is the reverse of vcpNames, keyed by the canonical name.
var vcpCodes = func() map[string]uint16 {
	m := make(map[string]uint16, len(vcpNames))
	for code, name := range vcpNames {
		m[name] = code
	}
	return m
}()

// FromVCP normalizes a raw VCP input-source value into the canonical name
// space. Unrecognized codes come back as their decimal string form; this
// never fails, per the error handling policy for hardware responses.
func FromVCP(code uint16) string {
	if name, ok := vcpNames[code]; ok {
		return name
	}
	return strconv.Itoa(int(code))
}

// ToVCP resolves a source name to its VCP code. The name is matched through
// Normalize so user-supplied variants ("dp1", "HDMI-1") resolve too.
func ToVCP(name string) (uint16, bool) {
	code, ok := vcpCodes[Normalize(name)]
	return code, ok
}

// Normalize maps formatting variants and vendor aliases onto canonical names.
// Names it cannot place are returned unchanged.
func Normalize(name string) string {
	switch fold(name) {
	case "HDMI", "HDMI1":
		return HDMI1
	case "HDMI2":
		return HDMI2
	case "DP", "DP1", "DISPLAYPORT", "DISPLAYPORT1", "PC":
		return DP1
	case "DP2", "DISPLAYPORT2":
		return DP2
	case "USBC", "THUNDERBOLT":
		return USBC
	case "DVI", "DVI1":
		return DVI1
	case "DVI2":
		return DVI2
	case "VGA", "VGA1", "ANALOG1":
		return VGA1
	case "VGA2", "ANALOG2":
		return VGA2
	}
	return name
}

// Classify reports which toggle family a source name belongs to. Matching is
// case- and separator-insensitive: "HDMI 1", "hdmi-1" and "HDMI1" classify
// identically. USB-C counts as DisplayPort-class (DP alt mode).
func Classify(name string) Class {
	folded := fold(name)
	switch {
	case strings.Contains(folded, "HDMI"):
		return ClassHDMI
	case strings.Contains(folded, "DISPLAYPORT"), strings.Contains(folded, "DP"),
		strings.Contains(folded, "USBC"):
		return ClassDisplayPort
	default:
		return ClassUnknown
	}
}

// OppositeTarget returns the canonical name the toggle operation should
// request when leaving the given class. Unknown classes default to HDMI 1,
// mirroring the original panel behavior of forcing a known state.
func OppositeTarget(c Class) string {
	if c == ClassHDMI {
		return DP1
	}
	return HDMI1
}

// fold uppercases and strips the separators that vary between vendors.
func fold(name string) string {
	folded := strings.ToUpper(name)
	for _, sep := range []string{" ", "-", "_", "."} {
		folded = strings.ReplaceAll(folded, sep, "")
	}
	return folded
}
