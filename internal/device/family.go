package device

import (
	"fmt"
	"sort"
	"strings"
)

// Family selects the command table a device handle uses.
type Family int

const (
	// FamilyAuto defers the choice to the advertised device name.
	FamilyAuto Family = iota
	// FamilyBase only reports identity and battery; it accepts no commands.
	FamilyBase
	// FamilyIluma adds display brightness, gesture and heating commands.
	FamilyIluma
)

func (f Family) String() string {
	switch f {
	case FamilyAuto:
		return "auto"
	case FamilyBase:
		return "base"
	case FamilyIluma:
		return "iluma"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ParseFamily parses a family name as used in the config file and on the
// command line. The empty string means auto.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FamilyAuto, nil
	case "base":
		return FamilyBase, nil
	case "iluma":
		return FamilyIluma, nil
	default:
		return FamilyAuto, fmt.Errorf("unknown device family %q (want auto, base or iluma)", s)
	}
}

// FamilyFromName picks the family from a device's advertised local name.
func FamilyFromName(localName string) Family {
	if strings.Contains(strings.ToUpper(localName), "ILUMA") {
		return FamilyIluma
	}
	return FamilyBase
}

// Resolve turns FamilyAuto into a concrete family using the advertised name.
func (f Family) Resolve(localName string) Family {
	if f != FamilyAuto {
		return f
	}
	return FamilyFromName(localName)
}

// Command returns a copy of the frames registered for name.
func (f Family) Command(name CommandName) (Command, bool) {
	cmd, ok := commandTables[f][name]
	if !ok {
		return nil, false
	}
	return cmd.clone(), true
}

// Commands lists the command names registered for the family, sorted.
func (f Family) Commands() []CommandName {
	table := commandTables[f]
	names := make([]CommandName, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
