package commands

import (
	"fmt"
	"io"

	"github.com/vitaminmoo/iqos-tool/internal/device"
	"github.com/vitaminmoo/iqos-tool/internal/util"
)

// ListCommands prints a family's command table with a hex dump of every
// frame. It needs no device.
func ListCommands(w io.Writer, family device.Family) {
	names := family.Commands()
	if len(names) == 0 {
		fmt.Fprintf(w, "Family %s registers no commands\n", family)
		return
	}

	fmt.Fprintf(w, "Family %s\n", family)
	for _, name := range names {
		cmd, _ := family.Command(name)
		fmt.Fprintf(w, "\n%s (%d frame(s))\n", name, len(cmd))
		for i, frame := range cmd {
			fmt.Fprintf(w, "  frame %d:\n", i+1)
			util.HexDump(w, frame)
		}
	}
}
