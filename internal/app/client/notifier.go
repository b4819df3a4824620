package client

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// ConsoleNotifier печатает итог прохода синхронизации.
type ConsoleNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	green  *color.Color
	yellow *color.Color
	red    *color.Color
}

// NewConsoleNotifier colored задает цвета только этого notifier.
func NewConsoleNotifier(out io.Writer, colored bool) *ConsoleNotifier {
	n := &ConsoleNotifier{
		out:    out,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
	}
	for _, c := range []*color.Color{n.green, n.yellow, n.red} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return n
}

func (n *ConsoleNotifier) SyncCompleted(s Summary) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if s.Synced+s.Retried+s.Failed+s.Rejected == 0 {
		return
	}

	fmt.Fprintf(n.out, "sync: %s synced", n.green.Sprint(s.Synced))
	if s.Conflicts > 0 {
		fmt.Fprintf(n.out, " (%s already on server)", n.yellow.Sprint(s.Conflicts))
	}
	if s.Retried > 0 {
		fmt.Fprintf(n.out, ", %s will retry", n.yellow.Sprint(s.Retried))
	}
	if s.Failed+s.Rejected > 0 {
		fmt.Fprintf(n.out, ", %s failed", n.red.Sprint(s.Failed+s.Rejected))
	}
	fmt.Fprintln(n.out)
}
