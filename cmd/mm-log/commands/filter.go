package commands

import (
	"fmt"
	"time"

	"github.com/meshmodel/mm-go/pkg/log"
)

// FilterOptions are the raw flag values of the filter command. Empty
// strings leave a criterion unset.
type FilterOptions struct {
	Output    string
	SessionID string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
	Opcode    string
	Src       string
	Node      string
	Dropped   bool
}

// optional parses s into *dst unless s is empty.
func optional[T any](dst **T, s string, parse func(string) (T, error)) error {
	if s == "" {
		return nil
	}
	v, err := parse(s)
	if err != nil {
		return err
	}
	*dst = &v
	return nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return t, fmt.Errorf("invalid time %q: want RFC 3339", s)
	}
	return t, nil
}

// Filter converts the options into a log.Filter.
func (o FilterOptions) Filter() (log.Filter, error) {
	f := log.Filter{SessionID: o.SessionID, DroppedOnly: o.Dropped}
	for _, err := range []error{
		optional(&f.TimeStart, o.TimeStart, parseTime),
		optional(&f.TimeEnd, o.TimeEnd, parseTime),
		optional(&f.Layer, o.Layer, parseLayer),
		optional(&f.Direction, o.Direction, parseDirection),
		optional(&f.Category, o.Category, parseCategory),
		optional(&f.Opcode, o.Opcode, parseOpcode),
		optional(&f.Src, o.Src, parseAddress),
		optional(&f.LocalAddr, o.Node, parseAddress),
	} {
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

// RunFilter copies the events of path matching opts into opts.Output and
// returns how many were copied.
func RunFilter(path string, opts FilterOptions) (int, error) {
	filter, err := opts.Filter()
	if err != nil {
		return 0, err
	}

	out, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return 0, err
	}
	n := 0
	err = scan(path, filter, func(ev log.Event) error {
		out.Log(ev)
		n++
		return nil
	})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
