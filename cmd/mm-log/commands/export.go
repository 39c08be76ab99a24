package commands

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/meshmodel/mm-go/pkg/log"
	"github.com/meshmodel/mm-go/pkg/wire"
)

var csvHeader = []string{
	"timestamp", "session_id", "node", "direction", "layer", "category",
	"type", "src", "dst", "params", "detail",
}

// exporter writes events in one output format. Its second return flushes
// buffered output.
type exporter func(w io.Writer) (func(log.Event) error, func() error)

var exporters = map[string]exporter{
	"jsonl": jsonlExporter,
	"csv":   csvExporter,
}

// RunExport converts the capture at path to format, writing to output or,
// when output is empty, to stdout.
func RunExport(path, format, output string, stdout io.Writer) error {
	exp, ok := exporters[format]
	if !ok {
		return fmt.Errorf("unknown format %q (jsonl or csv)", format)
	}

	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	write, flush := exp(w)
	if err := scan(path, log.Filter{}, write); err != nil {
		return err
	}
	return flush()
}

func jsonlExporter(w io.Writer) (func(log.Event) error, func() error) {
	enc := json.NewEncoder(w)
	return func(ev log.Event) error { return enc.Encode(ev) }, func() error { return nil }
}

func csvExporter(w io.Writer) (func(log.Event) error, func() error) {
	cw := csv.NewWriter(w)
	headerErr := cw.Write(csvHeader)
	write := func(ev log.Event) error {
		if headerErr != nil {
			return headerErr
		}
		return cw.Write(csvRow(ev))
	}
	flush := func() error {
		cw.Flush()
		return cw.Error()
	}
	return write, flush
}

func csvRow(ev log.Event) []string {
	var src, dst, params, detail string
	switch {
	case ev.Message != nil:
		m := ev.Message
		src, dst = wire.Address(m.Src).String(), wire.Address(m.Dst).String()
		params = hex.EncodeToString(m.Params)
		if m.Dropped {
			detail = "dropped: " + m.Reason
		}
	case ev.Frame != nil:
		detail = strconv.Itoa(ev.Frame.Size)
	case ev.StateChange != nil:
		sc := ev.StateChange
		detail = fmt.Sprintf("%s %d %s->%s", sc.Entity, sc.ID, sc.OldState, sc.NewState)
	case ev.Error != nil:
		detail = ev.Error.Message
	}
	return []string{
		ev.Timestamp.UTC().Format(timeLayout),
		ev.SessionID,
		wire.Address(ev.LocalAddr).String(),
		ev.Direction.String(),
		ev.Layer.String(),
		ev.Category.String(),
		typeLabel(ev),
		src, dst, params, detail,
	}
}
