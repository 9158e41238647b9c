package relay

import (
	"context"
	"fmt"
	"io"

	"modelsagent/internal/core"
	"modelsagent/internal/util"
)

// Source yields upstream chunks as raw JSON.
type Source interface {
	Next() bool
	Current() []byte
	Err() error
	Close() error
}

// Writer is a response body that can push buffered bytes to the client.
type Writer interface {
	io.Writer
	Flush()
}

// Forward writes references as a single event, then every chunk of src in
// order, then the end-of-stream sentinel. Each write is flushed. When ctx is
// cancelled or src fails, Forward stops without the sentinel so the caller
// can tell a truncated stream from a finished one. src is always closed.
func Forward(ctx context.Context, w Writer, refs []core.Reference, src Source) error {
	defer src.Close()

	if len(refs) > 0 {
		data, err := util.MarshalJSON(refs)
		if err != nil {
			return fmt.Errorf("encode references: %w", err)
		}
		if err := writeEvent(w, core.ReferencesEventName, data); err != nil {
			return err
		}
		w.Flush()
	}

	for src.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeData(w, src.Current()); err != nil {
			return err
		}
		w.Flush()
	}
	if err := src.Err(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeData(w, []byte(core.StreamChunkDoneMessage)); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func writeData(w io.Writer, data []byte) error {
	_, err := fmt.Fprintf(w, "%s%s\n\n", core.StreamChunkPrefix, data)
	return err
}

func writeEvent(w io.Writer, name string, data []byte) error {
	_, err := fmt.Fprintf(w, "%s%s\n%s%s\n\n", core.StreamEventPrefix, name, core.StreamChunkPrefix, data)
	return err
}
