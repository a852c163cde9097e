package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kspkit/stagesim/internal/dispatcher"
	"github.com/kspkit/stagesim/internal/handlers"
	"github.com/kspkit/stagesim/pkg/stinfo"
)

// serveCommands reads pipe-separated commands from r until EOF and
// writes results to w. Lines look like the host extension protocol:
//
//	vessel:load|{...snapshot json...}
//	stinfo|1.0
//	runs:export
func serveCommands(d *dispatcher.Dispatcher, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// snapshot payloads routinely exceed the default token size
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		parts := strings.SplitN(line, "|", 2)
		event := dispatcher.Event{
			Command:   parts[0],
			Timestamp: time.Now(),
		}
		if len(parts) > 1 {
			event.Args = strings.Split(parts[1], "|")
		}

		result, err := d.Dispatch(event)
		if err != nil {
			fmt.Fprintf(w, "ERR %s: %v\n", event.Command, err)
			continue
		}
		writeResult(w, result)
	}
	return scanner.Err()
}

func writeResult(w io.Writer, result any) {
	switch v := result.(type) {
	case []stinfo.StageSummary:
		fmt.Fprint(w, handlers.FormatStageTable(v))
	case string:
		fmt.Fprintf(w, "OK %s\n", v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			fmt.Fprintf(w, "OK\n")
			return
		}
		fmt.Fprintf(w, "OK %s\n", data)
	}
}
