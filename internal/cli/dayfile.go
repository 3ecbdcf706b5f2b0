package cli

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"slotbook/internal/slots"
)

// loadDayFile reads a slots.Request from YAML. "-" reads stdin.
func loadDayFile(path string, stdin io.Reader) (slots.Request, error) {
	var req slots.Request
	if path == "" {
		return req, fmt.Errorf("day file is required (-f)")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("read day file: %w", err)
	}

	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse day file: %w", err)
	}
	return req, nil
}

func printSkipped(w io.Writer, skipped []slots.Skipped) {
	for _, s := range skipped {
		fmt.Fprintf(w, "warning: ignored %s[%d]: %v\n", s.Kind, s.Index, s.Err)
	}
}
