package main

import (
	"encoding/json"
	"fmt"
	"os"
)

func formatJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode json: %v\n", err)
		os.Exit(1)
	}
}

func formatQuiet(v any) {
	if m, ok := v.(map[string]any); ok {
		if status, ok := m["status"]; ok {
			fmt.Println(status)

			return
		}
	}

	fmt.Println(v)
}

func output(v any) {
	switch flagFmt {
	case "quiet":
		formatQuiet(v)
	default:
		formatJSON(v)
	}
}
