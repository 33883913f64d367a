// Package display renders command output as JSON or terminal tables.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/almanac/errors"
)

// JSONEnv forces JSON output for every command when set to a true value.
const JSONEnv = "ALMANAC_JSON"

// ShouldOutputJSON determines if a command should output JSON based on its
// --json flag, the global --json flag, and ALMANAC_JSON.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return jsonFromEnv()
	}

	// An explicit --json=false beats the environment
	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return jsonFromEnv()
}

func jsonFromEnv() bool {
	switch os.Getenv(JSONEnv) {
	case "1", "true", "TRUE", "yes":
		return true
	}
	return false
}

// OutputJSON marshals v with MarshalJSON and writes it to w
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
