package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with args and captures its output.
func executeCommand(root *cobra.Command, args ...string) error {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return err
}

func TestSwitchArgValidation(t *testing.T) {
	t.Run("rejects a non-numeric monitor index", func(t *testing.T) {
		err := executeCommand(rootCmd, "switch", "abc")
		if err == nil {
			t.Fatal("expected an error for a non-numeric index")
		}
		if !strings.Contains(err.Error(), "invalid monitor index") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects index zero", func(t *testing.T) {
		err := executeCommand(rootCmd, "switch", "0")
		if err == nil {
			t.Fatal("expected an error for index 0, indexes are one-based")
		}
	})

	t.Run("requires at least the index argument", func(t *testing.T) {
		err := executeCommand(rootCmd, "switch")
		if err == nil {
			t.Fatal("expected an arg-count error")
		}
	})
}
