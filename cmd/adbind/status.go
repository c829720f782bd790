package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the host's current AD binding",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(readOnlyMode(), scenario, nil, os.Stdout)
	if err != nil {
		return err
	}
	snap, err := s.reader.Read(context.Background())
	if err != nil {
		return err
	}
	if statusJSON {
		data, err := json.MarshalIndent(snap.View(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Print(renderStatus(snap))
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}
