package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/interview-coach/internal/interview"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the topics of topic-based interviews",
	Run: func(_ *cobra.Command, _ []string) {
		for _, topic := range interview.Topics {
			fmt.Println(topic)
		}
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
