package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/behzad94/showcase-1/internal/service"
	"github.com/spf13/cobra"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question over the indexed corpus",
		Long:  "Retrieve relevant passages from the local index and produce a cited answer",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().Bool("json", false, "Print the full answer as JSON")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.cleanup()

	if err := p.loadStore(); err != nil {
		return err
	}

	query := strings.Join(args, " ")
	answer, err := p.svc.Ask(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		payload, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *service.Answer) {
	out := cmd.OutOrStdout()

	switch answer.State {
	case service.StateClarify:
		fmt.Fprintf(out, "Clarification needed: %s\n", answer.ClarifyHint)
		if len(answer.Citations) > 0 {
			fmt.Fprintln(out, "\nWeak matches:")
		}
	default:
		fmt.Fprintln(out, answer.Text)
		if answer.Verdict != service.VerdictSupported {
			fmt.Fprintf(out, "\nWarning: answer is %s by the cited passages\n", answer.Verdict)
		}
		if answer.ClarifyHint != "" {
			fmt.Fprintf(out, "Note: %s\n", answer.ClarifyHint)
		}
		if len(answer.Citations) > 0 {
			fmt.Fprintln(out, "\nSources:")
		}
	}

	for i, c := range answer.Citations {
		fmt.Fprintf(out, "  [%d] %s (score %.3f): %s\n", i+1, c.Filename, c.Score, c.Snippet)
	}
}
