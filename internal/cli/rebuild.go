package cli

import (
	"fmt"

	"github.com/behzad94/showcase-1/internal/ingest"
	"github.com/spf13/cobra"
)

// RebuildCmd returns the rebuild command
func RebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the vector index from the corpus directory",
		Long:  "Chunk, embed, and index every document in the corpus directory, replacing the persisted index and manifest",
		RunE:  runRebuild,
	}

	cmd.Flags().String("corpus", "", "Corpus directory (overrides RAG_CORPUS_DIR)")

	return cmd
}

func runRebuild(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	defer p.cleanup()

	corpusDir := p.cfg.CorpusDir
	if flag, _ := cmd.Flags().GetString("corpus"); flag != "" {
		corpusDir = flag
	}

	docs, err := ingest.LoadDir(corpusDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no .txt or .md documents found in %q", corpusDir)
	}

	report, err := p.svc.RebuildIndex(cmd.Context(), docs)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d documents: %d chunks, %d vectors in %v\n",
		len(docs), report.ChunkCount, report.VectorCount, report.Duration)
	return nil
}
