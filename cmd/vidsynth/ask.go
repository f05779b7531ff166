package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	logpkg "github.com/kailas-cloud/vidsynth/internal/logger"
	chunkinguc "github.com/kailas-cloud/vidsynth/internal/usecase/chunking"
)

var (
	askQuestion    string
	askTopK        int
	askShowSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask [FILE]",
	Short: "Answer one question about a transcript",
	Long: `Chunk a transcript, index it with the configured embedding provider and
answer a single question with the configured generation provider.

Examples:
  vidsynth ask talk.txt -q "what is retrieval augmented generation?"
  cat talk.txt | vidsynth ask -q "summarize the intro" -k 2 --sources`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askShowSources, "sources", false, "print the retrieved chunks")
	_ = askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	text, err := readTranscript(cmd, args)
	if err != nil {
		return err
	}

	a, err := loadApp(cmd.Context(), envName)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, usage := domain.NewContextWithUsage(logpkg.ContextWithLogger(cmd.Context(), a.logger))

	chunks, err := a.chunker.Chunk(text, chunkinguc.Options{})
	if err != nil {
		return fmt.Errorf("chunk transcript: %w", err)
	}
	h, err := a.builder.Build(ctx, chunks)
	if err != nil {
		return fmt.Errorf("build vector store: %w", err)
	}
	id, err := a.registry.Register(h)
	if err != nil {
		return fmt.Errorf("register vector store: %w", err)
	}

	k := a.answers.TopK()
	if askTopK > 0 {
		k = askTopK
	}
	ans, err := a.answers.AnswerTopK(ctx, askQuestion, id, k)
	if err != nil {
		return fmt.Errorf("answer: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, ans.Text())
	if askShowSources {
		for i, src := range ans.Sources() {
			_, _ = fmt.Fprintf(out, "\n[%d] chunk %d (score %.3f)\n%s\n", i+1, src.Chunk.Index(), src.Score, src.Chunk.Text())
		}
	}

	a.logger.Debug("ask completed",
		zap.Int("chunks", len(chunks)),
		zap.Int64("embedding_tokens", usage.EmbeddingTokens()),
		zap.Int64("generation_tokens", usage.GenerationTokens()),
	)
	return nil
}
