package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vidsynth/internal/domain"
	"github.com/kailas-cloud/vidsynth/internal/domain/chunk"
	chunkinguc "github.com/kailas-cloud/vidsynth/internal/usecase/chunking"
)

var (
	chunkSize     int
	chunkOverlap  int
	chunkMetadata map[string]string
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [FILE]",
	Short: "Split a transcript into overlapping chunks and print them as JSON",
	Long: `Split a transcript into overlapping chunks and print them as JSON.

Reads the transcript from FILE, or from stdin when FILE is omitted or "-".
The output can be posted as-is to POST /api/vectorstore.

Examples:
  vidsynth chunk talk.txt
  vidsynth chunk talk.txt --size 500 --overlap 50 --meta video_id=dQw4w9WgXcQ`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)
	chunkCmd.Flags().IntVar(&chunkSize, "size", domain.DefaultChunkSize, "maximum chunk length in characters")
	chunkCmd.Flags().IntVar(&chunkOverlap, "overlap", domain.DefaultChunkOverlap, "characters shared by adjacent chunks")
	chunkCmd.Flags().StringToStringVar(&chunkMetadata, "meta", nil, "metadata attached to every chunk (key=value)")
}

type plainChunk struct {
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata"`
}

func runChunk(cmd *cobra.Command, args []string) error {
	text, err := readTranscript(cmd, args)
	if err != nil {
		return err
	}

	chunks, err := chunkinguc.Split(text, chunkSize, chunkOverlap, chunkMetadata)
	if err != nil {
		return fmt.Errorf("chunk transcript: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"chunks": toPlain(chunks)}) //nolint:wrapcheck // stdout write
}

func toPlain(chunks []chunk.Chunk) []plainChunk {
	out := make([]plainChunk, len(chunks))
	for i, c := range chunks {
		out[i] = plainChunk{PageContent: c.Text(), Metadata: c.Metadata()}
	}
	return out
}

func readTranscript(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}
