package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johncui/rapport/pkg/engine/distill"
	"github.com/johncui/rapport/pkg/model"
)

type analyzeOutput struct {
	SentimentScore        float64          `json:"sentiment_score"`
	ExtractedNames        []string         `json:"extracted_names"`
	ContentWithHighlights string           `json:"content_with_highlights"`
	KnownMentions         map[string]int64 `json:"known_mentions"`
}

func newAnalyzeCmd() *cobra.Command {
	var known []string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score, extract names from and highlight text read from stdin",
		Long: `Score, extract names from and highlight text read from stdin.

Examples:
  echo "Today Sam was so sweet during lunch with Maya." | rapport analyze --known Maya=7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			people, err := parseKnown(known)
			if err != nil {
				return err
			}
			text, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return runAnalyze(cmd.OutOrStdout(), string(text), people)
		},
	}
	cmd.Flags().StringArrayVar(&known, "known", nil, "known person as Name=ID, repeatable")
	return cmd
}

func runAnalyze(w io.Writer, text string, people []model.Person) error {
	a := distill.NewHeuristic().Distill(text, people)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(analyzeOutput{
		SentimentScore:        a.Sentiment,
		ExtractedNames:        a.Names,
		ContentWithHighlights: a.Highlighted,
		KnownMentions:         a.KnownByName,
	})
}

func parseKnown(values []string) ([]model.Person, error) {
	people := make([]model.Person, 0, len(values))
	for _, v := range values {
		i := strings.LastIndex(v, "=")
		if i <= 0 {
			return nil, fmt.Errorf("--known %q: want Name=ID", v)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(v[i+1:]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--known %q: bad id: %w", v, err)
		}
		people = append(people, model.Person{ID: id, Name: strings.TrimSpace(v[:i])})
	}
	return people, nil
}
