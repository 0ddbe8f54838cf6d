package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paper2gal/paper2gal/internal/chunks"
	"github.com/paper2gal/paper2gal/internal/config"
	"github.com/paper2gal/paper2gal/internal/export"
	"github.com/paper2gal/paper2gal/internal/script"
	"github.com/paper2gal/paper2gal/internal/session"
)

var (
	playChunkSize    int
	playChunkOverlap int
	playMaxChunks    int
	playStrategy     string
	playExportPath   string
)

var playCmd = &cobra.Command{
	Use:   "play <document>",
	Short: "Play a paper in the terminal",
	Long: `Read a paper chunk by chunk, generating and printing each chunk's
scene. Quizzes and choices are answered automatically by the selected
strategy while the next chunk's script is prefetched in the background.

Strategies:
  first    always pick the first option
  correct  pick the correct quiz answer (first option elsewhere)
  last     always pick the last option

Examples:
  paper2gal play papers/react.pdf
  paper2gal play notes.md --strategy correct --export react.json
  paper2gal play papers/react.pdf --max-chunks 3   # quick look`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		switch playStrategy {
		case "first", "correct", "last":
		default:
			return fmt.Errorf("unknown strategy %q (want first, correct or last)", playStrategy)
		}

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		chunkSize := playChunkSize
		if chunkSize == 0 {
			chunkSize = cfg.Chunking.ChunkSize
		}
		chunkOverlap := playChunkOverlap
		if chunkOverlap == 0 {
			chunkOverlap = cfg.Chunking.ChunkOverlap
		}

		chunkList, err := chunks.Load(args[0], chunks.LoadOptions{
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
			MaxChunks:    playMaxChunks,
		})
		if err != nil {
			return err
		}

		gen, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}
		sess, err := session.New(session.Config{
			Chunks:    chunkList,
			Generator: gen,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		printDivider(fmt.Sprintf("paper2gal | %s", args[0]))
		fmt.Printf("chunks: %d (chunk_size=%d, overlap=%d)\n", len(chunkList), chunkSize, chunkOverlap)
		fmt.Printf("strategy: %s\n", playStrategy)

		records := make([]export.Record, 0, len(chunkList))
		for _, ch := range chunkList {
			label := fmt.Sprintf("Chunk #%d", ch.Index)
			if ch.SectionTitle != "" {
				label += " " + ch.SectionTitle
			}
			printDivider(label)

			sc, err := sess.ScriptFor(ctx, ch.Index)
			if err != nil {
				return err
			}
			// Kick off generation of the next chunk while this one plays.
			sess.NotifyAdvancing(ch.Index)

			playScript(sc, playStrategy)

			records = append(records, export.Record{
				ChunkIndex: ch.Index,
				SourceID:   ch.SourceID,
				Script:     sc,
			})
		}

		printDivider("The end")
		fmt.Println("All done, nya!")

		if playExportPath != "" {
			if err := export.WriteFile(playExportPath, records); err != nil {
				return err
			}
			fmt.Printf("exported script to %s\n", playExportPath)
		}
		return nil
	},
}

func printDivider(title string) {
	line := strings.Repeat("=", 72)
	if title != "" {
		fmt.Printf("\n%s\n%s\n%s\n", line, title, line)
	} else {
		fmt.Printf("\n%s\n", line)
	}
}

// playScript renders one chunk's beats, answering quizzes and choices
// by strategy.
func playScript(sc script.Script, strategy string) {
	for _, item := range sc {
		switch item.Type {
		case script.TypeSubHead:
			fmt.Printf("  -------- %s --------\n", item.Title)

		case script.TypeDialogue:
			fmt.Printf("[%s | %s] %s\n", item.Speaker, item.Emotion, item.Text)

		case script.TypeQuiz:
			fmt.Printf("[%s | %s] Quiz: %s\n", script.DefaultSpeaker, item.Emotion, item.Question)
			picked := pickOption(item, strategy)
			fmt.Printf("  (auto pick: %d. %s)\n", picked+1, item.Options[picked])
			if item.Options[picked] == item.CorrectAnswer {
				fmt.Println(item.FeedbackCorrect)
			} else {
				fmt.Println(item.FeedbackWrong)
			}
			if item.Explanation != "" {
				fmt.Println(item.Explanation)
			}

		case script.TypeChoice:
			fmt.Printf("[%s | %s] Choice: %s\n", script.DefaultSpeaker, item.Emotion, item.Prompt)
			picked := pickOption(item, strategy)
			fmt.Printf("  (auto pick: %d. %s)\n", picked+1, item.Options[picked])
			if item.Explanation != "" {
				fmt.Println(item.Explanation)
			}
		}
	}
}

// pickOption chooses an option index for a quiz or choice item. Callers
// only pass normalized items, which always carry at least one option.
func pickOption(item script.Item, strategy string) int {
	switch strategy {
	case "correct":
		if item.Type == script.TypeQuiz {
			for i, opt := range item.Options {
				if strings.TrimSpace(opt) == strings.TrimSpace(item.CorrectAnswer) {
					return i
				}
			}
		}
		return 0
	case "last":
		return len(item.Options) - 1
	default:
		return 0
	}
}

func init() {
	playCmd.Flags().IntVar(&playChunkSize, "chunk-size", 0, "chunk size in runes (default from config)")
	playCmd.Flags().IntVar(&playChunkOverlap, "chunk-overlap", 0, "chunk overlap in runes (default from config)")
	playCmd.Flags().IntVar(&playMaxChunks, "max-chunks", 0, "process at most N chunks (0 = all)")
	playCmd.Flags().StringVar(&playStrategy, "strategy", "first", "auto answer strategy: first, correct or last")
	playCmd.Flags().StringVar(&playExportPath, "export", "", "write all generated scripts to this JSON file")

	rootCmd.AddCommand(playCmd)
}
