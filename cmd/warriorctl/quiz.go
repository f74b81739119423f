package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mptwarrior/warrior/internal/app"
	"github.com/mptwarrior/warrior/internal/calculator"
	"github.com/mptwarrior/warrior/internal/models"
	"github.com/mptwarrior/warrior/internal/storage"
)

// quizFile is the seed format. Questions without a moduleId inherit Module.
//
//	module: module-1
//	questions:
//	  - id: m1-q1
//	    type: multiple-choice
//	    question: What does SL stand for?
//	    options: [Stop loss, Short lot]
//	    correctAnswer: 0
//	    points: 10
type quizFile struct {
	Module    string                 `yaml:"module"`
	Questions []*models.QuizQuestion `yaml:"questions"`
}

func quizCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Academy quiz content",
	}

	var dryRun bool
	seed := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Create or replace quiz questions from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			questions, err := loadQuestions(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if dryRun {
				fmt.Printf("%d questions are valid\n", len(questions))
				return nil
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				n, err := seedQuestions(ctx, a.Store, questions, time.Now().UTC())
				if err != nil {
					return err
				}
				fmt.Printf("seeded %d questions\n", n)
				return nil
			})
		},
	}
	seed.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without writing")
	cmd.AddCommand(seed)
	return cmd
}

// loadQuestions decodes and validates a seed file. Order defaults to the
// position within the file.
func loadQuestions(r io.Reader) ([]*models.QuizQuestion, error) {
	var f quizFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse quiz file: %w", err)
	}
	if len(f.Questions) == 0 {
		return nil, errors.New("no questions found")
	}

	seen := make(map[string]bool, len(f.Questions))
	for i, q := range f.Questions {
		if q == nil {
			return nil, fmt.Errorf("question %d is empty", i+1)
		}
		if q.ModuleID == "" {
			q.ModuleID = f.Module
		}
		if q.Order == 0 {
			q.Order = i + 1
		}
		if err := calculator.ValidateQuestion(q); err != nil {
			return nil, err
		}
		key := q.ModuleID + "/" + q.ID
		if seen[key] {
			return nil, fmt.Errorf("duplicate question %s", key)
		}
		seen[key] = true
	}
	return f.Questions, nil
}

func seedQuestions(ctx context.Context, store storage.QuizStore, questions []*models.QuizQuestion, now time.Time) (int, error) {
	for i, q := range questions {
		q.CreatedAt = now
		if existing, err := store.GetQuestion(ctx, q.ModuleID, q.ID); err == nil {
			q.CreatedAt = existing.CreatedAt
		} else if !errors.Is(err, storage.ErrNotFound) {
			return i, err
		}
		q.UpdatedAt = now
		if err := store.UpsertQuestion(ctx, q); err != nil {
			return i, fmt.Errorf("failed to store %s/%s: %w", q.ModuleID, q.ID, err)
		}
	}
	return len(questions), nil
}
