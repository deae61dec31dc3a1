package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dailymath/dailymath/internal/utils"
)

// ParseQuestionTable reads a markdown table of the form
//
//	| date       | question        | streak |
//	|------------|-----------------|--------|
//	| 2024-05-10 | What is 2 + 2?  | 3      |
//
// The streak column is optional. Rows with an unparsable date are skipped.
func ParseQuestionTable(content string) []DailyQuestion {
	var questions []DailyQuestion
	seen := make(map[string]bool)

	for i, line := range strings.Split(content, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			continue
		}
		if !strings.HasPrefix(trimmedLine, "|") || !strings.HasSuffix(trimmedLine, "|") {
			log.Printf("Skipping line %d not matching table row format: %s", i+1, trimmedLine)
			continue
		}
		if strings.Contains(trimmedLine, "---") {
			continue
		}

		parts := strings.Split(strings.Trim(trimmedLine, "|"), "|")
		if len(parts) < 2 {
			log.Printf("Skipping malformed table row (not enough '|'): %s", trimmedLine)
			continue
		}
		date := strings.TrimSpace(parts[0])
		text := strings.TrimSpace(parts[1])
		if strings.EqualFold(date, "date") {
			continue
		}
		if _, err := time.Parse(utils.DayLayout, date); err != nil {
			log.Printf("Skipping row with invalid date %q on line %d", date, i+1)
			continue
		}
		if text == "" {
			log.Printf("Skipping row with empty question on line %d", i+1)
			continue
		}
		if seen[date] {
			log.Printf("Skipping duplicate question for %s on line %d", date, i+1)
			continue
		}
		seen[date] = true

		q := DailyQuestion{ID: "q-" + date, Question: text, Date: date}
		if len(parts) >= 3 {
			if streak, err := strconv.Atoi(strings.TrimSpace(parts[2])); err == nil && streak >= 0 {
				q.Streak = streak
			}
		}
		questions = append(questions, q)
	}

	latest := -1
	for i := range questions {
		if latest == -1 || questions[i].Date > questions[latest].Date {
			latest = i
		}
	}
	if latest >= 0 {
		questions[latest].IsActive = true
	}
	return questions
}

// IngestQuestionsFromFile replaces the question set with the table in
// filePath and activates the latest one.
func (s *SQLiteStore) IngestQuestionsFromFile(ctx context.Context, filePath string) (int, error) {
	contentBytes, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read question file %s: %w", filePath, err)
	}

	questions := ParseQuestionTable(string(contentBytes))
	if len(questions) == 0 {
		log.Println("No questions found in file. Ensure it's a Markdown table with date and question columns.")
		return 0, nil
	}

	if err := s.ReplaceQuestions(ctx, questions); err != nil {
		return 0, fmt.Errorf("failed to store questions: %w", err)
	}
	log.Printf("Successfully ingested %d questions.", len(questions))
	return len(questions), nil
}
