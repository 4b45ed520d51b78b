package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/bbs-archive-parser/pkg/mapreduce"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func TopicsAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	topics, err := database.ListTopics(c.Context, c.String("board"), c.Int("limit"))
	if err != nil {
		return err
	}

	if len(topics) == 0 {
		fmt.Println("No topics found")
		return nil
	}

	// Print table header
	fmt.Printf("%-10s %-12s %-14s %-20s %-6s %s\n", "Reid", "Board", "Author", "Created", "Posts", "Title")
	fmt.Println(strings.Repeat("-", 100))

	for _, t := range topics {
		fmt.Printf("%-10d %-12s %-14s %-20s %-6d %s\n",
			t.Reid,
			t.Board,
			t.Author,
			t.CreatedAt.Format("2006-01-02 15:04:05"),
			t.PostCount,
			t.Title,
		)
	}

	fmt.Printf("\nTotal: %d topics\n", len(topics))
	fmt.Printf("\nTip: Use 'bbs-archive-parser topics show <reid>' to see a topic\n")

	return nil
}

// TopicAction prints one stored topic as YAML
func TopicAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	reid, err := ReidArg(c)
	if err != nil {
		return err
	}

	topic, err := database.GetTopic(c.Context, reid)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(topic); err != nil {
		return fmt.Errorf("failed to encode topic: %w", err)
	}
	return enc.Close()
}

func AuthorsAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	counts, err := database.AuthorPostCounts(c.Context, c.String("board"))
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Println("No authors found")
		return nil
	}
	mapreduce.PrintTop(os.Stdout, counts, c.Int("limit"))
	return nil
}

func RunsAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-12s %-8s %-8s %-8s %-8s %-8s %s\n",
		"ID", "Created", "Board", "Docs", "Parsed", "Skipped", "Failed", "Saved", "Dry run")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-12s %-8d %-8d %-8d %-8d %-8d %v\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Board,
			r.Documents,
			r.Parsed,
			r.Skipped,
			r.Failed,
			r.Saved,
			r.DryRun,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}
