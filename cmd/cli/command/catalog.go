package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"
)

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Browse titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		var q client.TitleQuery
		q.Name, _ = cmd.Flags().GetString("name")
		q.Category, _ = cmd.Flags().GetString("category")
		q.Genre, _ = cmd.Flags().GetString("genre")
		q.Year, _ = cmd.Flags().GetInt("year")
		q.Limit, _ = cmd.Flags().GetInt("limit")
		q.Offset, _ = cmd.Flags().GetInt("offset")

		page, err := newClient().ListTitles(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}
		if len(page.Results) == 0 {
			fmt.Println("No titles found.")
			return nil
		}

		fmt.Printf("Titles (%d total):\n\n", page.Count)
		for _, t := range page.Results {
			fmt.Printf("ID: %d | %s | year: %s | rating: %s\n", t.ID, t.Name, optional(t.Year), optional(t.Rating))
		}
		if page.Next != nil {
			fmt.Printf("\nmore: %s\n", *page.Next)
		}
		return nil
	},
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews [title-id]",
	Short: "List the reviews of a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}

		page, err := newClient().ListReviews(cmd.Context(), titleID)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		for _, r := range page.Results {
			fmt.Printf("[%d/10] %s: %s\n", r.Score, r.Author, r.Text)
		}
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review [title-id] [score] [text]",
	Short: "Review a title",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score: %w", err)
		}

		r, err := newClient().CreateReview(cmd.Context(), titleID, dto.CreateReviewDTO{Text: args[2], Score: &score})
		if err != nil {
			return fmt.Errorf("failed to post review: %w", err)
		}
		success("Review %d posted", r.ID)
		return nil
	},
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func init() {
	rootCmd.AddCommand(titlesCmd, reviewsCmd, reviewCmd)

	titlesCmd.Flags().String("name", "", "Filter by name (contains)")
	titlesCmd.Flags().String("category", "", "Filter by category slug (contains)")
	titlesCmd.Flags().String("genre", "", "Filter by genre slug (contains)")
	titlesCmd.Flags().Int("year", 0, "Filter by exact year")
	titlesCmd.Flags().Int("limit", 0, "Page size")
	titlesCmd.Flags().Int("offset", 0, "Page offset")
}
