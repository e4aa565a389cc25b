package cliclient

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (json|text|markdown)", s)
	}
}

// WriteJSON pretty-prints raw response data.
func WriteJSON(w io.Writer, data json.RawMessage) error {
	var v any
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

type Journal struct {
	ID             uint64       `json:"id"`
	Date           string       `json:"date"`
	Asset          string       `json:"asset"`
	Amount         string       `json:"amount"`
	Price          string       `json:"price"`
	Strategy       string       `json:"strategy"`
	ExpectedReturn string       `json:"expectedReturn"`
	Archived       bool         `json:"archived"`
	ExitDate       *string      `json:"exitDate"`
	SellRecords    []SellRecord `json:"sellRecords"`
	AIReview       string       `json:"aiReview"`
	Warnings       []string     `json:"warnings"`
}

type SellRecord struct {
	Date   string `json:"date"`
	Price  string `json:"price"`
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

type Review struct {
	ID        uint64 `json:"id"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	CreatedAt string `json:"createdAt"`
}

// WriteJournals prints one line per journal.
func WriteJournals(w io.Writer, items []Journal) error {
	for _, j := range items {
		status := "active"
		if j.Archived {
			status = "archived"
			if j.ExitDate != nil {
				status += " " + *j.ExitDate
			}
		}
		if _, err := fmt.Fprintf(w, "#%d\t%s\t%s\t%s @ %s\t%s\t%s\tsells=%d\n",
			j.ID, j.Date, j.Asset, j.Amount, j.Price, j.Strategy, status, len(j.SellRecords)); err != nil {
			return err
		}
	}
	return nil
}

// ReviewsMarkdown renders the history as one markdown document, oldest first.
func ReviewsMarkdown(items []Review) string {
	var b strings.Builder
	for i, r := range items {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "## #%d · %s · %s\n\n", r.ID, r.Source, r.CreatedAt)
		b.WriteString(strings.TrimSpace(r.Content))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteReviews prints the history; markdown format goes through glamour.
func WriteReviews(w io.Writer, format Format, items []Review, width int) error {
	md := ReviewsMarkdown(items)
	if format != FormatMarkdown {
		_, err := io.WriteString(w, md)
		return err
	}
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
