package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"investjournal/internal/cliclient"
)

type app struct {
	apiBase string
	token   string
	output  string
	width   int

	in  io.Reader
	out io.Writer
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}
	root := &cobra.Command{
		Use:           "journalctl",
		Short:         "Operate an investment journal server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	pf := root.PersistentFlags()
	pf.StringVar(&a.apiBase, "api-base", envOr("IJ_API_BASE", "http://localhost:8080"), "journald base URL (env: IJ_API_BASE)")
	pf.StringVar(&a.token, "token", os.Getenv("IJ_TOKEN"), "bearer token (env: IJ_TOKEN)")
	pf.StringVarP(&a.output, "output", "o", "text", "output format: json|text|markdown")
	pf.IntVar(&a.width, "width", 100, "word wrap for markdown output")

	root.AddCommand(
		a.listCmd(),
		a.getCmd(),
		a.createCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.archiveCmd(),
		a.unarchiveCmd(),
		a.sellCmd(),
		a.reviewCmd(),
		a.reviewsCmd(),
		a.noteCmd(),
		a.switchesCmd(),
	)
	return root
}

func (a *app) client() *cliclient.Client {
	return &cliclient.Client{BaseURL: a.apiBase, Token: a.token}
}

func (a *app) format() (cliclient.Format, error) {
	return cliclient.ParseFormat(a.output)
}

func (a *app) listCmd() *cobra.Command {
	var archived, all bool
	var strategy, asset string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/api/journals"
			q := url.Values{}
			if archived {
				path = "/api/journals/archived"
			} else if all {
				q.Set("include_archived", "true")
			}
			if strategy != "" {
				q.Set("strategy", strategy)
			}
			if asset != "" {
				q.Set("asset", asset)
			}
			env, err := a.client().Call(cmd.Context(), http.MethodGet, path, q, nil)
			if err != nil {
				return err
			}
			return a.writeJournalList(env.Data)
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "only archived journals")
	cmd.Flags().BoolVar(&all, "all", false, "include archived journals")
	cmd.Flags().StringVar(&strategy, "strategy", "", "exact strategy label")
	cmd.Flags().StringVar(&asset, "asset", "", "exact asset")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			env, err := a.client().Call(cmd.Context(), http.MethodGet, journalPath(id), nil, nil)
			if err != nil {
				return err
			}
			return a.writeJournal(env.Data)
		},
	}
}

func (a *app) createCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a journal from a JSON document (snake_case or camelCase)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := a.readDocument(file)
			if err != nil {
				return err
			}
			env, err := a.client().Call(cmd.Context(), http.MethodPost, "/api/journals", nil, body)
			if err != nil {
				return err
			}
			return a.writeJournal(env.Data)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file, - for stdin")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace fields of a journal from a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			body, err := a.readDocument(file)
			if err != nil {
				return err
			}
			env, err := a.client().Call(cmd.Context(), http.MethodPut, journalPath(id), nil, body)
			if err != nil {
				return err
			}
			return a.writeJournal(env.Data)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file, - for stdin")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a journal and its review history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			env, err := a.client().Call(cmd.Context(), http.MethodDelete, journalPath(id), nil, nil)
			if err != nil {
				return err
			}
			if f, _ := a.format(); f == cliclient.FormatJSON {
				return cliclient.WriteJSON(a.out, env.Data)
			}
			var res struct {
				Deleted bool `json:"deleted"`
			}
			if err := json.Unmarshal(env.Data, &res); err != nil {
				return err
			}
			if res.Deleted {
				_, err = fmt.Fprintf(a.out, "journal %d deleted\n", id)
			} else {
				_, err = fmt.Fprintf(a.out, "journal %d did not exist\n", id)
			}
			return err
		},
	}
}

func (a *app) archiveCmd() *cobra.Command {
	var exitDate string
	cmd := &cobra.Command{
		Use:   "archive ID",
		Short: "Close a position (exit date defaults to today)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var body any
			if exitDate != "" {
				body = map[string]string{"exitDate": exitDate}
			}
			env, err := a.client().Call(cmd.Context(), http.MethodPost, journalPath(id)+"/archive", nil, body)
			if err != nil {
				return err
			}
			return a.writeJournal(env.Data)
		},
	}
	cmd.Flags().StringVar(&exitDate, "exit-date", "", "exit date, e.g. 2024-05-01")
	return cmd
}

func (a *app) unarchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive ID",
		Short: "Reopen an archived journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			env, err := a.client().Call(cmd.Context(), http.MethodPost, journalPath(id)+"/unarchive", nil, nil)
			if err != nil {
				return err
			}
			return a.writeJournal(env.Data)
		},
	}
}

func (a *app) sellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Manage partial sell records",
	}

	var rec cliclient.SellRecord
	addFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&rec.Date, "date", "", "sell date")
		c.Flags().StringVar(&rec.Price, "price", "", "sell price")
		c.Flags().StringVar(&rec.Amount, "amount", "", "amount sold")
		c.Flags().StringVar(&rec.Reason, "reason", "", "why (required)")
	}

	add := &cobra.Command{
		Use:   "add ID",
		Short: "Append a sell record",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			env, err := a.client().Call(c.Context(), http.MethodPost, journalPath(id)+"/sell-records", nil, rec)
			if err != nil {
				return err
			}
			return a.writeJournal(env.Data)
		},
	}
	addFlags(add)

	update := &cobra.Command{
		Use:   "update ID INDEX",
		Short: "Replace the record at INDEX (zero-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			id, idx, err := parseIDIndex(args)
			if err != nil {
				return err
			}
			env, err := a.client().Call(c.Context(), http.MethodPut, sellPath(id, idx), nil, rec)
			if err != nil {
				return err
			}
			return a.writeJournal(env.Data)
		},
	}
	addFlags(update)

	remove := &cobra.Command{
		Use:     "rm ID INDEX",
		Aliases: []string{"remove"},
		Short:   "Remove the record at INDEX (zero-based)",
		Args:    cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			id, idx, err := parseIDIndex(args)
			if err != nil {
				return err
			}
			env, err := a.client().Call(c.Context(), http.MethodDelete, sellPath(id, idx), nil, nil)
			if err != nil {
				return err
			}
			return a.writeJournal(env.Data)
		},
	}

	cmd.AddCommand(add, update, remove)
	return cmd
}

func (a *app) reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review ID",
		Short: "Ask the AI provider for a new review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			env, err := a.client().Call(cmd.Context(), http.MethodPost, journalPath(id)+"/ai-review", nil, nil)
			if err != nil {
				return err
			}
			return a.writeReviews(wrapOne(env.Data))
		},
	}
}

func (a *app) reviewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reviews ID",
		Short: "Show review history, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			env, err := a.client().Call(cmd.Context(), http.MethodGet, journalPath(id)+"/review-logs", nil, nil)
			if err != nil {
				return err
			}
			return a.writeReviews(env.Data)
		},
	}
}

func (a *app) noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note ID TEXT...",
		Short: "Append a hand-written review note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			body := map[string]string{"content": strings.Join(args[1:], " ")}
			env, err := a.client().Call(cmd.Context(), http.MethodPost, journalPath(id)+"/review-logs", nil, body)
			if err != nil {
				return err
			}
			return a.writeReviews(wrapOne(env.Data))
		},
	}
}

func (a *app) switchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switches",
		Short: "List feature switches, or set one with: switches set NAME on|off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := a.client().Call(cmd.Context(), http.MethodGet, "/api/system/switches", nil, nil)
			if err != nil {
				return err
			}
			if f, _ := a.format(); f == cliclient.FormatJSON {
				return cliclient.WriteJSON(a.out, env.Data)
			}
			var items []struct {
				Name    string `json:"name"`
				Enabled bool   `json:"enabled"`
			}
			if err := json.Unmarshal(env.Data, &items); err != nil {
				return err
			}
			for _, it := range items {
				if _, err := fmt.Fprintf(a.out, "%s\t%s\n", it.Name, onOff(it.Enabled)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	set := &cobra.Command{
		Use:   "set NAME on|off",
		Short: "Toggle a feature switch",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			enabled, err := parseOnOff(args[1])
			if err != nil {
				return err
			}
			body := map[string]bool{"enabled": enabled}
			env, err := a.client().Call(c.Context(), http.MethodPut, "/api/system/switches/"+url.PathEscape(args[0]), nil, body)
			if err != nil {
				return err
			}
			if f, _ := a.format(); f == cliclient.FormatJSON {
				return cliclient.WriteJSON(a.out, env.Data)
			}
			_, err = fmt.Fprintf(a.out, "%s\t%s\n", args[0], onOff(enabled))
			return err
		},
	}
	cmd.AddCommand(set)
	return cmd
}

func (a *app) writeJournalList(data json.RawMessage) error {
	f, err := a.format()
	if err != nil {
		return err
	}
	if f == cliclient.FormatJSON {
		return cliclient.WriteJSON(a.out, data)
	}
	var items []cliclient.Journal
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	return cliclient.WriteJournals(a.out, items)
}

func (a *app) writeJournal(data json.RawMessage) error {
	f, err := a.format()
	if err != nil {
		return err
	}
	if f == cliclient.FormatJSON {
		return cliclient.WriteJSON(a.out, data)
	}
	var j cliclient.Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if err := cliclient.WriteJournals(a.out, []cliclient.Journal{j}); err != nil {
		return err
	}
	for i, r := range j.SellRecords {
		if _, err := fmt.Fprintf(a.out, "  sell[%d]\t%s\t%s @ %s\t%s\n", i, r.Date, r.Amount, r.Price, r.Reason); err != nil {
			return err
		}
	}
	for _, w := range j.Warnings {
		if _, err := fmt.Fprintf(a.out, "  warning: %s\n", w); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) writeReviews(data json.RawMessage) error {
	f, err := a.format()
	if err != nil {
		return err
	}
	if f == cliclient.FormatJSON {
		return cliclient.WriteJSON(a.out, data)
	}
	var items []cliclient.Review
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	return cliclient.WriteReviews(a.out, f, items, a.width)
}

func (a *app) readDocument(file string) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if file == "" || file == "-" {
		if a.in == nil {
			return nil, errors.New("no input")
		}
		b, err = io.ReadAll(a.in)
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, errors.New("input is not valid JSON")
	}
	return b, nil
}

func wrapOne(data json.RawMessage) json.RawMessage {
	return json.RawMessage("[" + string(data) + "]")
}

func journalPath(id uint64) string {
	return "/api/journals/" + strconv.FormatUint(id, 10)
}

func sellPath(id uint64, index int) string {
	return journalPath(id) + "/sell-records/" + strconv.Itoa(index)
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid journal id %q", s)
	}
	return id, nil
}

func parseIDIndex(args []string) (uint64, int, error) {
	id, err := parseID(args[0])
	if err != nil {
		return 0, 0, err
	}
	idx, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil || idx < 0 {
		return 0, 0, fmt.Errorf("invalid index %q", args[1])
	}
	return id, idx, nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "enable", "enabled":
		return true, nil
	case "off", "false", "0", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
