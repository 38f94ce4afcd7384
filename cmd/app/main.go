package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mkovac/linkstash/internal"
	"github.com/mkovac/linkstash/internal/mcpserver"
	"github.com/mkovac/linkstash/internal/store"
	pkgconfig "github.com/mkovac/linkstash/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func openStore(cmd *cli.Command) (*store.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.SQLite.Path)
}

// normalizeTags converts a user-supplied comma-separated tag list into
// the stored delimiter-wrapped form (",a,b,"). Empty input yields the
// empty sentinel ",".
func normalizeTags(s string) string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return ","
	}
	return "," + strings.Join(tags, ",") + ","
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid bookmark id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printBookmarks(recs []store.Bookmark) {
	for _, b := range recs {
		fmt.Printf("%d. %s\n", b.ID, b.URL)
		if b.Title != "" {
			fmt.Printf("   > %s\n", b.Title)
		}
		if b.Desc != "" {
			fmt.Printf("   + %s\n", b.Desc)
		}
		if b.Tags != "," && b.Tags != "" {
			fmt.Printf("   # %s\n", strings.Trim(b.Tags, ","))
		}
	}
}

func addAction(_ context.Context, cmd *cli.Command) error {
	url := cmd.Args().First()
	if url == "" {
		return fmt.Errorf("usage: add <url>")
	}
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.AddRec(url, cmd.String("title"), normalizeTags(cmd.String("tags")), cmd.String("desc"))
	if err != nil {
		return err
	}
	fmt.Printf("added bookmark %d\n", id)
	return nil
}

func updateAction(_ context.Context, cmd *cli.Command) error {
	ids, err := parseIDs(cmd.Args().Slice())
	if err != nil || len(ids) != 1 {
		return fmt.Errorf("usage: update <id>")
	}
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	var fields store.UpdateFields
	if cmd.IsSet("url") {
		v := cmd.String("url")
		fields.URL = &v
	}
	if cmd.IsSet("title") {
		v := cmd.String("title")
		fields.Title = &v
	}
	if cmd.IsSet("tags") {
		v := normalizeTags(cmd.String("tags"))
		fields.Tags = &v
	}
	if cmd.IsSet("desc") {
		v := cmd.String("desc")
		fields.Desc = &v
	}
	if err := db.UpdateRec(ids[0], fields); err != nil {
		return err
	}
	fmt.Printf("updated bookmark %d\n", ids[0])
	return nil
}

func deleteAction(_ context.Context, cmd *cli.Command) error {
	ids, err := parseIDs(cmd.Args().Slice())
	if err != nil || len(ids) == 0 {
		return fmt.Errorf("usage: delete <id>...")
	}
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(ids) == 1 {
		if err := db.DeleteRec(ids[0]); err != nil {
			return err
		}
		fmt.Printf("deleted bookmark %d\n", ids[0])
		return nil
	}
	n, err := db.DeleteRecBatch(ids)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d bookmarks\n", n)
	return nil
}

func listAction(_ context.Context, cmd *cli.Command) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	all, err := db.GetRecAll()
	if err != nil {
		return err
	}
	printBookmarks(all)
	return nil
}

func searchAction(_ context.Context, cmd *cli.Command) error {
	keywords := cmd.Args().Slice()
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	var results []store.Bookmark
	if cmd.Bool("tags") {
		results, err = db.SearchTags(keywords)
	} else {
		results, err = db.Search(keywords, cmd.Bool("any"), true, cmd.Bool("regex"))
	}
	if err != nil {
		return err
	}
	printBookmarks(results)
	return nil
}

func undoAction(_ context.Context, cmd *cli.Command) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.UndoLast()
	if err != nil {
		return err
	}
	if res == nil {
		fmt.Println("nothing to undo")
		return nil
	}
	fmt.Printf("reverted %s (%d bookmarks)\n", res.Operation, res.Affected)
	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpAction(_ context.Context, cmd *cli.Command) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return mcpserver.New(db).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:  "linkstash",
		Usage: "Transactional bookmark store with full-text search and multi-step undo",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a bookmark",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Page title"},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
					&cli.StringFlag{Name: "desc", Usage: "Description"},
				},
				Action: addAction,
			},
			{
				Name:      "update",
				Usage:     "Update fields of a bookmark",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "New URL"},
					&cli.StringFlag{Name: "title", Usage: "New title"},
					&cli.StringFlag{Name: "tags", Usage: "New comma-separated tags"},
					&cli.StringFlag{Name: "desc", Usage: "New description"},
				},
				Action: updateAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete one or more bookmarks",
				ArgsUsage: "<id>...",
				Action:    deleteAction,
			},
			{
				Name:   "list",
				Usage:  "List all bookmarks",
				Action: listAction,
			},
			{
				Name:      "search",
				Usage:     "Full-text search over bookmarks",
				ArgsUsage: "<keyword>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "any", Usage: "Match any keyword instead of all"},
					&cli.BoolFlag{Name: "regex", Usage: "Treat the single keyword as a regular expression"},
					&cli.BoolFlag{Name: "tags", Usage: "Match keywords against tags only"},
				},
				Action: searchAction,
			},
			{
				Name:   "undo",
				Usage:  "Revert the most recent add, update or delete",
				Action: undoAction,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Action: mcpAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
