// cmd/tools/library-indexer/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"healing-guide/internal/common/config"
	"healing-guide/internal/common/database"
	"healing-guide/internal/common/logger"
	"healing-guide/internal/handlers/content/library/queries"
	"healing-guide/internal/models"
	"healing-guide/internal/repository"
	"healing-guide/pkg/catalog"

	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	catalogPath string
	configPath  string
	dryRun      bool
	skipSearch  bool

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "library-indexer",
	Short: "Validate and publish the content library catalog",
	Long: `library-indexer manages configs/catalog/library.json, the editorial
source of the /api/library endpoint. It validates the catalog, edits
entries and loads them into PostgreSQL and the Elasticsearch library index.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logger.New("info", "console")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [catalog.json]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Check the catalog against its schema and content rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		useCatalogArg(args)
		cat, err := loadValid()
		if err != nil {
			return err
		}
		fmt.Printf("Catalog %s is valid: %d items in %d categories.\n",
			cat.Version, len(cat.Items), len(cat.Categories()))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [catalog.json]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Print the catalog entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		useCatalogArg(args)
		cat, err := loadValid()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tTYPE\tPUBLISHED\tTITLE")
		for _, entry := range cat.Items {
			item := entry.Item()
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", item.ID, item.Category, item.ContentType, item.IsPublished, item.Title)
		}
		return w.Flush()
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a new entry to the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		entry := catalog.Entry{}
		entry.ID, _ = flags.GetString("id")
		entry.Title, _ = flags.GetString("title")
		entry.Category, _ = flags.GetString("category")
		entry.ContentType, _ = flags.GetString("type")
		entry.Description, _ = flags.GetString("description")
		entry.URL, _ = flags.GetString("url")
		entry.Tags, _ = flags.GetStringSlice("tags")
		if draft, _ := flags.GetBool("draft"); draft {
			published := false
			entry.Published = &published
		}

		cat, err := loadValid()
		if err != nil {
			return err
		}
		cat.Items = append(cat.Items, entry)
		if err := save(cat); err != nil {
			return err
		}
		fmt.Printf("Added library item: %s\n", entry.ID)
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <id> [id...]",
	Short: "Mark entries as published",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPublished(args, true)
	},
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish <id> [id...]",
	Short: "Hide entries from the public library",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPublished(args, false)
	},
}

var indexCmd = &cobra.Command{
	Use:   "index [catalog.json]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Load the catalog into PostgreSQL and Elasticsearch",
	Long: `index upserts every catalog entry into the library_items table and,
when Elasticsearch is configured, bulk indexes them into the library index.
Entries removed from the catalog are not deleted; unpublish them instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		useCatalogArg(args)
		cat, err := loadValid()
		if err != nil {
			return err
		}
		if dryRun {
			fmt.Printf("Dry run: %d items would be indexed.\n", len(cat.Items))
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		items := make([]*models.LibraryItem, 0, len(cat.Items))
		now := time.Now().UTC()
		for _, entry := range cat.Items {
			item := entry.Item()
			item.CreatedAt = now
			items = append(items, item)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return indexPostgres(gctx, cfg.Database.Postgres, items)
		})
		if cfg.Database.Elasticsearch.Enabled() && !skipSearch {
			g.Go(func() error {
				return indexSearch(gctx, cfg.Database.Elasticsearch, items)
			})
		} else {
			log.Info("Skipping Elasticsearch, library search will use PostgreSQL")
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("Indexed %d library items.\n", len(items))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "configs/catalog/library.json", "Path to the library catalog")

	addCmd.Flags().String("id", "", "Slug id (e.g., vata-winter-routine)")
	addCmd.Flags().String("title", "", "Title shown in the library")
	addCmd.Flags().String("category", "", "Category (e.g., seasonal, nutrition)")
	addCmd.Flags().String("type", "article", "Content type: "+strings.Join(catalog.ContentTypes, ", "))
	addCmd.Flags().String("description", "", "Short description")
	addCmd.Flags().String("url", "", "Absolute http(s) url or site path")
	addCmd.Flags().StringSlice("tags", nil, "Comma separated tags")
	addCmd.Flags().Bool("draft", false, "Add the entry unpublished")
	_ = addCmd.MarkFlagRequired("id")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("category")

	indexCmd.Flags().StringVar(&configPath, "config", "", "Config file (defaults to configs/config.yaml plus environment)")
	indexCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only, write nothing")
	indexCmd.Flags().BoolVar(&skipSearch, "skip-search", false, "Only write PostgreSQL")

	rootCmd.AddCommand(validateCmd, listCmd, addCmd, publishCmd, unpublishCmd, indexCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// useCatalogArg lets a positional path override --catalog.
func useCatalogArg(args []string) {
	if len(args) == 1 {
		catalogPath = args[0]
	}
}

// loadValid loads the catalog and turns every problem into one error.
func loadValid() (*catalog.Catalog, error) {
	cat, problems, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(problems) > 0 {
		lines := make([]string, 0, len(problems))
		for _, p := range problems {
			lines = append(lines, "  "+p.String())
		}
		return nil, fmt.Errorf("catalog validation failed:\n%s", strings.Join(lines, "\n"))
	}
	return cat, nil
}

func setPublished(ids []string, published bool) error {
	cat, err := loadValid()
	if err != nil {
		return err
	}

	pending := make(map[string]bool, len(ids))
	for _, id := range ids {
		pending[id] = true
	}
	for i := range cat.Items {
		if pending[cat.Items[i].ID] {
			value := published
			cat.Items[i].Published = &value
			delete(pending, cat.Items[i].ID)
		}
	}
	if len(pending) > 0 {
		missing := make([]string, 0, len(pending))
		for id := range pending {
			missing = append(missing, id)
		}
		return fmt.Errorf("library items not found: %s", strings.Join(missing, ", "))
	}

	if err := save(cat); err != nil {
		return err
	}
	fmt.Printf("Updated %d library items, published=%t\n", len(ids), published)
	return nil
}

// save re-validates before writing so a bad edit never reaches disk.
func save(cat *catalog.Catalog) error {
	cat.LastUpdated = time.Now().Format("2006-01-02")
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if _, problems, err := catalog.Parse(data); err != nil {
		return err
	} else if len(problems) > 0 {
		return fmt.Errorf("refusing to save invalid catalog: %s", problems[0])
	}
	return os.WriteFile(catalogPath, append(data, '\n'), 0o644)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func indexPostgres(ctx context.Context, cfg config.PostgresConfig, items []*models.LibraryItem) error {
	pg, err := database.NewPostgres(cfg)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	repo := repository.NewLibraryRepository(pg.DB)
	for _, item := range items {
		if err := repo.Upsert(ctx, item); err != nil {
			return err
		}
	}
	log.Info("PostgreSQL library updated", zap.Int("items", len(items)))
	return nil
}

func indexSearch(ctx context.Context, cfg config.ElasticsearchConfig, items []*models.LibraryItem) error {
	es, err := database.NewElasticsearch(cfg)
	if err != nil {
		return err
	}
	if err := es.EnsureIndex(ctx, cfg.LibraryIndex, queries.IndexMapping); err != nil {
		return err
	}

	bulk, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     es.Client,
		Index:      cfg.LibraryIndex,
		NumWorkers: 2,
		Refresh:    "true",
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for _, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal library item %s: %w", item.ID, err)
		}
		err = bulk.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: item.ID,
			Body:       bytes.NewReader(body),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					log.Error("Bulk index failed", zap.String("id", item.DocumentID), zap.Error(err))
					return
				}
				log.Error("Bulk index rejected",
					zap.String("id", item.DocumentID),
					zap.String("type", res.Error.Type),
					zap.String("reason", res.Error.Reason),
				)
			},
		})
		if err != nil {
			return fmt.Errorf("queue library item %s: %w", item.ID, err)
		}
	}

	if err := bulk.Close(ctx); err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	stats := bulk.Stats()
	if stats.NumFailed > 0 {
		return fmt.Errorf("bulk index: %d of %d documents failed", stats.NumFailed, stats.NumAdded)
	}
	log.Info("Elasticsearch library updated",
		zap.String("index", cfg.LibraryIndex),
		zap.Uint64("indexed", stats.NumIndexed),
	)
	return nil
}
