package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/honeycombo/combo-service/config"
	"github.com/honeycombo/combo-service/internal/catalog"
	"github.com/honeycombo/combo-service/internal/catalogcache"
	"github.com/honeycombo/combo-service/internal/combo"
	"github.com/honeycombo/combo-service/internal/database"
	fetch "github.com/honeycombo/combo-service/internal/http"
	"github.com/honeycombo/combo-service/internal/parsers/csv"
)

var (
	recommendCatalog    string
	recommendBudget     int64
	recommendCategories []string
	recommendBrands     []string
	recommendPromotions []string
	recommendKeyword    string
	recommendSeed       int64
	recommendOutput     string
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend item combinations within a budget",
	Long: `Load the promotion catalog and print up to five combinations of discounted items
whose total price stays within the budget. At least two categories are required.

Categories: meal (식사류), snack (간식류), beverage (음료), water (생수), other (기타)`,
	Example: `  combo-service recommend --catalog ./data --budget 10000 --category meal --category beverage
  combo-service recommend --catalog ./data/cu.csv --budget 7000 -c 식사류 -c 간식류 --brand CU --seed 42
  combo-service recommend --budget 8000 -c snack -c water --promotion 1+1 --output json`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVar(&recommendCatalog, "catalog", "", "Catalog file, directory or http(s) URL (default: configured catalog source)")
	recommendCmd.Flags().Int64Var(&recommendBudget, "budget", 0, "Budget in won (required)")
	recommendCmd.Flags().StringSliceVarP(&recommendCategories, "category", "c", nil, "Category to include (repeat, at least 2)")
	recommendCmd.Flags().StringSliceVar(&recommendBrands, "brand", nil, "Only use items from these brands")
	recommendCmd.Flags().StringSliceVar(&recommendPromotions, "promotion", nil, "Only use items with these promotions (1+1, 2+1, 3+1)")
	recommendCmd.Flags().StringVar(&recommendKeyword, "keyword", "", "Require an item whose name contains this keyword")
	recommendCmd.Flags().Int64Var(&recommendSeed, "seed", 0, "Seed for reproducible results (0 = random)")
	recommendCmd.Flags().StringVar(&recommendOutput, "output", "table", "Output format: table or json")
	recommendCmd.MarkFlagRequired("budget")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req := &combo.Request{
		Budget:  recommendBudget,
		Brands:  recommendBrands,
		Keyword: recommendKeyword,
	}
	for _, raw := range recommendCategories {
		c, ok := catalog.ParseCategory(raw)
		if !ok {
			return fmt.Errorf("unknown category %q", raw)
		}
		req.Categories = append(req.Categories, c)
	}
	for _, raw := range recommendPromotions {
		req.Promotions = append(req.Promotions, catalog.ParsePromotion(raw))
	}
	if recommendSeed != 0 {
		req.Seed = &recommendSeed
	}
	if err := req.Validate(); err != nil {
		return err
	}

	var loader catalogcache.Loader
	switch {
	case recommendCatalog != "":
		loader = newLoader(recommendCatalog)
	case database.Pool() != nil:
		loader = catalogcache.NewPostgresLoader(database.NewCatalogRepository(database.Pool()))
	case cfg != nil && cfg.Catalog.Source == config.SourceURL:
		loader = catalogcache.NewURLLoader(cfg.Catalog.URLs, fetch.NewClient(cfg.Catalog.Fetch))
	case cfg != nil && cfg.Catalog.Path != "":
		loader = newLoader(cfg.Catalog.Path)
	default:
		return fmt.Errorf("no catalog: pass --catalog or configure catalog.path")
	}

	cat, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info().Str("source", cat.Source).Int("items", cat.Len()).Msg("Catalog loaded")

	engineCfg := combo.Defaults()
	if cfg != nil {
		c := cfg.Engine
		engineCfg = &c
	}
	engine, err := combo.NewEngine(engineCfg, combo.WithLogger(logger))
	if err != nil {
		return err
	}

	res, err := engine.Recommend(ctx, cat.Items, req)
	if err != nil {
		return err
	}

	switch strings.ToLower(recommendOutput) {
	case "json":
		return outputRecommendJSON(res)
	case "table":
		outputRecommendTable(req, res)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", recommendOutput)
	}
}

func outputRecommendTable(req *combo.Request, res *combo.Result) {
	if len(res.Combinations) == 0 {
		fmt.Printf("\nNo combination found: %v\n", res.Err())
		return
	}

	for i, c := range res.Combinations {
		fmt.Printf("\nCombination %d  total %s  saved %s  left %s\n", i+1,
			csv.FormatWon(c.TotalPrice), csv.FormatWon(c.SavedMoney), csv.FormatWon(req.Budget-c.TotalPrice))
		fmt.Println(strings.Repeat("-", 60))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Brand\tName\tCategory\tEvent\tPrice\tUnit Price\n")
		for _, it := range c.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				it.Brand, it.Name, it.Category.Label(), it.Promotion,
				csv.FormatWon(it.Price), csv.FormatWon(it.UnitPrice))
		}
		w.Flush()
	}
	fmt.Printf("\nScanned %d seeds, accepted %d\n", res.SeedsScanned, res.Accepted)
}

func outputRecommendJSON(res *combo.Result) error {
	out := struct {
		Combinations []*combo.Combination `json:"combinations"`
		Reason       string               `json:"reason,omitempty"`
		SeedsScanned int                  `json:"seedsScanned"`
		Accepted     int                  `json:"accepted"`
	}{res.Combinations, res.Reason, res.SeedsScanned, res.Accepted}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
