// FootScan
// Extracts footwear products, prices and promotions from retailer listing pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marcosevegrand/footwear-promo/internal/config"
	"github.com/marcosevegrand/footwear-promo/internal/extractor"
	"github.com/marcosevegrand/footwear-promo/internal/formatter"
	"github.com/marcosevegrand/footwear-promo/internal/logging"
	"github.com/marcosevegrand/footwear-promo/internal/navigator"
	"github.com/marcosevegrand/footwear-promo/internal/output"
	"github.com/marcosevegrand/footwear-promo/internal/scraper"
)

const (
	AppName    = "footscan"
	AppVersion = "1.0.0"

	nameColumnWidth = 40
	maxTableRows    = 25
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to configuration file (YAML or JSON); defaults apply when omitted")
		targetURL  = flag.String("url", "", "Listing page to analyze")
		htmlFile   = flag.String("file", "", "Analyze a saved HTML file instead of fetching")
		pages      = flag.Int("pages", 0, "Maximum pages to follow (overrides config)")
		noPaginate = flag.Bool("no-paginate", false, "Only analyze the first page")
		format     = flag.String("format", "", "Export format: csv, xlsx or json (overrides config)")
		outputPath = flag.String("output", "", "Output directory (overrides config)")
		onSaleOnly = flag.Bool("on-sale-only", false, "Only list and export products with a discount")
		dryRun     = flag.Bool("dry-run", false, "Show the resolved configuration without fetching")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		version    = flag.Bool("version", false, "Show version information")
		help       = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `%s v%s - Footwear Promotion Analyzer

Extracts products, prices, discounts and sitewide promotions from
footwear retailer listing pages.

Usage:
  %s [options]

Options:
`, AppName, AppVersion, os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Analyze a sale page, following up to 5 pages
  %s --url "https://www.merrell.com/us/en/sale" --pages 5

  # Analyze a saved page and export to Excel
  %s --file ./sale.html --url "https://www.merrell.com/us/en/sale" --format xlsx

  # Verify configuration
  %s --config config.yaml --dry-run

Environment:
  FOOTSCAN_* variables override the configuration file; a .env file is
  loaded when present.

`, os.Args[0], os.Args[0], os.Args[0])
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		os.Exit(0)
	}

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	if err := config.LoadEnv(); err != nil {
		log.Fatalf("❌ Failed to load .env: %v", err)
	}

	if *configFile != "" {
		if _, err := os.Stat(*configFile); os.IsNotExist(err) {
			log.Fatalf("❌ Configuration file not found: %s\n\nRun '%s --help' for usage information.", *configFile, os.Args[0])
		}
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	applyFlags(cfg, *pages, *noPaginate, *format, *outputPath, *onSaleOnly, *verbose)
	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatalf("❌ Invalid options: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("❌ Failed to configure logging: %v", err)
	}

	printHeader(cfg, *targetURL, *htmlFile)

	if *dryRun {
		printDryRunSummary(cfg)
		return
	}

	if *targetURL == "" && *htmlFile == "" {
		log.Fatalf("❌ Either --url or --file is required\n\nRun '%s --help' for usage information.", os.Args[0])
	}
	if *targetURL != "" && !navigator.IsValidURL(*targetURL) {
		log.Fatalf("❌ Not a valid http(s) URL: %s", *targetURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analysis, err := run(ctx, cfg, logger, *targetURL, *htmlFile)
	if err != nil {
		log.Fatalf("❌ Analysis failed: %v", err)
	}

	printResults(analysis, cfg.Output.OnSaleOnly)

	if len(analysis.Result.Products) == 0 {
		printTroubleshooting(analysis)
		return
	}

	report := analysis.Report(cfg.Output.OnSaleOnly)
	path, err := output.WriteFile(report, cfg.Output.Format, cfg.Output.OutputPath, analysis.StartedAt)
	if err != nil {
		log.Fatalf("❌ Export failed: %v", err)
	}

	size := "unknown size"
	if info, err := os.Stat(path); err == nil {
		size = output.FormatFileSize(info.Size())
	}

	fmt.Println("\n" + strings.Repeat("═", 60))
	fmt.Printf("✅ Done! Report saved to %s (%s)\n", path, size)
	fmt.Println(strings.Repeat("═", 60))
	fmt.Println()
}

func applyFlags(cfg *config.Config, pages int, noPaginate bool, format, outputPath string, onSaleOnly, verbose bool) {
	if pages > 0 {
		cfg.Scraping.MaxPages = pages
	}
	if noPaginate {
		cfg.Scraping.AutoPaginate = false
	}
	if format != "" {
		cfg.Output.Format = strings.ToLower(format)
	}
	if outputPath != "" {
		cfg.Output.OutputPath = outputPath
	}
	if onSaleOnly {
		cfg.Output.OnSaleOnly = true
	}
	if verbose {
		cfg.Log.Level = logrus.DebugLevel.String()
	}
}

func run(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, targetURL, htmlFile string) (*scraper.Analysis, error) {
	ex := extractor.NewExtractor(cfg.Extraction.ToOptions(), logger)

	if htmlFile != "" {
		data, err := os.ReadFile(htmlFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", htmlFile, err)
		}
		fmt.Printf("\n📄 Analyzing saved page (%s)...\n", output.FormatFileSize(int64(len(data))))
		return scraper.NewAnalyzer(nil, ex, logger).AnalyzeHTML(string(data), targetURL)
	}

	fetcher, err := scraper.NewFetcher(cfg.Scraping, logger)
	if err != nil {
		return nil, err
	}
	analyzer := scraper.NewAnalyzer(fetcher, ex, logger)
	defer analyzer.Close()

	fmt.Println("\n⏳ Fetching listing...")
	return analyzer.Analyze(ctx, targetURL, scraper.FetchOptions{
		AutoPaginate: cfg.Scraping.AutoPaginate,
		MaxPages:     cfg.Scraping.MaxPages,
	})
}

func printHeader(cfg *config.Config, targetURL, htmlFile string) {
	fmt.Println()
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("👟 %s v%s\n", AppName, AppVersion)
	fmt.Println(strings.Repeat("═", 60))
	if targetURL != "" {
		fmt.Printf("📍 URL: %s\n", targetURL)
		fmt.Printf("🏷️  Brand: %s\n", navigator.BrandFromURL(targetURL))
	}
	if htmlFile != "" {
		fmt.Printf("📄 File: %s\n", htmlFile)
	}
	fmt.Printf("🌐 Renderer: %s\n", cfg.Scraping.Renderer)
	fmt.Printf("📂 Output: %s (%s)\n", cfg.Output.OutputPath, cfg.Output.Format)
	fmt.Println(strings.Repeat("─", 60))
}

func printDryRunSummary(cfg *config.Config) {
	fmt.Println("\n🔍 [DRY RUN] Configuration Summary")
	fmt.Println(strings.Repeat("─", 40))

	fmt.Println("\n📋 Fetching:")
	fmt.Printf("  • Renderer: %s\n", cfg.Scraping.Renderer)
	fmt.Printf("  • Auto paginate: %v\n", cfg.Scraping.AutoPaginate)
	fmt.Printf("  • Max pages: %d\n", cfg.Scraping.MaxPages)
	fmt.Printf("  • Page wait: %dms\n", cfg.Scraping.PageWaitMS)
	fmt.Printf("  • Delay between requests: %dms\n", cfg.Scraping.Polite.DelayMS)
	fmt.Printf("  • Respect robots.txt: %v\n", cfg.Scraping.Polite.RespectRobotsTxt)

	fmt.Println("\n🔬 Extraction:")
	fmt.Printf("  • Min container score: %d\n", cfg.Extraction.MinContainerScore)
	fmt.Printf("  • Max containers: %d\n", cfg.Extraction.MaxContainers)
	fmt.Printf("  • Price range: $%.2f - $%.2f\n", cfg.Extraction.MinPrice, cfg.Extraction.MaxPrice)

	fmt.Println("\n📤 Output:")
	fmt.Printf("  • Format: %s\n", cfg.Output.Format)
	fmt.Printf("  • Path: %s\n", cfg.Output.OutputPath)
	fmt.Printf("  • On sale only: %v\n", cfg.Output.OnSaleOnly)

	fmt.Println("\n✅ Configuration is valid!")
	fmt.Println("Run without --dry-run to start the analysis.")
	fmt.Println()
}

func printResults(a *scraper.Analysis, onSaleOnly bool) {
	stats := a.Result.Stats

	fmt.Println("\n" + strings.Repeat("═", 60))
	fmt.Println("📊 Key Metrics")
	fmt.Println(strings.Repeat("─", 60))
	for _, m := range a.Summary.Metrics() {
		fmt.Printf("  %-24s %s\n", m[0], m[1])
	}
	fmt.Printf("  %-24s %d\n", "Pages Scraped", a.Meta.PagesScraped)
	fmt.Printf("  %-24s %d analyzed, %d candidates, %d filtered\n", "Elements", stats.ElementsAnalyzed, stats.Containers, stats.Filtered)
	if stats.UsedFallback {
		fmt.Println("  ℹ️  Products recovered from price patterns")
	}
	fmt.Printf("  %-24s %s\n", "Elapsed", a.Duration.Round(time.Millisecond))

	fmt.Println("\n🎁 Site Promotions")
	if len(a.Result.Promotions) == 0 {
		fmt.Println("  No site promotions found")
	}
	for _, promo := range a.Result.Promotions {
		fmt.Printf("  • %s\n", promo)
	}

	for _, w := range a.Result.Warnings {
		fmt.Printf("\n⚠️  %s\n", w)
	}

	rows := output.Rows(a.Result.Products, onSaleOnly)
	if len(rows) == 0 {
		return
	}

	fmt.Printf("\n👟 Products (%d)\n", len(rows))
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("  %-*s %10s %10s %8s\n", nameColumnWidth, "Name", "Original", "Sale", "Off")
	for i, row := range rows {
		if i == maxTableRows {
			fmt.Printf("  ... and %d more (see export)\n", len(rows)-maxTableRows)
			break
		}
		fmt.Printf("  %-*s %10s %10s %8s\n",
			nameColumnWidth, formatter.TruncateText(row.ProductName, nameColumnWidth),
			row.OriginalPrice, row.SalePrice, row.Discount)
	}
}

func printTroubleshooting(a *scraper.Analysis) {
	fmt.Println("\n⚠️  No products found. This could mean:")
	fmt.Println("  • The site uses heavy JavaScript that isn't loading (raise scraping.pageWaitMs)")
	fmt.Println("  • Bot detection is blocking the scraper")
	fmt.Println("  • The page is not a product listing")
	fmt.Println("  • No products are currently listed on this page")

	fmt.Println("\n🔧 Debug Information:")
	fmt.Printf("  • Fetcher: %s\n", a.Meta.ScraperType)
	fmt.Printf("  • Pages scraped: %d\n", a.Meta.PagesScraped)
	fmt.Printf("  • HTML length: %d bytes\n", a.Meta.TotalHTMLLength)
	if a.Meta.Error != "" {
		fmt.Printf("  • Error: %s\n", a.Meta.Error)
	}
	fmt.Println()
}
