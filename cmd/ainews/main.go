package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jcyag/ai-news-daily/internal/collect"
	"github.com/jcyag/ai-news-daily/internal/config"
	"github.com/jcyag/ai-news-daily/internal/digest"
	"github.com/jcyag/ai-news-daily/internal/pipeline"
	"github.com/jcyag/ai-news-daily/internal/source"
	"github.com/jcyag/ai-news-daily/internal/subscribe"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	// Local runs keep credentials in a .env file; absence is fine.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "ainews",
	Short:   "Daily AI news digest by email",
	Long:    "ainews collects AI news from feeds, boards, and search, ranks the day's top items, and mails them as a digest.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(subscribersCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ainews", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/ainews/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure sources and keywords, and put SMTP credentials in the environment or a .env file.")
		return nil
	},
}

// --- collect command ---

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect items from configured sources without sending anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Collecting from sources...")

		collector := collect.NewCollector(source.BuildAll(cfg), cfg.Collect)
		result := collector.Collect(cmd.Context())

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  Within window: %d\n", len(result.Items))
		fmt.Printf("  Too old: %d\n", result.TooOld)
		if len(result.Failed) > 0 {
			fmt.Printf("  Failed sources: %v\n", result.Failed)
		}

		if len(result.Sources) > 0 {
			fmt.Println("\nItems by source:")
			// Sort sources by count descending
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range result.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		return nil
	},
}

// --- run command ---

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: collect -> filter -> dedup -> rank -> translate -> send",
	RunE: func(cmd *cobra.Command, args []string) error {
		var sender pipeline.Sender
		if !dryRun {
			var err error
			sender, err = pipeline.NewSender(cfg)
			if err != nil {
				return err
			}
		}

		pipe, err := pipeline.New(cfg, sender)
		if err != nil {
			return err
		}
		result := pipe.Run(context.Background(), dryRun)

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if dryRun && len(result.Items) > 0 {
			fmt.Println("\nToday's selection:")
			for i, it := range result.Items {
				fmt.Printf("  %d. %s\n     %s\n", i+1, it.DisplayTitle(), it.URL)
			}
		}

		for _, step := range result.Steps {
			if step.Err != nil {
				return fmt.Errorf("pipeline finished with errors")
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the digest but do not send it")
}

// --- send command ---

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an empty test digest to verify SMTP credentials and recipients",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := pipeline.NewSender(cfg)
		if err != nil {
			return err
		}

		builder, err := digest.NewBuilder(cfg.Email.SubjectPrefix, cfg.Subscribe.UnsubscribeToken)
		if err != nil {
			return err
		}
		d, err := builder.Build(nil)
		if err != nil {
			return err
		}

		if err := sender.Send(d); err != nil {
			return err
		}
		fmt.Printf("Test digest sent: %s\n", d.Subject)
		return nil
	},
}

// --- subscribers command ---

var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "Manage the recipient list",
}

var subscribersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List current subscribers",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := subscribe.NewManager(cfg.GetDataDir(), cfg.Subscribe, cfg.Email)
		subs, err := mgr.Load()
		if err != nil {
			return err
		}

		if len(subs) == 0 {
			fmt.Println("No subscribers yet. Run 'ainews subscribers sync' to scan the inbox,")
			fmt.Println("or rely on EMAIL_TO for a fixed recipient list.")
			return nil
		}

		fmt.Printf("Subscribers (%d):\n", len(subs))
		for _, addr := range subs {
			fmt.Printf("  %s\n", addr)
		}
		return nil
	},
}

var subscribersSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Scan the inbox for subscription mails and update the list",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := subscribe.NewManager(cfg.GetDataDir(), cfg.Subscribe, cfg.Email)
		result, err := mgr.Sync()
		if err != nil {
			return err
		}

		fmt.Println("Subscriber sync complete:")
		fmt.Printf("  Mails scanned: %d\n", result.Scanned)
		fmt.Printf("  Subscribed: %d\n", len(result.Subscribed))
		fmt.Printf("  Unsubscribed: %d\n", len(result.Unsubscribed))

		subs, err := mgr.Load()
		if err != nil {
			return err
		}
		fmt.Printf("  Current subscribers: %d (%s)\n", len(subs), mgr.Path())
		return nil
	},
}

func init() {
	subscribersCmd.AddCommand(subscribersListCmd)
	subscribersCmd.AddCommand(subscribersSyncCmd)
}
