package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eringen/wpmigrate"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		if err := runImport(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "resanitize":
		if err := runResanitize(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("wpmigrate %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func loadConfig(path string) (wpmigrate.Config, error) {
	if path == "" {
		return wpmigrate.DefaultConfig(), nil
	}
	return wpmigrate.LoadConfig(path)
}

func openEnvironment(cfg wpmigrate.Config) (*wpmigrate.Store, wpmigrate.Storage, error) {
	store, err := wpmigrate.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return store, wpmigrate.NewDiskStorage(cfg.StorageDir, cfg.StorageURL), nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	store, storage, err := openEnvironment(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := wpmigrate.NewImporter(cfg, store, storage).Run()
	if err != nil {
		return err
	}
	log.Printf("Done. pages=%d posts=%d skipped=%d logos=%d pdfs=%d",
		stats.PagesImported, stats.PostsImported, stats.PostsSkipped,
		stats.LogosDownloaded, stats.PDFsDownloaded)
	return nil
}

func runResanitize(args []string) error {
	fs := flag.NewFlagSet("resanitize", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	store, storage, err := openEnvironment(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	changed, err := wpmigrate.NewImporter(cfg, store, storage).Resanitize()
	if err != nil {
		return err
	}
	log.Printf("Resanitized %d document(s)", changed)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	addr := fs.String("addr", ":3000", "listen address")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	store, err := wpmigrate.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	return wpmigrate.NewServer(cfg, store).Start(*addr)
}

func printUsage() {
	fmt.Println(`wpmigrate - one-shot WordPress to CMS content migration

Usage:
  wpmigrate <command> [arguments]

Commands:
  import        Run the full migration (pages, posts, assets, PDFs)
  resanitize    Re-run the HTML sanitizer over stored documents
  serve         Preview the migrated content over HTTP
  version       Print the wpmigrate version
  help          Show this help message

Examples:
  wpmigrate import -config migrate.yaml
  wpmigrate serve -addr :3000`)
}
