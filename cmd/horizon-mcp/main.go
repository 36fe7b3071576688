package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/horizon-tools-mcp/internal/detection"
	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
	"github.com/ironsheep/horizon-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("horizon-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "detect":
			setupLogging()
			if err := runDetect(os.Args[2:]); err != nil {
				log.Fatalf("detect: %v", err)
			}
			return
		}
	}

	setupLogging()
	cfg := server.ConfigFromEnv(Version)
	if cfg.Debug {
		log.Printf("Horizon MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// setupLogging sends logs to stderr; stdout is for MCP protocol and results.
func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

func printUsage() {
	fmt.Println("horizon-tools-mcp - MCP server for horizon detection and tuning")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  horizon-tools-mcp [options]")
	fmt.Println("  horizon-tools-mcp detect [flags] <image>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("The detect command runs one detection cycle and prints the result as JSON.")
	fmt.Println("Run 'horizon-tools-mcp detect -h' for its flags.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug        Enable debug logging\n", server.EnvLogLevel)
	fmt.Printf("  %s=name          Default segment detector (%v)\n", server.EnvDetector, detection.Names())
	fmt.Printf("  %s=dir       Parent directory for snapshots\n", server.EnvSnapshotDir)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// runDetect handles the detect subcommand. Every tuning parameter is a flag
// of the same name.
func runDetect(args []string) error {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	detector := fs.String("detector", "", fmt.Sprintf("segment detector %v", detection.Names()))

	knobs := horizon.Knobs()
	values := make(map[string]*int, len(knobs))
	for _, k := range knobs {
		values[k.Name] = fs.Int(k.Name, k.Default, fmt.Sprintf("%s [%d, %d]", k.Name, k.Min, k.Max))
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one image path, got %d", fs.NArg())
	}

	params := horizon.DefaultParameters()
	for _, k := range knobs {
		next, err := params.With(k.Name, *values[k.Name])
		if err != nil {
			return err
		}
		params = next
	}

	srv := server.New(server.ConfigFromEnv(Version))
	res, err := srv.Detect(fs.Arg(0), *detector, params.Clamp())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
