package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/vladicamp/campvote/internal/app"
	"github.com/vladicamp/campvote/internal/auth"
	"github.com/vladicamp/campvote/internal/catalog"
	"github.com/vladicamp/campvote/internal/logger"
	"github.com/vladicamp/campvote/pkg/genai"
	"github.com/vladicamp/campvote/pkg/supastore"
	"github.com/vladicamp/campvote/web"
)

const version = "1.0.0"

// EnvGenAIKey names the environment variable holding the narrative
// generation API key
const EnvGenAIKey = "GEMINI_API_KEY"

func main() {
	port := flag.Int("port", 8081, "HTTP server port")
	dbPath := flag.String("db", "campvote.db", "SQLite database path")
	adminPw := flag.String("adminpw", "", "Admin password (auto-generated if not set)")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	catalogPath := flag.String("catalog", "", "Ballot catalog JSON file (built-in ballot if not set)")
	storeURL := flag.String("store-url", "", "Remote row store URL (overrides environment)")
	storeKey := flag.String("store-key", "", "Remote row store API key (overrides environment)")
	genaiKey := flag.String("genai-key", "", "Narrative generation API key (overrides environment)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `CampVote - Camp Awards Voting

Usage:
  campvote [options]

Options:
  -port int        HTTP server port (default 8081)
  -db string       SQLite database path (default "campvote.db")
  -adminpw str     Admin password (auto-generated if not set)
  -loglevel str    Log level: debug, info, warn, error (default "info")
  -catalog str     Ballot catalog JSON file (built-in ballot if not set)
  -store-url str   Remote row store URL (overrides environment)
  -store-key str   Remote row store API key (overrides environment)
  -genai-key str   Narrative generation API key (overrides environment)
  -version         Show version and exit
  -help            Show this help message

Environment (also read from a .env file in the working directory):
  SUPABASE_URL        Remote row store URL
  SUPABASE_ANON_KEY   Remote row store API key
  GEMINI_API_KEY      Narrative generation API key

Examples:
  campvote                           # Run on port 8081 with campvote.db
  campvote -port 8080                # Run on port 8080
  campvote -adminpw secret123        # Use specific admin password
  campvote -catalog ballot.json      # Custom questions and candidates

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("campvote %s\n", version)
		os.Exit(0)
	}

	// A missing .env is the normal case, not an error
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
	}

	// Setup admin authentication
	password := *adminPw
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	// Create logger with specified level
	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))

	// Load the ballot catalog
	cat := catalog.Default()
	if *catalogPath != "" {
		loaded, err := catalog.LoadFile(*catalogPath)
		if err != nil {
			log.Fatal("Failed to load catalog:", err)
		}
		cat = loaded
	}
	if err := cat.Validate(); err != nil {
		log.Fatal("Invalid catalog:", err)
	}

	// Remote row store client; flags win over environment and any stored
	// override, which the app resolves later
	store := supastore.NewHTTPClient(*storeURL, *storeKey, appLog)

	// Narrative generation client
	apiKey := *genaiKey
	if apiKey == "" {
		apiKey = os.Getenv(EnvGenAIKey)
	}
	narrativeClient := genai.NewHTTPClient(apiKey, appLog)

	a, err := app.New(appLog, *dbPath, cat, store, narrativeClient, web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", *port)
	appLog.Info("Event", "name", cat.EventName)
	appLog.Info("Admin password", "password", password)

	if err := a.Run(addr); err != nil {
		log.Fatal(err)
	}
}
