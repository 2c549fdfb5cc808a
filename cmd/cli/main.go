package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/app"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/config"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcs"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/gcsuploader"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/pipeline"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/rules"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze()
	case "classify":
		runClassify()
	case "upload":
		runUpload()
	case "customer":
		runCustomer()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("SMS Parsing CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Analyze one SMS with the model (rules as fallback) and store it")
	fmt.Println("  classify  Classify and extract one SMS with the rule engine only")
	fmt.Println("  upload    Upload a JSON batch to GCS")
	fmt.Println("  customer  Show a customer's summary and recent transactions")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// setup loads configuration and returns a logger-carrying context.
func setup(envFile string) (context.Context, *config.Config, zerolog.Logger) {
	cfg, err := config.Load(envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := app.NewLogger(cfg)
	return logger.WithContext(context.Background(), log), cfg, log
}

// messageArg returns the -message flag, or stdin when it is "-".
func messageArg(message string) (string, error) {
	if message != "-" {
		return message, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	envFile := fs.String("env", "", "Path to .env file")
	message := fs.String("message", "", "SMS text, or - to read stdin (required)")
	date := fs.String("date", "", "Message date in any supported format")
	customerID := fs.String("customer-id", "", "Customer ID (default from DEFAULT_CUSTOMER_ID)")
	customerName := fs.String("customer-name", "", "Customer name")
	phone := fs.String("phone", "", "Customer phone number")
	sender := fs.String("sender", "", "Sender ID, e.g. HDFCBK")
	smsID := fs.String("sms-id", "", "External SMS ID used for duplicate detection")
	noStore := fs.Bool("no-store", false, "Analyze without persisting")
	fs.Parse(os.Args[2:])

	ctx, cfg, log := setup(*envFile)
	text, err := messageArg(*message)
	if err != nil || text == "" {
		log.Fatal().Err(err).Msg("Error: --message is required")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	analyzer, err := app.NewAnalyzer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize model")
	}

	var repo store.Repository
	if !*noStore {
		repo, err = app.OpenRepository(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open storage")
		}
		defer repo.Close()
	}

	req := pipeline.Request{Message: text, Date: *date, Sender: *sender, ExternalID: *smsID}
	if *customerID != "" {
		req.Customer = &domain.Customer{ID: *customerID, Name: *customerName, Phone: *phone}
	}

	out := app.NewProcessor(cfg, analyzer, repo).ProcessMessage(ctx, req)
	printJSON(out)
	if out.Status == domain.StatusFailed {
		os.Exit(1)
	}
}

func runClassify() {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	message := fs.String("message", "", "SMS text, or - to read stdin (required)")
	fs.Parse(os.Args[2:])

	text, err := messageArg(*message)
	if err != nil || text == "" {
		fmt.Fprintln(os.Stderr, "Error: --message is required")
		os.Exit(1)
	}

	category := rules.Classify(text)
	fields := rules.Extract(category, text)
	printJSON(domain.AnalysisResult{
		Category:        category,
		Fields:          fields,
		ImportantPoints: rules.Summarize(category, fields),
		Source:          domain.SourceRules,
	})
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	envFile := fs.String("env", "", "Path to .env file")
	bucketName := fs.String("bucket", "", "GCS bucket name (default from GCS_BUCKET)")
	objectName := fs.String("object", "", "GCS object name (defaults to a dated batches/ path)")
	filePath := fs.String("file", "", "Path to local JSON batch")
	fs.Parse(os.Args[2:])

	ctx, cfg, log := setup(*envFile)
	bucket := *bucketName
	if bucket == "" {
		bucket = cfg.GCSBucket
	}
	if bucket == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}
	if *objectName == "" {
		*objectName = gcs.BatchObjectName(time.Now(), filepath.Base(*filePath))
	}

	service, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer service.Close()

	log.Info().
		Str("bucket", bucket).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := service.UploadFile(ctx, bucket, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcs.BuildURI(bucket, *objectName))
}

func runCustomer() {
	fs := flag.NewFlagSet("customer", flag.ExitOnError)
	envFile := fs.String("env", "", "Path to .env file")
	customerID := fs.String("id", "", "Customer ID (required)")
	limit := fs.Int("limit", 10, "Number of recent transactions to show")
	fs.Parse(os.Args[2:])

	ctx, cfg, log := setup(*envFile)
	if *customerID == "" {
		log.Fatal().Msg("Error: --id is required")
	}

	repo, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer repo.Close()

	summary, err := repo.GetCustomerSummary(ctx, *customerID)
	if err != nil {
		log.Fatal().Err(err).Str("customer_id", *customerID).Msg("Failed to load customer")
	}
	transactions, total, err := repo.ListCustomerTransactions(ctx, *customerID, "", store.Page{Limit: *limit})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}

	fmt.Println("\n=== Customer ===")
	fmt.Printf("ID:     %s\n", summary.Customer.CustomerID)
	fmt.Printf("Name:   %s\n", summary.Customer.Name)
	fmt.Printf("Phone:  %s\n", summary.Customer.PhoneNumber)
	fmt.Printf("Since:  %s\n", summary.Customer.CreatedAt.Format(time.RFC3339))

	fmt.Printf("\n=== By type (%d transactions) ===\n", summary.TotalTransactions)
	for _, s := range summary.MessageTypeStats {
		fmt.Printf("%-24s %4d  total %s", s.MessageType, s.Count, rules.FormatCurrency(s.TotalAmount))
		if s.MaxOutstanding > 0 {
			fmt.Printf("  max outstanding %s", rules.FormatCurrency(s.MaxOutstanding))
		}
		fmt.Println()
	}

	fmt.Printf("\n=== Recent transactions (%d of %d) ===\n", len(transactions), total)
	for i, tx := range transactions {
		fmt.Printf("\n%d. %s\n", i+1, tx.MessageType)
		if tx.TransactionDate != "" {
			fmt.Printf("   Date:     %s\n", tx.TransactionDate)
		}
		if tx.Amount != nil {
			fmt.Printf("   Amount:   %s\n", rules.FormatCurrency(*tx.Amount))
		}
		if bank := tx.Fields.String(domain.FieldBankName); bank != "" {
			fmt.Printf("   Bank:     %s\n", bank)
		}
	}
	fmt.Println()
}
