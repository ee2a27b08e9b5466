// annotate is a command-line tool for producing hOCR markup for page images,
// ready for hocrlines.
//
// Images are found the same way hocrlines finds them and "<name>.hocr" is
// written to the markup directory for each. Existing markup is kept unless
// -overwrite is given.
//
// Engines:
//
//	documentai  Google Document AI (settings from the "documentai" section of -config)
//	tesseract   Local Tesseract (languages from -lang or the "tesseract" section)
//
// Usage:
//
//	annotate [options] <image_dir> <hocr_dir>
//	annotate -engine documentai -config config.yml -image page.png -debug-api page.json
//
// Options:
//
//	-config string     Path to a YAML configuration file
//	-engine string     documentai or tesseract (default "documentai")
//	-lang string       Comma separated Tesseract languages, e.g. "eng,isl"
//	-overwrite         Replace existing hOCR files
//	-text              Also write "<name>.txt" with the recognized text
//	-image string      Process a single image and save the raw API response (documentai only)
//	-debug-api string  Path to save the raw API response as JSON (with -image)
//	-log-level string  debug, info, warn or error
//
// Authentication:
//
// The documentai engine uses the GOOGLE_APPLICATION_CREDENTIALS environment
// variable for authentication with Google Cloud.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/gardar/ocrtrain/pkg/annotate"
	"github.com/gardar/ocrtrain/pkg/annotate/tesseract"
	"github.com/gardar/ocrtrain/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file")
	engine := flag.String("engine", "documentai", "OCR engine: documentai or tesseract")
	langs := flag.String("lang", "", "Comma separated Tesseract languages (default from config)")
	overwrite := flag.Bool("overwrite", false, "Overwrite existing hOCR files")
	writeText := flag.Bool("text", false, "Also write the recognized text next to each hOCR file")
	imagePath := flag.String("image", "", "Process a single image with Document AI")
	debugAPIPath := flag.String("debug-api", "", "Path to save API response as JSON for debugging purposes")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: annotate [options] <image_dir> <hocr_dir>")
		fmt.Fprintln(os.Stderr, "       annotate [options] -image <image> -debug-api <json>")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := cfg.Logger(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *imagePath != "" {
		if err := debugSingle(ctx, cfg, *imagePath, *debugAPIPath); err != nil {
			fmt.Printf("Error: %v\n", err)
			stop()
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	var annotator annotate.Annotator
	switch *engine {
	case "documentai":
		da, err := annotate.NewDocumentAI(ctx, cfg.Annotate())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			stop()
			os.Exit(1)
		}
		defer da.Close()
		annotator = da
	case "tesseract":
		languages := cfg.Tesseract.Languages
		if *langs != "" {
			languages = strings.Split(*langs, ",")
		}
		annotator = tesseract.New(languages...)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown engine %q\n", *engine)
		os.Exit(1)
	}

	opts := annotate.DirOptions{
		Extensions: cfg.Extract.ImageExtensions,
		Suffix:     cfg.Extract.MarkupSuffix,
		Overwrite:  *overwrite,
		WriteText:  *writeText,
		Logger:     logger,
	}
	result, err := annotate.AnnotateDir(ctx, annotator, flag.Arg(0), flag.Arg(1), opts)
	if err != nil {
		fmt.Printf("Annotation failed: %v\n", err)
		stop()
		os.Exit(1)
	}

	fmt.Printf("Wrote %d hOCR files to %s (%d skipped, %d failed)\n",
		len(result.Written), flag.Arg(1), result.Skipped, result.Failed)
	if result.Failed > 0 {
		stop()
		os.Exit(1)
	}
}

// debugSingle sends one image to Document AI and saves the raw response
func debugSingle(ctx context.Context, cfg *config.Config, imagePath, debugAPIPath string) error {
	if debugAPIPath == "" {
		return fmt.Errorf("-image requires -debug-api")
	}

	mimeType, err := annotate.MimeType(imagePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	da, err := annotate.NewDocumentAI(ctx, cfg.Annotate())
	if err != nil {
		return err
	}
	defer da.Close()

	doc, err := da.Process(ctx, data, mimeType)
	if err != nil {
		return err
	}

	jsonData, err := annotate.ToJSON(doc)
	if err != nil {
		return fmt.Errorf("failed to convert API response to JSON: %w", err)
	}
	if err := os.WriteFile(debugAPIPath, []byte(jsonData), 0644); err != nil {
		return fmt.Errorf("failed to write API response: %w", err)
	}
	fmt.Println("Saved API response to", debugAPIPath)
	return nil
}
