package annotate

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/gardar/ocrtrain/pkg/hocr"
)

// Config holds the Google Document AI processor settings
type Config struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

// processorName builds the resource name of the processor
func (c Config) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// DocumentAI annotates images with a Google Document AI OCR processor
type DocumentAI struct {
	cfg    Config
	client *documentai.DocumentProcessorClient
}

// NewDocumentAI creates a Document AI client for the processor's regional
// endpoint. Credentials are read from the file named by
// GOOGLE_APPLICATION_CREDENTIALS.
func NewDocumentAI(ctx context.Context, cfg Config) (*DocumentAI, error) {
	if cfg.ProjectID == "" || cfg.Location == "" || cfg.ProcessorID == "" {
		return nil, fmt.Errorf("document AI project_id, location and processor_id are required")
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	return &DocumentAI{cfg: cfg, client: client}, nil
}

// Close releases the client connection
func (d *DocumentAI) Close() error {
	return d.client.Close()
}

// Process sends the image to Document AI and returns the raw Document proto
func (d *DocumentAI) Process(ctx context.Context, image []byte, mimeType string) (*documentaipb.Document, error) {
	req := &documentaipb.ProcessRequest{
		Name: d.cfg.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: mimeType,
			},
		},
		SkipHumanReview: true,
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	return resp.Document, nil
}

// Annotate processes the image and converts the result to hOCR
func (d *DocumentAI) Annotate(ctx context.Context, image []byte, mimeType string) (*hocr.Document, error) {
	doc, err := d.Process(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}
	return HOCRFromProto(doc), nil
}
