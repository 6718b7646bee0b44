// Command scan runs the scan-to-stock workflow against captured frame
// images and submits the decoded SKU to the back-office API:
//
//	scan -api http://localhost:3000 -token <session token> frame1.jpg frame2.jpg ...
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-storefront-api/internal/scanner"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	apiBase := flag.String("api", "http://localhost:3000", "base URL of the back-office API")
	sessionToken := flag.String("token", "", "session token (from login)")
	quantity := flag.Int("quantity", 1, "stock quantity to add on a successful scan")
	interval := flag.Duration("interval", scanner.DefaultSampleInterval, "frame sampling interval")
	flag.Parse()

	frames := flag.Args()
	if len(frames) == 0 {
		log.Fatal("no frame images given")
	}
	if *sessionToken == "" {
		log.Fatal("-token is required")
	}

	source := scanner.NewFileSource(frames...)
	submitter := &apiSubmitter{
		baseURL:  *apiBase,
		token:    *sessionToken,
		quantity: *quantity,
		client:   &http.Client{Timeout: 10 * time.Second},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	wf := scanner.New(source, scanner.NewQRDecoder(), submitter, *interval)
	defer wf.Close()

	if err := wf.Start(ctx); err != nil {
		log.Fatal(err)
	}

	<-wf.Done()

	switch wf.State() {
	case scanner.StateDecoded:
		sku, _ := wf.DecodedSKU()
		log.Printf("Decoded SKU %s, submitting...", sku)
		newStock, err := wf.Submit(ctx)
		if err != nil {
			log.Fatalf("Submit failed: %v", err)
		}
		log.Printf("Stock for %s is now %d", sku, newStock)
	case scanner.StateError:
		log.Fatal(wf.ErrMessage())
	default:
		log.Fatalf("scan ended in state %q", wf.State())
	}
}

// apiSubmitter posts the scan to the stock-increment boundary.
type apiSubmitter struct {
	baseURL  string
	token    string
	quantity int
	client   *http.Client
}

func (s *apiSubmitter) SubmitScan(ctx context.Context, sku string) (int, error) {
	body, err := json.Marshal(map[string]interface{}{
		"action":   "incrementStock",
		"sku":      sku,
		"quantity": s.quantity,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/products", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var payload struct {
		Error   string `json:"error"`
		Product struct {
			Stock int `json:"stock"`
		} `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		if payload.Error != "" {
			return 0, fmt.Errorf("%s", payload.Error)
		}
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return payload.Product.Stock, nil
}
