// cmd/tools/consult-admin/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	httpclient "pet-doctor/internal/common/http"
)

func main() {
	resetCmd := flag.NewFlagSet("reset", flag.ExitOnError)
	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	supplementsCmd := flag.NewFlagSet("supplements", flag.ExitOnError)

	var baseURL string
	for _, fs := range []*flag.FlagSet{resetCmd, historyCmd, supplementsCmd} {
		fs.StringVar(&baseURL, "server", "http://localhost:8080", "Consult manager base URL")
	}

	confirm := resetCmd.Bool("yes", false, "Confirm wiping history and reseeding the catalog")

	limit := historyCmd.Int("limit", 0, "Number of consultations to show (0 uses the server default)")

	category := supplementsCmd.String("category", "", "Category (joint-health, digestive, skin-coat, ...)")
	minPrice := supplementsCmd.Int("min-price", 0, "Minimum price in KRW")
	maxPrice := supplementsCmd.Int("max-price", 0, "Maximum price in KRW")
	minRating := supplementsCmd.Float64("min-rating", 0, "Minimum rating")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client := httpclient.NewClient(httpclient.WithRetries(2))

	var err error
	switch os.Args[1] {
	case "reset":
		resetCmd.Parse(os.Args[2:])
		if !*confirm {
			fmt.Println("Error: reset deletes every stored consultation; pass -yes to confirm.")
			os.Exit(1)
		}
		err = client.PostJSON(ctx, baseURL+"/api/v1/admin/reset", struct{}{}, nil)
		if err == nil {
			fmt.Println("History cleared and catalog reseeded.")
		}

	case "history":
		historyCmd.Parse(os.Args[2:])
		q := url.Values{}
		if *limit > 0 {
			q.Set("limit", strconv.Itoa(*limit))
		}
		err = getAndPrint(ctx, client, baseURL+"/api/v1/consultations", q)

	case "supplements":
		supplementsCmd.Parse(os.Args[2:])
		q := url.Values{}
		if *category != "" {
			q.Set("category", *category)
		}
		if *minPrice > 0 {
			q.Set("min_price", strconv.Itoa(*minPrice))
		}
		if *maxPrice > 0 {
			q.Set("max_price", strconv.Itoa(*maxPrice))
		}
		if *minRating > 0 {
			q.Set("min_rating", strconv.FormatFloat(*minRating, 'f', -1, 64))
		}
		err = getAndPrint(ctx, client, baseURL+"/api/v1/supplements", q)

	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func getAndPrint(ctx context.Context, client *httpclient.Client, endpoint string, q url.Values) error {
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var out json.RawMessage
	if err := client.GetJSON(ctx, endpoint, &out); err != nil {
		return err
	}
	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}

func help() {
	fmt.Println("Usage: consult-admin <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  reset -yes                        Clear consultation history and reseed the catalog")
	fmt.Println("  history [-limit N]                Show the most recent consultations")
	fmt.Println("  supplements [-category C] [...]   List catalog entries")
	fmt.Println("All commands accept -server (default http://localhost:8080).")
}
