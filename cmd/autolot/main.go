package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	client "github.com/autolot/autolot-client"
)

var (
	serviceURL  string
	apiKey      string
	storagePath string
	debugFlag   bool

	rootCmd = &cobra.Command{
		Use:   "autolot",
		Short: "CLI for the Autolot marketplace API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
			if debugFlag {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
)

// newClient builds an SDK client from the persistent flags. The caller owns
// shutdown; flushing before Close makes sure accepted writes either reach
// the service or land in the on-disk replay queue.
func newClient() (*client.Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("AUTOLOT_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("--api-key or AUTOLOT_API_KEY required")
	}
	opts := []client.Option{client.WithDebugLogging(debugFlag)}
	if storagePath != "" {
		opts = append(opts, client.WithStoragePath(storagePath))
	}
	return client.New(serviceURL, apiKey, opts...), nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func runWithClient(fn func(ctx context.Context, c *client.Client) error) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := fn(ctx, c); err != nil {
		return err
	}
	return c.Flush(ctx)
}

func init() {
	getListingCmd := &cobra.Command{
		Use:   "get-listing LISTING_ID",
		Short: "Fetch a listing with its derived lifecycle state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(func(ctx context.Context, c *client.Client) error {
				l, err := c.Listing(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(map[string]any{
					"listing": l,
					"state":   c.Lifecycle().State(*l, nil),
				})
			})
		},
	}
	rootCmd.AddCommand(getListingCmd)

	var autoRenew bool
	renewCmd := &cobra.Command{
		Use:   "renew-listing LISTING_ID",
		Short: "Renew a listing for another expiry window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(func(ctx context.Context, c *client.Client) error {
				l, err := c.RenewListing(ctx, args[0], autoRenew)
				if err != nil {
					return err
				}
				return printJSON(l)
			})
		},
	}
	renewCmd.Flags().BoolVar(&autoRenew, "auto-renew", false, "renew automatically on expiry from now on")
	rootCmd.AddCommand(renewCmd)

	var plan string
	var planExpires string
	sweepCmd := &cobra.Command{
		Use:   "sweep LISTING_ID...",
		Short: "Renew every expired auto-renew listing among the given IDs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(func(ctx context.Context, c *client.Client) error {
				var p *client.Plan
				if plan != "" {
					p = &client.Plan{SubscriptionPlan: plan}
					if planExpires != "" {
						t, err := time.Parse(time.RFC3339, planExpires)
						if err != nil {
							return fmt.Errorf("bad --plan-expires: %w", err)
						}
						p.ExpiryDate = &t
					}
				}
				listings := make([]client.Listing, 0, len(args))
				for _, id := range args {
					l, err := c.Listing(ctx, id)
					if err != nil {
						return fmt.Errorf("listing %s: %w", id, err)
					}
					listings = append(listings, *l)
				}
				out, err := c.SweepAutoRenew(ctx, listings, p)
				if err != nil {
					return err
				}
				return printJSON(out)
			})
		},
	}
	sweepCmd.Flags().StringVar(&plan, "plan", "", "seller subscription plan (free|pro|premium)")
	sweepCmd.Flags().StringVar(&planExpires, "plan-expires", "", "plan expiry, RFC 3339")
	rootCmd.AddCommand(sweepCmd)

	activityCmd := &cobra.Command{
		Use:   "activity USER_ID",
		Short: "Show a buyer's activity record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(func(ctx context.Context, c *client.Client) error {
				a, err := c.Activity(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(a)
			})
		},
	}
	rootCmd.AddCommand(activityCmd)

	recordViewCmd := &cobra.Command{
		Use:   "record-view USER_ID VEHICLE_ID",
		Short: "Record that a buyer viewed a vehicle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(func(ctx context.Context, c *client.Client) error {
				return c.RecordView(ctx, args[0], args[1])
			})
		},
	}
	rootCmd.AddCommand(recordViewCmd)

	getVehicleCmd := &cobra.Command{
		Use:   "get-vehicle VEHICLE_ID",
		Short: "Fetch a vehicle from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithClient(func(ctx context.Context, c *client.Client) error {
				v, err := c.Vehicle(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(v)
			})
		},
	}
	rootCmd.AddCommand(getVehicleCmd)

	flushCmd := &cobra.Command{
		Use:   "flush",
		Short: "Replay writes that failed while the service was unreachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if storagePath == "" {
				return fmt.Errorf("--storage required: without it there is no queue to replay")
			}
			return runWithClient(func(ctx context.Context, c *client.Client) error {
				n, err := c.ReplayPending(ctx)
				if err != nil {
					return fmt.Errorf("replayed %d, %d left: %w", n, c.PendingWrites(), err)
				}
				fmt.Fprintf(os.Stdout, "replayed %d pending writes\n", n)
				return nil
			})
		},
	}
	rootCmd.AddCommand(flushCmd)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "https://api.autolot.example", "Autolot service base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (or AUTOLOT_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "sqlite path for the local cache and replay queue")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "verbose request/response logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
