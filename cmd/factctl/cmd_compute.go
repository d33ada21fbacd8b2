package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luraaya/factengine/internal/config"
	"github.com/luraaya/factengine/internal/domain"
	"github.com/luraaya/factengine/internal/ephemeris"
	"github.com/luraaya/factengine/internal/service"
	"github.com/luraaya/factengine/internal/store"
	"github.com/luraaya/factengine/internal/timeline"
	"github.com/spf13/cobra"
)

type computeOptions struct {
	date        string
	clock       string
	tz          string
	lat, lon    float64
	placeID     string
	placesFile  string
	calcVersion string
	engine      string
	houseSystem string
}

func newComputeCmd(root *rootOptions) *cobra.Command {
	opts := &computeOptions{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a facts contract",
		Long: `Computes a facts contract for one birth.

Without --time the contract is DEGRADED: only signs at both ends of the local
birth day are committed, with a stability verdict per body.

Example:
  factctl compute --date 1990-06-01 --time 12:30 --tz Europe/Zurich --lat 47.3769 --lon 8.5417`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.date, "date", "", "Birth date (YYYY-MM-DD)")
	f.StringVar(&opts.clock, "time", "", "Birth time (HH:MM); omit when unknown")
	f.StringVar(&opts.tz, "tz", "", "IANA timezone, e.g. Europe/Zurich")
	f.Float64Var(&opts.lat, "lat", 0, "Latitude in degrees")
	f.Float64Var(&opts.lon, "lon", 0, "Longitude in degrees")
	f.StringVar(&opts.placeID, "place-id", "", "Place directory id; supplies the timezone when --tz is omitted")
	f.StringVar(&opts.placesFile, "places-file", "", "YAML place list used for --place-id (default: DATABASE_URL or PLACES_FILE)")
	f.StringVar(&opts.calcVersion, "calc-version", "", "Calculation version (default: CALC_VERSION)")
	f.StringVar(&opts.engine, "engine", "", "Ephemeris provider (default: EPHEMERIS_PROVIDER)")
	f.StringVar(&opts.houseSystem, "house-system", "", "House system (default: HOUSE_SYSTEM)")
	_ = cmd.MarkFlagRequired("date")
	cmd.MarkFlagsRequiredTogether("lat", "lon")

	return cmd
}

func runCompute(cmd *cobra.Command, root *rootOptions, opts *computeOptions) error {
	ctx := commandContext(cmd)

	provider := firstNonEmpty(opts.engine, config.EphemerisProvider())
	engine, err := ephemeris.NewEngine(provider)
	if err != nil {
		return err
	}

	houseSystem := domain.HouseSystem(firstNonEmpty(opts.houseSystem, config.HouseSystem()))
	if !domain.ValidHouseSystem(string(houseSystem)) {
		return fmt.Errorf("unsupported house system %q", houseSystem)
	}

	svc := service.NewContractService(engine, service.ContractConfig{
		CalcVersion:   firstNonEmpty(opts.calcVersion, config.CalcVersion()),
		TZDataVersion: config.TZDataVersion(),
		HouseSystem:   houseSystem,
	}, nil, root.logger)

	req := domain.ComputeRequest{
		BirthDate: opts.date,
		BirthPlace: domain.BirthPlace{
			PlaceID: opts.placeID,
			TZIANA:  opts.tz,
		},
	}
	if opts.clock != "" {
		t := opts.clock
		req.BirthTime = &t
	}
	if cmd.Flags().Changed("lat") {
		lat, lon := opts.lat, opts.lon
		req.BirthPlace.Lat, req.BirthPlace.Lon = &lat, &lon
	}

	if opts.tz == "" && opts.placeID != "" {
		places, closeFn, err := openPlaceStore(ctx, opts.placesFile)
		if err != nil {
			return err
		}
		defer closeFn()
		svc.SetPlaceStore(places)
	}

	contract, err := svc.Compute(ctx, req)
	if err != nil {
		if code := timeline.Code(err); code != "" {
			return fmt.Errorf("%s: %w", code, err)
		}
		return err
	}
	return writeOutput(cmd.OutOrStdout(), root.output, contract)
}

type resolveOptions struct {
	date  string
	clock string
	tz    string
}

func newResolveCmd(root *rootOptions) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a civil birth time to UTC and Julian Day",
		Long: `Runs only the civil time pipeline.

With --time the result is a single instant; without it, the local day
[00:00, 24:00) as a UT interval. Skipped local times fail with
TIME_NON_EXISTENT; repeated ones resolve to their first occurrence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := timeline.ParseDate(opts.date)
			if err != nil {
				return err
			}
			if opts.clock == "" {
				interval, err := timeline.ResolveInterval(date, opts.tz)
				if err != nil {
					return fmt.Errorf("%s: %w", timeline.Code(err), err)
				}
				return writeOutput(cmd.OutOrStdout(), root.output, interval)
			}
			instant, err := timeline.ResolveInstant(date, opts.clock, opts.tz)
			if err != nil {
				return fmt.Errorf("%s: %w", timeline.Code(err), err)
			}
			return writeOutput(cmd.OutOrStdout(), root.output, instant)
		},
	}

	cmd.Flags().StringVar(&opts.date, "date", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.clock, "time", "", "Birth time (HH:MM)")
	cmd.Flags().StringVar(&opts.tz, "tz", "", "IANA timezone")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("tz")

	return cmd
}

// openPlaceStore picks the place directory: an explicit YAML file, then
// DATABASE_URL, then PLACES_FILE or the bundled list.
func openPlaceStore(ctx context.Context, file string) (domain.PlaceStore, func(), error) {
	if file == "" && config.DatabaseURL() != "" {
		pool, err := pgxpool.New(ctx, config.DatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return store.NewPlaceStore(pool), pool.Close, nil
	}

	path, explicit := config.PlacesFile()
	if file != "" {
		path, explicit = file, true
	}
	mem := store.NewMemoryPlaceStore()
	n, err := service.NewPlaceService(mem, nil).ImportFile(ctx, path, !explicit)
	if err != nil {
		return nil, nil, err
	}
	if n == 0 && !explicit {
		return nil, nil, fmt.Errorf("no place directory: pass --places-file or set DATABASE_URL or PLACES_FILE")
	}
	return mem, func() {}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
