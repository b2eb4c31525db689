// Command bookingctl drives the booking workflow from a terminal: it
// resolves facilities, lists departments and doctors, submits bookings and
// reads the booking audit trail. Every command prints JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zatekoja/dentalbooking/backend/internal/adapters/cache"
	"github.com/zatekoja/dentalbooking/backend/internal/adapters/catalog"
	"github.com/zatekoja/dentalbooking/backend/internal/adapters/database"
	"github.com/zatekoja/dentalbooking/backend/internal/adapters/search"
	"github.com/zatekoja/dentalbooking/backend/internal/application/services"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/clinicapi"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	"github.com/zatekoja/dentalbooking/backend/pkg/config"
)

// app holds the services shared by all commands
type app struct {
	cfg          *config.Config
	catalog      *catalog.StaticCatalog
	resolver     *services.FacilityResolver
	availability *services.AvailabilityLoader
	orchestrator *services.BookingOrchestrator
	listing      *services.FacilityListingService
}

func newApp() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	// stdout carries the JSON output
	observability.InitLogger("bookingctl", "production", "warn")
	logger := observability.GetLogger()
	*logger = logger.Output(os.Stderr)

	facilityCatalog, err := catalog.NewStaticCatalog()
	if err != nil {
		return nil, err
	}

	opts := clinicapi.Options{Timeout: cfg.Services.RequestTimeout}
	authService := clinicapi.NewAuthServiceClient(cfg.Services.AuthServiceURL, opts)
	clinicService := clinicapi.NewClinicServiceClient(cfg.Services.ClinicServiceURL, opts)
	patientService := clinicapi.NewPatientServiceClient(cfg.Services.PatientServiceURL, opts)
	memory := cache.NewMemoryCache()

	return &app{
		cfg:          cfg,
		catalog:      facilityCatalog,
		resolver:     services.NewFacilityResolver(facilityCatalog, authService, memory, 0, nil),
		availability: services.NewAvailabilityLoader(clinicService),
		orchestrator: services.NewBookingOrchestrator(patientService, patientService),
		listing: services.NewFacilityListingService(facilityCatalog, authService, nil,
			services.NewLocationService(memory, cfg.Booking.LocationTTLSeconds),
			cfg.Booking.NearbyRadiusKm, cfg.Booking.PageSize),
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "bookingctl",
		Short:        "Dental booking gateway operator tool",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(facilityCmd())
	rootCmd.AddCommand(departmentsCmd())
	rootCmd.AddCommand(doctorsCmd())
	rootCmd.AddCommand(nearbyCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(reindexCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func facilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facility <id>",
		Short: "Resolve a facility from the catalog or the clinic platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			resolution, err := a.resolver.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"facility": resolution.Facility,
				"source":   resolution.Source,
				"notices":  resolution.Notices,
				"doctors":  a.resolver.FeaturedDoctors(resolution.Facility),
			})
		},
	}
}

func departmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "departments <facility-id>",
		Short: "List the departments of a facility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return printJSON(cmd, a.availability.ListDepartments(cmd.Context(), args[0]))
		},
	}
}

func doctorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors <facility-id>",
		Short: "List the doctors of a department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			department, _ := cmd.Flags().GetString("department")
			a, err := newApp()
			if err != nil {
				return err
			}
			return printJSON(cmd, a.availability.ListDoctors(cmd.Context(), args[0], department))
		},
	}
	cmd.Flags().String("department", "", "Department to list doctors for")
	_ = cmd.MarkFlagRequired("department")
	return cmd
}

func nearbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List facilities near a point",
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lng, _ := cmd.Flags().GetFloat64("lng")
			radius, _ := cmd.Flags().GetInt("radius")
			a, err := newApp()
			if err != nil {
				return err
			}
			page, err := a.listing.List(cmd.Context(), services.ListingQuery{
				Coordinates: &entities.Coordinates{Latitude: lat, Longitude: lng},
				RadiusKm:    radius,
				Limit:       100,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	cmd.Flags().Float64("lat", 0, "Latitude")
	cmd.Flags().Float64("lng", 0, "Longitude")
	cmd.Flags().Int("radius", 0, "Search radius in km (default from NEARBY_RADIUS_KM)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func bookCmd() *cobra.Command {
	var form entities.BookingForm
	var gender string
	cmd := &cobra.Command{
		Use:   "book <facility-id>",
		Short: "Register the patient if needed and book an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Gender = entities.Gender(gender)
			a, err := newApp()
			if err != nil {
				return err
			}
			result, err := a.orchestrator.SubmitBooking(cmd.Context(), args[0], form)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"title":           result.Title(),
				"pendingApproval": result.PendingApproval(),
				"result":          result,
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&form.FirstName, "first-name", "", "Patient first name")
	flags.StringVar(&form.LastName, "last-name", "", "Patient last name")
	flags.StringVar(&form.Email, "email", "", "Patient email")
	flags.StringVar(&form.Phone, "phone", "", "Patient phone")
	flags.StringVar(&form.Age, "age", "", "Patient age")
	flags.StringVar(&gender, "gender", "", "Male, Female or Other")
	flags.StringVar(&form.Department, "department", "", "Department")
	flags.StringVar(&form.Doctor, "doctor", "", "Doctor id")
	flags.StringVar(&form.AppointmentDate, "date", "", "Appointment date (YYYY-MM-DD)")
	flags.StringVar(&form.AppointmentTime, "time", "", "Appointment time slot")
	flags.StringVar(&form.Message, "message", "", "Optional note for the clinic")
	return cmd
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <facility-id>",
		Short: "Show recent booking attempts recorded for a facility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			a, err := newApp()
			if err != nil {
				return err
			}
			pgClient, err := postgres.NewClient(cmd.Context(), &a.cfg.Database)
			if err != nil {
				return err
			}
			defer pgClient.Close()

			attempts, err := database.NewBookingAuditAdapter(pgClient).ListByFacility(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, attempts)
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of attempts")
	return cmd
}

func reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the Typesense index of the facility catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			tsClient, err := typesense.NewClient(cmd.Context(), &a.cfg.Typesense)
			if err != nil {
				return err
			}
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(cmd.Context()); err != nil {
				return err
			}
			facilities := a.catalog.List()
			if err := adapter.Index(cmd.Context(), facilities); err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"indexed": len(facilities)})
		},
	}
}
