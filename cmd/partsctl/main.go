package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/your-org/partsboard/internal/config"
	"github.com/your-org/partsboard/internal/editflow"
	"github.com/your-org/partsboard/internal/listview"
	"github.com/your-org/partsboard/internal/models"
	"github.com/your-org/partsboard/internal/observability"
	"github.com/your-org/partsboard/internal/remote"
	"github.com/your-org/partsboard/internal/upstream"
	"github.com/your-org/partsboard/internal/workspace"
	"github.com/your-org/partsboard/pkg/dto"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	configPath string
	token      string
)

// loadConfig reads the config file when it exists and falls back to defaults.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return config.Parse([]byte("{}"))
	}
	return cfg, err
}

// newStore builds a cached view of the backend for the current token.
func newStore() (*remote.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	client := upstream.NewClient(cfg.Upstream)
	return remote.NewStore(client, func() string { return token }), cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "partsctl",
	Short: "Inspect and update subpart usage from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		observability.SetupLogger(level, "text")
		if token == "" {
			token = os.Getenv("PB_TOKEN")
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print the backend token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("PB_PASSWORD")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		resp, err := upstream.NewClient(cfg.Upstream).Login(cmd.Context(), dto.LoginRequest{Email: email, Password: password})
		if err != nil {
			return err
		}

		if resp.User != nil {
			fmt.Fprintf(os.Stderr, "Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
		}
		fmt.Printf("export PB_TOKEN=%s\n", resp.BearerToken())
		return nil
	},
}

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := newStore()
		if err != nil {
			return err
		}
		page, err := store.Customers(cmd.Context(), 1, cfg.Dashboard.CustomerLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCONTACT")
		for _, c := range page.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.ContactName)
		}
		return w.Flush()
	},
}

var inspectionsCmd = &cobra.Command{
	Use:   "inspections",
	Short: "List inspections",
	RunE: func(cmd *cobra.Command, args []string) error {
		customer, _ := cmd.Flags().GetInt64("customer")
		pageNo, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		search, _ := cmd.Flags().GetString("search")

		store, cfg, err := newStore()
		if err != nil {
			return err
		}
		params := remote.InspectionParams{Page: pageNo, Limit: limit, Search: search}
		if customer > 0 {
			params.CustomerID = &customer
		}

		ctx := cmd.Context()
		page, err := store.Inspections(ctx, params)
		if err != nil {
			return err
		}
		customers, err := store.Customers(ctx, 1, cfg.Dashboard.CustomerLimit)
		if err != nil {
			// Names fall back to the unknown label.
			customers = models.Page[models.Customer]{}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCUSTOMER\tMODELS")
		for _, r := range listview.InspectionRows(page.Items, customers.Items, nil) {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", r.ID, r.Name, r.CustomerName, r.ModelCount)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		printPager(page.Pagination)
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models <inspection-id>",
	Short: "List the models of an inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inspectionID, err := parseID(args[0])
		if err != nil {
			return err
		}
		pageNo, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		store, _, err := newStore()
		if err != nil {
			return err
		}
		page, err := store.Models(cmd.Context(), &inspectionID, pageNo, limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSUBPARTS")
		for _, m := range page.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", m.ID, m.Name, m.Status, m.SubpartCount)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		printPager(page.Pagination)
		return nil
	},
}

var subpartsCmd = &cobra.Command{
	Use:   "subparts <model-id>",
	Short: "List the subparts of a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelID, err := parseID(args[0])
		if err != nil {
			return err
		}

		store, cfg, err := newStore()
		if err != nil {
			return err
		}
		page, err := store.Subparts(cmd.Context(), &modelID, 1, cfg.Dashboard.SubpartPageLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDESC")
		for _, sp := range page.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", sp.ID, sp.Name, models.InUseLabel(sp.InUse), sp.Desc)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("%d subparts\n", page.Pagination.Total)
		return nil
	},
}

var setStatusCmd = &cobra.Command{
	Use:   "set-status <model-id> <subpart-id>=<0|1>...",
	Short: "Change the in-use status of subparts of one model",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelID, err := parseID(args[0])
		if err != nil {
			return err
		}
		staged, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")
		contacts, _ := cmd.Flags().GetStringSlice("contact")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		ws := workspace.New(workspace.Session{ID: "partsctl", Token: token, IP: localIP()},
			upstream.NewClient(cfg.Upstream), cfg.Dashboard)
		defer ws.Close()

		return setStatus(cmd.Context(), ws, modelID, staged, reason, contacts, dryRun)
	},
}

// setStatus drives the same edit flow as the dashboard's bulk edit.
func setStatus(ctx context.Context, ws *workspace.Workspace, modelID int64, staged map[int64]int, reason string, contacts []string, dryRun bool) error {
	ws.SelectModel(&modelID)
	if _, err := ws.BeginEdit(ctx, editflow.ScopeList); err != nil {
		return fmt.Errorf("begin edit: %w", err)
	}
	for id, inUse := range staged {
		if _, err := ws.Stage(id, inUse); err != nil {
			return fmt.Errorf("stage subpart %d: %w", id, err)
		}
	}
	for _, email := range contacts {
		ws.Contact(strings.TrimSpace(email), false)
	}
	if reason != "" {
		ws.SetReason(editflow.ScopeList, reason)
	}

	st, err := ws.Confirm(ctx, editflow.ScopeList)
	if err != nil {
		return err
	}
	if dryRun {
		view := ws.View(ctx, true)
		for _, c := range view.Edit.Changes {
			fmt.Println(c.Description)
		}
		fmt.Printf("recipients: %s\n", strings.Join(st.SelectedContacts, ", "))
		return nil
	}

	res, err := ws.Submit(ctx, editflow.ScopeList)
	if err != nil {
		return err
	}
	for _, c := range res.Changes {
		fmt.Println(editflow.DescribeChange(c))
	}
	fmt.Printf("%d subparts updated", len(res.Changes))
	if res.Response != nil && res.Response.Message != "" {
		fmt.Printf(": %s", res.Response.Message)
	}
	fmt.Println()
	return nil
}

func printPager(p models.Pagination) {
	fmt.Printf("page %d/%d, %d total\n", p.CurrentPage, max(p.TotalPages, 1), p.Total)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "backend token (defaults to $PB_TOKEN)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level")

	loginCmd.Flags().String("email", "", "operator email")
	loginCmd.Flags().String("password", "", "operator password (defaults to $PB_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("email")

	inspectionsCmd.Flags().Int64("customer", 0, "filter by customer id")
	inspectionsCmd.Flags().Int("page", 1, "page number")
	inspectionsCmd.Flags().Int("limit", 10, "page size")
	inspectionsCmd.Flags().String("search", "", "name search")

	modelsCmd.Flags().Int("page", 1, "page number")
	modelsCmd.Flags().Int("limit", 10, "page size")

	setStatusCmd.Flags().String("reason", "", "modification reason (defaults to the configured reason)")
	setStatusCmd.Flags().StringSlice("contact", nil, "additional notification recipients")
	setStatusCmd.Flags().Bool("dry-run", false, "print the changes without submitting")

	rootCmd.AddCommand(loginCmd, customersCmd, inspectionsCmd, modelsCmd, subpartsCmd, setStatusCmd)
}
