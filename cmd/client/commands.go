package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/itemsync/internal/client/app"
	"github.com/iudanet/itemsync/internal/client/cli"
	"github.com/iudanet/itemsync/internal/client/config"
	"github.com/iudanet/itemsync/internal/client/iocli"
	"github.com/iudanet/itemsync/internal/client/metrics"
	"github.com/iudanet/itemsync/internal/models"
	pkgconfig "github.com/iudanet/itemsync/pkg/config"
)

// ConfigEnv переменная окружения с путем к файлу конфигурации
const ConfigEnv = "ITEMSYNC_CONFIG"

type rootOptions struct {
	configFile string
	serverURL  string
	dbPath     string
	verbose    bool
}

// env держит приложение, открытое для текущей команды
type env struct {
	app *app.App
	cli *cli.Cli
	cfg *config.Config
}

// offlineCommands не открывают локальную базу
var offlineCommands = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
}

func newRootCmd() (*cobra.Command, *env) {
	opts := &rootOptions{}
	e := &env{}

	root := &cobra.Command{
		Use:           "itemsync",
		Short:         "Offline-first inventory client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for c := cmd; c != nil; c = c.Parent() {
				if offlineCommands[c.Name()] {
					return nil
				}
			}
			return e.open(cmd.Context(), opts, cmd)
		},
	}

	configDefault := os.Getenv(ConfigEnv)
	if configDefault == "" {
		configDefault = "itemsync.yaml"
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", configDefault, "Path to config file (env "+ConfigEnv+")")
	flags.StringVar(&opts.serverURL, "server", "", "Server URL, overrides config")
	flags.StringVar(&opts.dbPath, "db", "", "Path to local database, overrides config")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newVersionCmd(),
		newLoginCmd(e),
		newLogoutCmd(e),
		newStatusCmd(e),
		newItemsCmd(e),
		newSyncCmd(e),
		newQueueCmd(e),
		newNotificationsCmd(e),
		newWatchCmd(e),
	)
	return root, e
}

// newShellCmd команды, доступные вводом во время watch.
// Приложение уже открыто, поэтому PersistentPreRunE не нужен.
func newShellCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "itemsync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newStatusCmd(e),
		newItemsCmd(e),
		newSyncCmd(e),
		newQueueCmd(e),
		newNotificationsCmd(e),
	)
	return root
}

// shellExec выполняет строку ввода watch как команду
func shellExec(e *env) cli.Exec {
	return func(ctx context.Context, args []string) error {
		cmd := newShellCmd(e)
		cmd.SetArgs(args)
		return cmd.ExecuteContext(ctx)
	}
}

func (e *env) open(ctx context.Context, opts *rootOptions, cmd *cobra.Command) error {
	cfg := config.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(opts.configFile, cfg); err != nil {
		return err
	}
	// флаги важнее файла
	if cmd.Flags().Changed("server") {
		cfg.Server.URL = opts.serverURL
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.Path = opts.dbPath
	}
	if opts.verbose {
		cfg.Log.Level = slog.LevelDebug
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	a := app.New(cfg, logger)
	if err := a.Init(ctx); err != nil {
		return err
	}

	e.cfg = cfg
	e.app = a
	e.cli = cli.New(iocli.NewStdio(), a)
	return nil
}

func (e *env) close() error {
	if e.app == nil {
		return nil
	}
	err := e.app.Dispose()
	e.app = nil
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}

func newLoginCmd(e *env) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunLogin(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (prompted if empty)")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunLogout(cmd.Context())
		},
	}
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session, network and queue state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunStatus(cmd.Context())
		},
	}
}

func newItemsCmd(e *env) *cobra.Command {
	items := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item", "i"},
		Short:   "Manage inventory items",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunList(cmd.Context())
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunGet(cmd.Context(), args[0])
		},
	}

	var (
		name, sku, unit, category, location string
		quantity, minQuantity               int
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var draft models.ItemDraft
			f := cmd.Flags()
			draft.Name = &name
			draft.SKU = &sku
			if f.Changed("unit") {
				draft.Unit = &unit
			}
			if f.Changed("category") {
				draft.Category = &category
			}
			if f.Changed("location") {
				draft.Location = &location
			}
			if f.Changed("qty") {
				draft.Quantity = &quantity
			}
			if f.Changed("min") {
				draft.MinQuantity = &minQuantity
			}
			return e.cli.RunAdd(cmd.Context(), draft)
		},
	}
	add.Flags().StringVar(&name, "name", "", "Item name")
	add.Flags().StringVar(&sku, "sku", "", "Stock keeping unit")
	add.Flags().StringVar(&unit, "unit", "", "Unit of measure")
	add.Flags().StringVar(&category, "category", "", "Category")
	add.Flags().StringVar(&location, "location", "", "Storage location")
	add.Flags().IntVar(&quantity, "qty", 0, "Initial quantity")
	add.Flags().IntVar(&minQuantity, "min", 0, "Low stock threshold")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("sku")

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update item fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := editDraft(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			return e.cli.RunEdit(cmd.Context(), args[0], draft, force)
		},
	}
	edit.Flags().String("name", "", "Item name")
	edit.Flags().String("sku", "", "Stock keeping unit")
	edit.Flags().String("unit", "", "Unit of measure")
	edit.Flags().String("category", "", "Category")
	edit.Flags().String("location", "", "Storage location")
	edit.Flags().Int("min", 0, "Low stock threshold")
	edit.Flags().Bool("force", false, "Apply even if another user is editing the item")

	var reason string
	qty := &cobra.Command{
		Use:   "qty <id> <quantity>",
		Short: "Set item quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			return e.cli.RunQuantity(cmd.Context(), args[0], n, reason, force)
		},
	}
	qty.Flags().StringVarP(&reason, "reason", "r", "", "Reason for the change")
	qty.Flags().Bool("force", false, "Apply even if another user is editing the item")

	restock := &cobra.Command{
		Use:   "restock <quantity> <id>...",
		Short: "Set the same quantity for several items",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseQuantity(args[0])
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			return e.cli.RunRestock(cmd.Context(), args[1:], n, reason, force)
		},
	}
	restock.Flags().StringVarP(&reason, "reason", "r", "", "Reason for the change")
	restock.Flags().Bool("force", false, "Apply even if another user is editing an item")

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return e.cli.RunDelete(cmd.Context(), args[0], force)
		},
	}
	rm.Flags().Bool("force", false, "Delete even if another user is editing the item")

	ack := &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge a low stock alert (requires a realtime connection)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunAcknowledge(args[0])
		},
	}

	items.AddCommand(list, get, add, edit, qty, restock, rm, ack)
	return items
}

// editDraft собирает изменения только из заданных флагов
func editDraft(cmd *cobra.Command) (models.ItemDraft, error) {
	var draft models.ItemDraft
	f := cmd.Flags()
	for flag, field := range map[string]**string{
		"name":     &draft.Name,
		"sku":      &draft.SKU,
		"unit":     &draft.Unit,
		"category": &draft.Category,
		"location": &draft.Location,
	} {
		if !f.Changed(flag) {
			continue
		}
		v, err := f.GetString(flag)
		if err != nil {
			return draft, err
		}
		*field = &v
	}
	if f.Changed("min") {
		v, err := f.GetInt("min")
		if err != nil {
			return draft, err
		}
		draft.MinQuantity = &v
	}
	if draft == (models.ItemDraft{}) {
		return draft, fmt.Errorf("nothing to update, set at least one field flag")
	}
	return draft, nil
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return n, nil
}

func newSyncCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued offline changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunSync(cmd.Context())
		},
	}
}

func newQueueCmd(e *env) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List changes waiting for synchronization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.ActionKind
			if kind != "" {
				k, err := models.ParseActionKind(kind)
				if err != nil {
					return err
				}
				filter = k
			}
			return e.cli.RunQueue(cmd.Context(), filter)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Show only CREATE, UPDATE or DELETE actions")
	return cmd
}

func newNotificationsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "List notifications",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunNotifications()
		},
	}

	read := &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunNotificationRead(args[0])
		},
	}

	readAll := &cobra.Command{
		Use:   "read-all",
		Short: "Mark all notifications as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunNotificationsReadAll()
		},
	}

	dismiss := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Remove a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.cli.RunNotificationDismiss(args[0])
		},
	}

	cmd.AddCommand(read, readAll, dismiss)
	return cmd
}

const watchLong = `Run background sync and realtime updates until interrupted.

While watching, lines typed on stdin run as commands with a live realtime
connection, for example "items qty 42 10" or "notifications read-all".`

func newWatchCmd(e *env) *cobra.Command {
	var (
		interval    time.Duration
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run background sync and realtime updates until interrupted",
		Long:  watchLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics") {
				metricsAddr = e.cfg.Metrics.Addr
			}
			return runWatch(cmd.Context(), e, interval, metricsAddr)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Status refresh interval")
	cmd.Flags().StringVar(&metricsAddr, "metrics", "", "Serve Prometheus metrics on this address")
	return cmd
}

func runWatch(ctx context.Context, e *env, interval time.Duration, metricsAddr string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return e.app.Run(ctx) })
	g.Go(func() error { return e.cli.RunWatch(ctx, interval, shellExec(e)) })

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
