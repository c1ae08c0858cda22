// Command propertyctl runs administrative tasks against the property
// database: bulk address import and export, and account maintenance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"property-management-backend/config"
	"property-management-backend/internal/app"
	"property-management-backend/internal/auth"
	"property-management-backend/internal/db"
	"property-management-backend/internal/importer"
	"property-management-backend/internal/logging"
	"property-management-backend/internal/model"
	"property-management-backend/internal/parse"
	"property-management-backend/internal/store"
)

const usage = `usage: propertyctl [flags] <command> [args]

commands:
  import <file.csv|file.xlsx>   add addresses from a file
  export <file.xlsx>            write every address to a workbook
  useradd <username> <password> create an account with the named permissions (-perms)
  passwd <username> <password>  set an account password
  allot <resident-id> <ref>     allot an address such as B-12 or B-12/3F
`

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", envOr("CONFIG_PATH", "./config/config.yaml"), "Path to the configuration file")
		username   = flag.String("user", os.Getenv("PROPERTYCTL_USER"), "Operator username")
		password   = flag.String("password", os.Getenv("PROPERTYCTL_PASSWORD"), "Operator password")
		perms      = flag.String("perms", "", "Comma-separated permission names for useradd")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, "console", "propertyctl")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	appStore := store.NewGormStore(gormDB, logger)
	adminHash, err := auth.HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		logger.Fatal("failed to hash admin password", zap.Error(err))
	}
	if _, err := db.Seed(ctx, appStore, adminHash, logger); err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}
	appCtx := app.New(cfg, appStore, logger)

	if _, err := appCtx.Login(ctx, *username, *password); err != nil {
		logger.Fatal("login failed", zap.String("username", *username), zap.Error(err))
	}
	defer appCtx.Logout()

	if err := run(ctx, appCtx, flag.Args(), splitList(*perms)); err != nil {
		if errors.Is(err, app.ErrForbidden) {
			logger.Fatal("not permitted", zap.Error(err))
		}
		logger.Fatal("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
	}
}

func run(ctx context.Context, a *app.Context, args []string, perms []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "import":
		if len(args) != 1 {
			return errors.New("import takes one file")
		}
		return importAddresses(ctx, a, args[0])
	case "export":
		if len(args) != 1 {
			return errors.New("export takes one file")
		}
		return exportAddresses(ctx, a, args[0])
	case "useradd":
		if len(args) != 2 {
			return errors.New("useradd takes a username and a password")
		}
		return addUser(ctx, a, args[0], args[1], perms)
	case "allot":
		if len(args) != 2 {
			return errors.New("allot takes a resident id and an address reference")
		}
		residentID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid resident id %q", args[0])
		}
		return allot(ctx, a, residentID, args[1])
	case "passwd":
		if len(args) != 2 {
			return errors.New("passwd takes a username and a password")
		}
		return setPassword(ctx, a, args[0], args[1])
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func importAddresses(ctx context.Context, a *app.Context, path string) error {
	if _, err := a.Require(ctx, model.ModuleAddresses, model.CanAdd); err != nil {
		return err
	}
	inputs, err := importer.ReadFile(path)
	if err != nil {
		return err
	}
	n, err := a.Store.Addresses().CreateBatch(ctx, inputs, a.Config.Import.IsAtomic())
	if err != nil {
		return fmt.Errorf("imported %d of %d rows: %w", n, len(inputs), err)
	}
	a.Logger.Info("import complete", zap.String("file", path), zap.Int("imported", n))
	return nil
}

func exportAddresses(ctx context.Context, a *app.Context, path string) error {
	if _, err := a.Require(ctx, model.ModuleAddresses, model.CanView); err != nil {
		return err
	}
	addresses, err := a.Store.Addresses().List(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := importer.ExportXLSX(f, addresses); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.Logger.Info("export complete", zap.String("file", path), zap.Int("addresses", len(addresses)))
	return nil
}

func addUser(ctx context.Context, a *app.Context, username, password string, perms []string) error {
	if _, err := a.Require(ctx, model.ModuleUsers, model.CanAdd); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user, err := a.Store.Users().Create(ctx, store.UserInput{Username: username, IsActive: true}, hash)
	if err != nil {
		return err
	}
	if len(perms) > 0 {
		if _, err := a.Store.Users().SetPermissions(ctx, user.ID, perms); err != nil {
			return err
		}
	}
	a.Logger.Info("user created", zap.String("username", user.Username), zap.Strings("permissions", perms))
	return nil
}

func setPassword(ctx context.Context, a *app.Context, username, password string) error {
	if _, err := a.Require(ctx, model.ModuleUsers, model.CanEdit); err != nil {
		return err
	}
	user, err := a.Store.Users().GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := a.Store.Users().SetPassword(ctx, user.ID, hash); err != nil {
		return err
	}
	a.Logger.Info("password changed", zap.String("username", username))
	return nil
}

// allot gives the resident the address, and floor, named by raw.
func allot(ctx context.Context, a *app.Context, residentID int64, raw string) error {
	if _, err := a.Require(ctx, model.ModuleResidents, model.CanEdit); err != nil {
		return err
	}
	ref, err := parse.ParseAddressRef(raw)
	if err != nil {
		return err
	}

	address, floorID, err := a.ResolveAddressRef(ctx, ref)
	if err != nil {
		return err
	}

	result, err := a.Store.Residents().Allot(ctx, residentID, address.ID, floorID)
	if err != nil {
		return err
	}
	a.Logger.Info("allotted",
		zap.Int64("resident_id", residentID),
		zap.String("address", ref.String()),
		zap.Bool("address_attached", result.AddressAttached),
		zap.Bool("floor_assigned", result.FloorAssigned))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
