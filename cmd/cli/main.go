package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lasmate/Alisee/internal/auth"
	"github.com/lasmate/Alisee/internal/config"
	"github.com/lasmate/Alisee/internal/model"
	"github.com/lasmate/Alisee/internal/repository"
)

const usage = "expected 'migrate', 'add-user' or 'seed' subcommand"

func main() {
	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	name := addUserCmd.String("name", "", "First name of the new user")
	surname := addUserCmd.String("surname", "", "Last name of the new user")
	email := addUserCmd.String("email", "", "Email (login) of the new user")
	password := addUserCmd.String("password", "", "Password for the new user")
	admin := addUserCmd.Bool("admin", false, "Create the user as an administrator")

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	file := seedCmd.String("file", "catalog.yaml", "YAML file listing items and images")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "migrate":
		openRepository(ctx)
		fmt.Println("Migrations applied.")
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *name == "" || *surname == "" || *email == "" || *password == "" {
			fmt.Println("name, surname, email and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		createUser(ctx, openRepository(ctx), *name, *surname, *email, *password, *admin)
	case "seed":
		seedCmd.Parse(os.Args[2:])
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", *file, err)
		}
		defer f.Close()

		cat, err := parseCatalog(f)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		res, err := seedCatalog(ctx, openRepository(ctx), cat)
		if err != nil {
			log.Fatalf("Failed to seed catalog: %v", err)
		}
		fmt.Printf("Seeded %d new items (%d updated) and %d images (%d already present).\n",
			res.Items, res.UpdatedItems, res.Images, res.SkippedImages)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openRepository connects to Postgres and brings the schema up to date.
func openRepository(ctx context.Context) *repository.ShopRepository {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatalf("The CLI needs STORE_DRIVER=%s, got %s", config.DriverPostgres, cfg.StoreDriver)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	repo := repository.NewShopRepository(pool)
	// Ensure tables exist if running cli before server
	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return repo
}

func createUser(ctx context.Context, repo *repository.ShopRepository, name, surname, email, password string, admin bool) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	u := &model.User{
		Name:         name,
		Surname:      surname,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		AccountType:  model.AccountCustomer,
	}
	if admin {
		u.AccountType = model.AccountAdmin
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User '%s' created with id %d.\n", u.Email, u.ID)
}
