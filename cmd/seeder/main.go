package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/sigainv/siga-backend/internal/config"
	"github.com/sigainv/siga-backend/internal/database"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/rbac"
)

// officeNames is the canonical branch list. "Sede Principal" itself comes
// from the migrations.
var officeNames = []string{
	"COQ", "CALI", "MEDELLÍN", "BUCARAMANGA", "POLO CLUB", "NOGAL",
	"TUNJA", "CARTAGENA", "MORATO", "CEDRITOS", "LOURDES", "PEREIRA",
	"NEIVA", "KENNEDY",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("command required")
	}

	switch os.Args[1] {
	case "seed":
		return seed()
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: seeder <command>

Commands:
  seed   create offices and default users (idempotent)
  help   show this message

The default password is read from SEED_PASSWORD.
`)
}

func seed() error {
	_ = godotenv.Load()

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		return errors.New("SEED_PASSWORD is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("generating password hash: %w", err)
	}

	cfg := config.Load()
	d, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer d.Close()

	if err := d.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	ctx := context.Background()
	queries := d.Queries()

	principal, err := queries.GetPrincipalOffice(ctx)
	if err != nil {
		return fmt.Errorf("loading principal office: %w", err)
	}

	if err := seedUser(ctx, queries, "admin", "Administrador", string(hash),
		string(rbac.RoleAdministrator), principal.ID); err != nil {
		return err
	}
	if err := seedUser(ctx, queries, "lider", "Líder de Inventario", string(hash),
		string(rbac.RoleInventoryLead), principal.ID); err != nil {
		return err
	}

	for _, name := range officeNames {
		officeID, err := ensureOffice(ctx, queries, name)
		if err != nil {
			return err
		}
		username := officeUsername(name)
		role := rbac.AssignRoleByOffice(name)
		if err := seedUser(ctx, queries, username, "Oficina "+name, string(hash),
			string(role), officeID); err != nil {
			return err
		}
	}

	log.Println("Seed complete")
	return nil
}

func ensureOffice(ctx context.Context, queries *db.Queries, name string) (int64, error) {
	office, err := queries.GetOfficeByName(ctx, name)
	if err == nil {
		return office.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("looking up office %q: %w", name, err)
	}

	id, err := queries.CreateOffice(ctx, db.CreateOfficeParams{Name: name})
	if err != nil {
		return 0, fmt.Errorf("creating office %q: %w", name, err)
	}
	log.Printf("Created office %s", name)
	return id, nil
}

func seedUser(ctx context.Context, queries *db.Queries, username, displayName, hash, role string, officeID int64) error {
	if _, err := queries.GetUserByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("looking up user %q: %w", username, err)
	}

	_, err := queries.CreateUser(ctx, db.CreateUserParams{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         role,
		OfficeID:     officeID,
	})
	if err != nil {
		return fmt.Errorf("creating user %q: %w", username, err)
	}
	log.Printf("Created user %s (%s)", username, role)
	return nil
}

// officeUsername lowercases the office and strips spaces and accents that
// are awkward in a login name.
func officeUsername(name string) string {
	s := strings.ToLower(name)
	replacer := strings.NewReplacer(" ", "_", "í", "i", "é", "e", "á", "a", "ó", "o", "ú", "u")
	return "oficina_" + replacer.Replace(s)
}
