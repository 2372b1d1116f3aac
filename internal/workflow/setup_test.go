package workflow_test

import (
	"flag"
	"os"
	"testing"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/rbac"
	"github.com/sigainv/siga-backend/internal/testutil"
)

var sharedTestDB *testutil.TestDatabase

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	t := &testing.T{}
	sharedTestDB = testutil.NewTestDatabase(t)
	sharedTestDB.RunMigrations(t)

	code := m.Run()

	if sharedTestDB.Pool() != nil {
		sharedTestDB.Pool().Close()
	}
	os.Exit(code)
}

func getSharedTestDatabase(t *testing.T) *testutil.TestDatabase {
	sharedTestDB.CleanupDatabase(t)
	return sharedTestDB
}

func sessionFor(user db.User) auth.Session {
	role, _ := rbac.ParseRole(user.Role)
	return auth.Session{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        role,
		OfficeID:    user.OfficeID,
		OfficeName:  user.OfficeName,
	}
}
