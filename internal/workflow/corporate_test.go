package workflow_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/rbac"
	"github.com/sigainv/siga-backend/internal/testutil"
	"github.com/sigainv/siga-backend/internal/workflow"
)

func createCorporateItem(t *testing.T, tdb *testutil.TestDatabase, quantity int32, assignable bool) db.CorporateItem {
	t.Helper()
	ctx := context.Background()

	categories, err := tdb.Queries().ListCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	suppliers, err := tdb.Queries().ListSuppliers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, suppliers)

	id, err := tdb.Queries().CreateCorporateItem(ctx, db.CreateCorporateItemParams{
		Code:            "CORP-001",
		Name:            "Video Beam",
		Description:     "Proyector para eventos",
		CategoryID:      categories[0].ID,
		SupplierID:      suppliers[0].ID,
		UnitValue:       decimal.NewFromInt(2500000),
		Quantity:        quantity,
		MinimumQuantity: 1,
		Location:        "Bodega principal",
		Assignable:      assignable,
		CreatedBy:       "testutil",
	})
	require.NoError(t, err)

	item, err := tdb.Queries().GetCorporateItemByID(ctx, id)
	require.NoError(t, err)
	return item
}

func TestCorporateAssign(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	ctx := context.Background()

	t.Run("moves stock to the office and records the assignment", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := workflow.NewCorporateService(tdb.Pool(), tdb.Queries())

		office := tdb.NewOffice(t).WithName("KENNEDY").Create()
		admin := tdb.NewUser(t).WithRole(rbac.RoleAdministrator).Create()
		item := createCorporateItem(t, tdb, 5, true)

		assignment, err := svc.Assign(ctx, sessionFor(admin), workflow.AssignInput{
			ItemID:   item.ID,
			OfficeID: office.ID,
			Quantity: 2,
		})
		require.NoError(t, err)

		assert.Equal(t, office.Name, assignment.OfficeName)
		assert.Equal(t, admin.DisplayName, assignment.AssignedBy)

		reloaded, err := tdb.Queries().GetCorporateItemByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(3), reloaded.Quantity)
	})

	t.Run("non assignable items are refused", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := workflow.NewCorporateService(tdb.Pool(), tdb.Queries())

		office := tdb.NewOffice(t).WithName("KENNEDY").Create()
		admin := tdb.NewUser(t).WithRole(rbac.RoleAdministrator).Create()
		item := createCorporateItem(t, tdb, 5, false)

		_, err := svc.Assign(ctx, sessionFor(admin), workflow.AssignInput{
			ItemID:   item.ID,
			OfficeID: office.ID,
			Quantity: 1,
		})
		assert.ErrorIs(t, err, workflow.ErrItemNotAssignable)
	})

	t.Run("cannot assign more than corporate stock", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := workflow.NewCorporateService(tdb.Pool(), tdb.Queries())

		office := tdb.NewOffice(t).WithName("KENNEDY").Create()
		admin := tdb.NewUser(t).WithRole(rbac.RoleAdministrator).Create()
		item := createCorporateItem(t, tdb, 2, true)

		_, err := svc.Assign(ctx, sessionFor(admin), workflow.AssignInput{
			ItemID:   item.ID,
			OfficeID: office.ID,
			Quantity: 3,
		})
		assert.ErrorIs(t, err, db.ErrInsufficientStock)
	})
}
