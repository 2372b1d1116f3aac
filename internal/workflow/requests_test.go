package workflow_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/rbac"
	"github.com/sigainv/siga-backend/internal/testutil"
	"github.com/sigainv/siga-backend/internal/workflow"
)

const validObservation = "Material para el evento corporativo anual"

func newRequestService(tdb *testutil.TestDatabase, notifier workflow.Notifier) *workflow.RequestService {
	return workflow.NewRequestService(tdb.Pool(), tdb.Queries(), notifier)
}

func TestRequestCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	ctx := context.Background()

	t.Run("creates a pending request with split values", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newRequestService(tdb, nil)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		user := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		material := tdb.NewMaterial(t).WithUnitValue(decimal.NewFromInt(100)).WithStock(50).Create()

		req, err := svc.Create(ctx, sessionFor(user), workflow.CreateRequestInput{
			OfficeID:         office.ID,
			MaterialID:       material.ID,
			Quantity:         10,
			OfficePercentage: decimal.NewFromInt(40),
			Observation:      validObservation,
		})
		require.NoError(t, err)

		assert.Equal(t, db.RequestStatePending, req.StateID)
		assert.True(t, req.TotalValue.Equal(decimal.NewFromInt(1000)), "total %s", req.TotalValue)
		assert.True(t, req.OfficeValue.Equal(decimal.NewFromInt(400)), "office share %s", req.OfficeValue)
		assert.True(t, req.MainOfficeValue.Equal(decimal.NewFromInt(600)), "main share %s", req.MainOfficeValue)
		assert.Nil(t, req.ResolvedBy)

		t.Run("stock is untouched until approval", func(t *testing.T) {
			m, err := tdb.Queries().GetMaterialByID(ctx, material.ID)
			require.NoError(t, err)
			assert.Equal(t, int32(50), m.AvailableQuantity)
		})
	})

	t.Run("observation shorter than 15 characters is rejected", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newRequestService(tdb, nil)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		user := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		material := tdb.NewMaterial(t).Create()

		_, err := svc.Create(ctx, sessionFor(user), workflow.CreateRequestInput{
			OfficeID:         office.ID,
			MaterialID:       material.ID,
			Quantity:         1,
			OfficePercentage: decimal.NewFromInt(50),
			Observation:      strings.Repeat("x", 14),
		})
		assert.ErrorIs(t, err, workflow.ErrObservationTooShort)

		t.Run("exactly 15 characters passes", func(t *testing.T) {
			_, err := svc.Create(ctx, sessionFor(user), workflow.CreateRequestInput{
				OfficeID:         office.ID,
				MaterialID:       material.ID,
				Quantity:         1,
				OfficePercentage: decimal.NewFromInt(50),
				Observation:      strings.Repeat("x", 15),
			})
			assert.NoError(t, err)
		})
	})

	t.Run("percentage bounds", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newRequestService(tdb, nil)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		user := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		material := tdb.NewMaterial(t).Create()

		attempt := func(pct int64) error {
			_, err := svc.Create(ctx, sessionFor(user), workflow.CreateRequestInput{
				OfficeID:         office.ID,
				MaterialID:       material.ID,
				Quantity:         1,
				OfficePercentage: decimal.NewFromInt(pct),
				Observation:      validObservation,
			})
			return err
		}

		assert.ErrorIs(t, attempt(0), workflow.ErrInvalidPercentage)
		assert.ErrorIs(t, attempt(101), workflow.ErrInvalidPercentage)
		assert.NoError(t, attempt(1))
		assert.NoError(t, attempt(100))
	})

	t.Run("office user cannot request for another office", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newRequestService(tdb, nil)

		cali := tdb.NewOffice(t).WithName("CALI").Create()
		tunja := tdb.NewOffice(t).WithName("TUNJA").Create()
		user := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(cali.ID).Create()
		material := tdb.NewMaterial(t).Create()

		_, err := svc.Create(ctx, sessionFor(user), workflow.CreateRequestInput{
			OfficeID:         tunja.ID,
			MaterialID:       material.ID,
			Quantity:         1,
			OfficePercentage: decimal.NewFromInt(50),
			Observation:      validObservation,
		})
		assert.ErrorIs(t, err, workflow.ErrOfficeNotVisible)
	})

	t.Run("quantity above available stock is rejected", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newRequestService(tdb, nil)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		user := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		material := tdb.NewMaterial(t).WithStock(5).Create()

		_, err := svc.Create(ctx, sessionFor(user), workflow.CreateRequestInput{
			OfficeID:         office.ID,
			MaterialID:       material.ID,
			Quantity:         6,
			OfficePercentage: decimal.NewFromInt(50),
			Observation:      validObservation,
		})
		assert.ErrorIs(t, err, db.ErrInsufficientStock)
	})

	t.Run("monthly quota boundary", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newRequestService(tdb, nil)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		user := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		material := tdb.NewMaterial(t).WithStock(2000).Create()

		submit := func(quantity int32) error {
			_, err := svc.Create(ctx, sessionFor(user), workflow.CreateRequestInput{
				OfficeID:         office.ID,
				MaterialID:       material.ID,
				Quantity:         quantity,
				OfficePercentage: decimal.NewFromInt(50),
				Observation:      validObservation,
			})
			return err
		}

		require.NoError(t, submit(999))
		require.NoError(t, submit(1), "exactly 1000 units should pass")
		assert.ErrorIs(t, submit(1), db.ErrMonthlyQuotaExceeded)
	})

	t.Run("rejected requests do not count against the quota", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		svc := newRequestService(tdb, nil)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		requester := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		approver := tdb.NewUser(t).WithUsername("lider").WithRole(rbac.RoleInventoryLead).Create()
		material := tdb.NewMaterial(t).WithStock(2000).Create()

		req, err := svc.Create(ctx, sessionFor(requester), workflow.CreateRequestInput{
			OfficeID:         office.ID,
			MaterialID:       material.ID,
			Quantity:         1000,
			OfficePercentage: decimal.NewFromInt(50),
			Observation:      validObservation,
		})
		require.NoError(t, err)

		_, err = svc.Reject(ctx, sessionFor(approver), req.ID, "presupuesto agotado")
		require.NoError(t, err)

		_, err = svc.Create(ctx, sessionFor(requester), workflow.CreateRequestInput{
			OfficeID:         office.ID,
			MaterialID:       material.ID,
			Quantity:         1000,
			OfficePercentage: decimal.NewFromInt(50),
			Observation:      validObservation,
		})
		assert.NoError(t, err)
	})
}

func TestRequestResolution(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	ctx := context.Background()

	setup := func(t *testing.T, stock int32) (*testutil.TestDatabase, *workflow.RequestService, db.Request, db.User, db.Material) {
		tdb := getSharedTestDatabase(t)
		svc := newRequestService(tdb, nil)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		requester := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		approver := tdb.NewUser(t).WithUsername("lider").WithRole(rbac.RoleInventoryLead).Create()
		material := tdb.NewMaterial(t).WithStock(stock).WithMinimum(0).Create()

		req, err := svc.Create(ctx, sessionFor(requester), workflow.CreateRequestInput{
			OfficeID:         office.ID,
			MaterialID:       material.ID,
			Quantity:         10,
			OfficePercentage: decimal.NewFromInt(50),
			Observation:      validObservation,
		})
		require.NoError(t, err)
		return tdb, svc, req, approver, material
	}

	t.Run("approve debits stock and stamps the resolver", func(t *testing.T) {
		tdb, svc, req, approver, material := setup(t, 50)

		resolved, err := svc.Approve(ctx, sessionFor(approver), req.ID)
		require.NoError(t, err)

		assert.Equal(t, db.RequestStateApproved, resolved.StateID)
		require.NotNil(t, resolved.ResolvedBy)
		assert.Equal(t, approver.ID, *resolved.ResolvedBy)
		assert.NotNil(t, resolved.ResolvedAt)

		m, err := tdb.Queries().GetMaterialByID(ctx, material.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(40), m.AvailableQuantity)

		deliveries, err := tdb.Queries().ListDeliveriesByRequest(ctx, req.ID)
		require.NoError(t, err)
		require.Len(t, deliveries, 1)
		assert.Equal(t, int32(10), deliveries[0].Quantity)
	})

	t.Run("approving twice fails", func(t *testing.T) {
		_, svc, req, approver, _ := setup(t, 50)

		_, err := svc.Approve(ctx, sessionFor(approver), req.ID)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, sessionFor(approver), req.ID)
		assert.ErrorIs(t, err, db.ErrNotPending)
	})

	t.Run("approve with insufficient stock fails and keeps the request pending", func(t *testing.T) {
		tdb, svc, req, approver, material := setup(t, 50)

		// another office drains the stock after the request was submitted
		require.NoError(t, tdb.Queries().DecrementMaterialStock(ctx, material.ID, 45))

		_, err := svc.Approve(ctx, sessionFor(approver), req.ID)
		assert.ErrorIs(t, err, db.ErrInsufficientStock)

		current, err := tdb.Queries().GetRequestByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, db.RequestStatePending, current.StateID)
	})

	t.Run("partial approve delivers fewer units", func(t *testing.T) {
		tdb, svc, req, approver, material := setup(t, 50)

		resolved, err := svc.ApprovePartial(ctx, sessionFor(approver), req.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, db.RequestStatePartialApproved, resolved.StateID)

		m, err := tdb.Queries().GetMaterialByID(ctx, material.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(46), m.AvailableQuantity)

		deliveries, err := tdb.Queries().ListDeliveriesByRequest(ctx, req.ID)
		require.NoError(t, err)
		require.Len(t, deliveries, 1)
		assert.Equal(t, int32(4), deliveries[0].Quantity)
		assert.Contains(t, deliveries[0].Note, "4 de 10")
	})

	t.Run("partial approve must be less than requested", func(t *testing.T) {
		_, svc, req, approver, _ := setup(t, 50)

		_, err := svc.ApprovePartial(ctx, sessionFor(approver), req.ID, 10)
		assert.ErrorIs(t, err, workflow.ErrInvalidQuantity)

		_, err = svc.ApprovePartial(ctx, sessionFor(approver), req.ID, 0)
		assert.ErrorIs(t, err, workflow.ErrInvalidQuantity)
	})

	t.Run("reject keeps stock and appends the reason", func(t *testing.T) {
		tdb, svc, req, approver, material := setup(t, 50)

		resolved, err := svc.Reject(ctx, sessionFor(approver), req.ID, "sin presupuesto")
		require.NoError(t, err)

		assert.Equal(t, db.RequestStateRejected, resolved.StateID)
		assert.Contains(t, resolved.Observation, " | Rechazo: sin presupuesto")
		require.NotNil(t, resolved.ResolvedBy)
		assert.Equal(t, approver.ID, *resolved.ResolvedBy)

		m, err := tdb.Queries().GetMaterialByID(ctx, material.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(50), m.AvailableQuantity)
	})

	t.Run("low stock notifier fires after approval", func(t *testing.T) {
		tdb := getSharedTestDatabase(t)
		notifier := testutil.NewMockNotifier(t)
		notifier.ExpectNotifyLowStock()
		svc := newRequestService(tdb, notifier)

		office := tdb.NewOffice(t).WithName("CALI").Create()
		requester := tdb.NewUser(t).WithRole(rbac.RoleOfficeCali).InOffice(office.ID).Create()
		approver := tdb.NewUser(t).WithUsername("lider").WithRole(rbac.RoleInventoryLead).Create()
		material := tdb.NewMaterial(t).WithStock(12).WithMinimum(5).Create()

		req, err := svc.Create(ctx, sessionFor(requester), workflow.CreateRequestInput{
			OfficeID:         office.ID,
			MaterialID:       material.ID,
			Quantity:         10,
			OfficePercentage: decimal.NewFromInt(50),
			Observation:      validObservation,
		})
		require.NoError(t, err)

		_, err = svc.Approve(ctx, sessionFor(approver), req.ID)
		require.NoError(t, err)

		notifier.AssertExpectations(t)
	})
}
