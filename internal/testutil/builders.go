package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/rbac"
)

// OfficeBuilder provides a fluent interface for creating test offices
type OfficeBuilder struct {
	name   string
	testDB *TestDatabase
	t      *testing.T
}

func (tdb *TestDatabase) NewOffice(t *testing.T) *OfficeBuilder {
	return &OfficeBuilder{name: "CALI", testDB: tdb, t: t}
}

func (b *OfficeBuilder) WithName(name string) *OfficeBuilder {
	b.name = name
	return b
}

func (b *OfficeBuilder) Create() db.Office {
	id, err := b.testDB.Queries().CreateOffice(context.Background(), db.CreateOfficeParams{
		Name: rbac.NormalizeOffice(b.name),
	})
	require.NoError(b.t, err, "Failed to create test office")

	office, err := b.testDB.Queries().GetOfficeByID(context.Background(), id)
	require.NoError(b.t, err)
	return office
}

// UserBuilder provides a fluent interface for creating test users
type UserBuilder struct {
	username string
	role     string
	officeID int64
	testDB   *TestDatabase
	t        *testing.T
}

func (tdb *TestDatabase) NewUser(t *testing.T) *UserBuilder {
	return &UserBuilder{
		username: "testuser",
		role:     string(rbac.RoleOfficeRegular),
		testDB:   tdb,
		t:        t,
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithRole(role rbac.Role) *UserBuilder {
	b.role = string(role)
	return b
}

// WithRawRole bypasses the role enum, for exercising unknown stored roles.
func (b *UserBuilder) WithRawRole(role string) *UserBuilder {
	b.role = role
	return b
}

func (b *UserBuilder) InOffice(officeID int64) *UserBuilder {
	b.officeID = officeID
	return b
}

func (b *UserBuilder) Create() db.User {
	ctx := context.Background()
	if b.officeID == 0 {
		principal, err := b.testDB.Queries().GetPrincipalOffice(ctx)
		require.NoError(b.t, err, "Failed to load principal office")
		b.officeID = principal.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("testpass123"), bcrypt.MinCost)
	require.NoError(b.t, err)

	id, err := b.testDB.Queries().CreateUser(ctx, db.CreateUserParams{
		Username:     b.username,
		DisplayName:  "Test " + b.username,
		PasswordHash: string(hash),
		Role:         b.role,
		OfficeID:     b.officeID,
	})
	require.NoError(b.t, err, "Failed to create test user")

	user, err := b.testDB.Queries().GetUserByID(ctx, id)
	require.NoError(b.t, err)
	return user
}

// MaterialBuilder provides a fluent interface for creating test materials
type MaterialBuilder struct {
	name      string
	unitValue decimal.Decimal
	stock     int32
	minimum   int32
	officeID  int64
	testDB    *TestDatabase
	t         *testing.T
}

func (tdb *TestDatabase) NewMaterial(t *testing.T) *MaterialBuilder {
	return &MaterialBuilder{
		name:      "Test Material",
		unitValue: decimal.NewFromInt(1000),
		stock:     100,
		minimum:   5,
		testDB:    tdb,
		t:         t,
	}
}

func (b *MaterialBuilder) WithName(name string) *MaterialBuilder {
	b.name = name
	return b
}

func (b *MaterialBuilder) WithUnitValue(v decimal.Decimal) *MaterialBuilder {
	b.unitValue = v
	return b
}

func (b *MaterialBuilder) WithStock(stock int32) *MaterialBuilder {
	b.stock = stock
	return b
}

func (b *MaterialBuilder) WithMinimum(minimum int32) *MaterialBuilder {
	b.minimum = minimum
	return b
}

func (b *MaterialBuilder) InOffice(officeID int64) *MaterialBuilder {
	b.officeID = officeID
	return b
}

func (b *MaterialBuilder) Create() db.Material {
	ctx := context.Background()
	if b.officeID == 0 {
		principal, err := b.testDB.Queries().GetPrincipalOffice(ctx)
		require.NoError(b.t, err, "Failed to load principal office")
		b.officeID = principal.ID
	}

	id, err := b.testDB.Queries().CreateMaterial(ctx, db.CreateMaterialParams{
		Name:              b.name,
		UnitValue:         b.unitValue,
		AvailableQuantity: b.stock,
		MinimumQuantity:   b.minimum,
		OfficeID:          b.officeID,
		CreatedBy:         "testutil",
	})
	require.NoError(b.t, err, "Failed to create test material")

	material, err := b.testDB.Queries().GetMaterialByID(ctx, id)
	require.NoError(b.t, err)
	return material
}

// ElementBuilder provides a fluent interface for creating loanable elements
type ElementBuilder struct {
	name   string
	stock  int32
	testDB *TestDatabase
	t      *testing.T
}

func (tdb *TestDatabase) NewElement(t *testing.T) *ElementBuilder {
	return &ElementBuilder{name: "Test Element", stock: 10, testDB: tdb, t: t}
}

func (b *ElementBuilder) WithName(name string) *ElementBuilder {
	b.name = name
	return b
}

func (b *ElementBuilder) WithStock(stock int32) *ElementBuilder {
	b.stock = stock
	return b
}

func (b *ElementBuilder) Create() db.Element {
	id, err := b.testDB.Queries().CreateElement(context.Background(), db.CreateElementParams{
		Name:              b.name,
		UnitValue:         decimal.NewFromInt(500),
		AvailableQuantity: b.stock,
	})
	require.NoError(b.t, err, "Failed to create test element")

	elements, err := b.testDB.Queries().ListElements(context.Background())
	require.NoError(b.t, err)
	for _, e := range elements {
		if e.ID == id {
			return e
		}
	}
	b.t.Fatalf("created element %d not found", id)
	return db.Element{}
}

// LoanBuilder creates loans directly in PRESTADO
type LoanBuilder struct {
	elementID   int64
	requesterID int64
	officeID    int64
	quantity    int32
	returnDate  time.Time
	testDB      *TestDatabase
	t           *testing.T
}

func (tdb *TestDatabase) NewLoan(t *testing.T) *LoanBuilder {
	return &LoanBuilder{
		quantity:   1,
		returnDate: time.Now().AddDate(0, 0, 7),
		testDB:     tdb,
		t:          t,
	}
}

func (b *LoanBuilder) ForElement(elementID int64) *LoanBuilder {
	b.elementID = elementID
	return b
}

func (b *LoanBuilder) ByUser(user db.User) *LoanBuilder {
	b.requesterID = user.ID
	b.officeID = user.OfficeID
	return b
}

func (b *LoanBuilder) WithQuantity(quantity int32) *LoanBuilder {
	b.quantity = quantity
	return b
}

func (b *LoanBuilder) DueOn(date time.Time) *LoanBuilder {
	b.returnDate = date
	return b
}

func (b *LoanBuilder) Create() db.Loan {
	ctx := context.Background()
	err := b.testDB.Queries().DecrementElementStock(ctx, b.elementID, b.quantity)
	require.NoError(b.t, err, "Failed to debit element stock for test loan")

	id, err := b.testDB.Queries().CreateLoan(ctx, db.CreateLoanParams{
		ElementID:          b.elementID,
		RequesterID:        b.requesterID,
		OfficeID:           b.officeID,
		Quantity:           b.quantity,
		ExpectedReturnDate: b.returnDate,
		Event:              "Test Event",
		Observations:       "created by testutil",
		LenderName:         "Test Lender",
	})
	require.NoError(b.t, err, "Failed to create test loan")

	loan, err := b.testDB.Queries().GetLoanByID(ctx, id)
	require.NoError(b.t, err)
	return loan
}
