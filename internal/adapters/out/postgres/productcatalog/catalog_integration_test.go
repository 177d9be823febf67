package productcatalog_test

import (
	"context"
	"testing"
	"time"

	"consolidation/internal/adapters/out/postgres/productcatalog"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type CatalogIntegrationTestSuite struct {
	suite.Suite
	container *postgrescontainer.PostgresContainer
	db        *gorm.DB
	catalog   *productcatalog.Catalog
}

func (suite *CatalogIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgrescontainer.Run(ctx,
		"postgres:15-alpine",
		postgrescontainer.WithDatabase("testdb"),
		postgrescontainer.WithUsername("testuser"),
		postgrescontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&productcatalog.ProductDTO{}))

	suite.catalog = productcatalog.NewCatalog(db)
}

func (suite *CatalogIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE products").Error)
}

func (suite *CatalogIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CatalogIntegrationTestSuite) seedProduct() kernel.UUID {
	id := kernel.NewUUID()
	dto := productcatalog.ProductDTO{
		ID:     id.Bytes(),
		Name:   "crate of glassware",
		Weight: decimal.RequireFromString("12.500"),
		Price:  decimal.RequireFromString("89.99"),
	}
	suite.Require().NoError(suite.db.Create(&dto).Error)
	return id
}

func (suite *CatalogIntegrationTestSuite) TestUnitWeight() {
	productID := suite.seedProduct()

	weight, err := suite.catalog.UnitWeight(context.Background(), productID)
	suite.Require().NoError(err)
	suite.True(weight.Decimal().Equal(decimal.RequireFromString("12.5")))
}

func (suite *CatalogIntegrationTestSuite) TestUnitPrice() {
	productID := suite.seedProduct()

	price, err := suite.catalog.UnitPrice(context.Background(), productID)
	suite.Require().NoError(err)
	suite.True(price.Equal(decimal.RequireFromString("89.99")))
}

func (suite *CatalogIntegrationTestSuite) TestUnknownProduct() {
	_, err := suite.catalog.UnitWeight(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.catalog.UnitPrice(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestCatalogIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogIntegrationTestSuite))
}
