package repository

import (
	"context"
	"database/sql"
	"testing"

	"novemberapples/commerce-service/internal/app/commerce/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ClientRepositoryTestSuite тестовый suite для GORM repository
type ClientRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ClientRepository
	sqlDB *sql.DB
}

func TestClientRepositorySuite(t *testing.T) {
	suite.Run(t, new(ClientRepositoryTestSuite))
}

func (s *ClientRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewClientRepository(s.db)
}

func (s *ClientRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== Create Tests =====================

func (s *ClientRepositoryTestSuite) TestCreate_Success() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO "clients"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	s.mock.ExpectCommit()

	client := &entity.Client{Name: "ACME Corp", Address: "Main st. 1"}

	// Act
	err := s.repo.Create(ctx, client)

	// Assert
	s.NoError(err)
	s.Equal(int64(1), client.ID)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== GetByID Tests =====================

func (s *ClientRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "name", "address"}).
		AddRow(int64(42), "ACME Corp", "Main st. 1")

	s.mock.ExpectQuery(`SELECT \* FROM "clients" WHERE id =`).
		WillReturnRows(rows)

	// Act
	client, err := s.repo.GetByID(ctx, 42)

	// Assert
	s.NoError(err)
	s.NotNil(client)
	s.Equal(int64(42), client.ID)
	s.Equal("ACME Corp", client.Name)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ClientRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()

	s.mock.ExpectQuery(`SELECT \* FROM "clients" WHERE id =`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address"}))

	// Act
	client, err := s.repo.GetByID(ctx, 99)

	// Assert
	s.Nil(client)
	s.ErrorIs(err, ErrClientNotFound)
}

// ===================== GetAll Tests =====================

func (s *ClientRepositoryTestSuite) TestGetAll_Success() {
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "name", "address"}).
		AddRow(int64(1), "ACME Corp", "Main st. 1").
		AddRow(int64(2), "Globex", "Second ave. 5")

	s.mock.ExpectQuery(`SELECT \* FROM "clients" ORDER BY id`).
		WillReturnRows(rows)

	// Act
	clients, err := s.repo.GetAll(ctx)

	// Assert
	s.NoError(err)
	s.Len(clients, 2)
	s.Equal("Globex", clients[1].Name)
}

// ===================== Delete Tests =====================

func (s *ClientRepositoryTestSuite) TestDelete_Success() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`DELETE FROM "clients"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Delete(ctx, 1)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ClientRepositoryTestSuite) TestDelete_NotFound() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`DELETE FROM "clients"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Delete(ctx, 99)

	// Assert
	s.ErrorIs(err, ErrClientNotFound)
}
