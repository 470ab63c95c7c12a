package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	m "JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users, profiles and positions
var (
	TestAdminUser      m.User
	TestUserApplicant1 m.User
	TestUserApplicant2 m.User
	TestUserEmployer1  m.User
	TestUserEmployer2  m.User
	TestProfile1       m.ApplicantProfile
	TestProfile2       m.ApplicantProfile
	TestCompany1       m.Company
	TestCompany2       m.Company

	// Plain password of every seeded user
	TestSeedPassword = "SeedPass123!"

	// TestAdminEmail is the bootstrap admin created by NewDBInstance
	TestAdminEmail = "admin@example.com"

	// Seeded positions. Open1 and Closed belong to company 1, Open2 to company 2.
	TestPositionOpen1  m.Position
	TestPositionClosed m.Position
	TestPositionOpen2  m.Position
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr:     true,
		Constr:        fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
		DBName:        dbName,
		AdminEmail:    TestAdminEmail,
		AdminPassword: TestSeedPassword,
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts two employers with companies, two applicants with
// profiles and three positions.
func seedTestData(db *DBinstanceStruct) error {
	if err := db.Where("email = ?", TestAdminEmail).First(&TestAdminUser).Error; err != nil {
		return err
	}

	hashedPwd, err := utilities.HashPassword(TestSeedPassword)
	if err != nil {
		return err
	}

	userSpecs := []struct {
		name  string
		email string
		role  string
		dst   *m.User
	}{
		{"Alice Applicant", "applicant1@example.com", m.RoleApplicant, &TestUserApplicant1},
		{"Bob Applicant", "applicant2@example.com", m.RoleApplicant, &TestUserApplicant2},
		{"Erin Employer", "employer1@example.com", m.RoleEmployer, &TestUserEmployer1},
		{"Frank Employer", "employer2@example.com", m.RoleEmployer, &TestUserEmployer2},
	}
	for _, s := range userSpecs {
		u := m.User{
			ID:               uuid.New(),
			EditableUserInfo: m.EditableUserInfo{Name: s.name},
			Email:            s.email,
			Password:         hashedPwd,
			Role:             s.role,
		}
		if err := db.Create(&u).Error; err != nil {
			return err
		}
		*s.dst = u
	}

	dob := time.Date(2001, 4, 12, 0, 0, 0, 0, time.UTC)
	profiles := []m.ApplicantProfile{
		{
			UserID: TestUserApplicant1.ID,
			EditableApplicantInfo: m.EditableApplicantInfo{
				Name:        "Alice Applicant",
				Phone:       "0100000001",
				Address:     "Jakarta",
				DateOfBirth: &dob,
				Gender:      m.GenderFemale,
			},
		},
		{
			UserID: TestUserApplicant2.ID,
			EditableApplicantInfo: m.EditableApplicantInfo{
				Name:   "Bob Applicant",
				Phone:  "0100000002",
				Gender: m.GenderMale,
			},
		},
	}
	if err := db.Create(&profiles).Error; err != nil {
		return err
	}
	TestProfile1, TestProfile2 = profiles[0], profiles[1]

	companies := []m.Company{
		{
			UserID: TestUserEmployer1.ID,
			EditableCompanyInfo: m.EditableCompanyInfo{
				Name:        "TechNova",
				Address:     "Bandung",
				Phone:       "0200000001",
				Description: "Innovative platform solutions",
			},
		},
		{
			UserID: TestUserEmployer2.ID,
			EditableCompanyInfo: m.EditableCompanyInfo{
				Name:        "DataForge",
				Address:     "Surabaya",
				Phone:       "0200000002",
				Description: "Data analytics consulting",
			},
		},
	}
	if err := db.Create(&companies).Error; err != nil {
		return err
	}
	TestCompany1, TestCompany2 = companies[0], companies[1]

	now := time.Now()
	salary := int64(8000000)
	positions := []m.Position{
		{
			CompanyID: TestCompany1.ID,
			EditablePositionInfo: m.EditablePositionInfo{
				Name:            "Backend Engineer",
				Description:     "Work on Go services and database layers.",
				Capacity:        3,
				Salary:          &salary,
				SubmissionStart: ptr(now.AddDate(0, 0, -1)),
				SubmissionEnd:   now.AddDate(0, 0, 7),
				Tags:            pq.StringArray{"go", "postgres"},
			},
		},
		{
			CompanyID: TestCompany1.ID,
			EditablePositionInfo: m.EditablePositionInfo{
				Name:          "Frontend Developer",
				Description:   "Build the component library.",
				Capacity:      1,
				SubmissionEnd: now.AddDate(0, 0, -1),
			},
		},
		{
			CompanyID: TestCompany2.ID,
			EditablePositionInfo: m.EditablePositionInfo{
				Name:          "Data Analyst",
				Description:   "Support data cleansing and dashboard creation.",
				Capacity:      2,
				SubmissionEnd: now.AddDate(0, 1, 0),
				Tags:          pq.StringArray{"sql", "dashboard"},
			},
		},
	}
	if err := db.Create(&positions).Error; err != nil {
		return err
	}
	TestPositionOpen1, TestPositionClosed, TestPositionOpen2 = positions[0], positions[1], positions[2]

	return nil
}

// ptr helper
func ptr[T any](v T) *T { return &v }
