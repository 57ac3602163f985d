package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gearbox/workshop/internal/middleware"
	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_workshop"
	JWTSecret  = "workshop-jwt-secret-key-2024"
	// TestLaborFee matches the default flat labor charge.
	TestLaborFee = 150.00
)

// TestPassword is the plaintext behind every seeded account.
const TestPassword = "password123"

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "workshop")
	password := getEnv("DB_PASSWORD", "workshop123")
	dbname := getEnv("DB_NAME", "workshop")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// Create a unique test schema for isolation
	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Migrate test tables
	err = db.AutoMigrate(
		&entity.Customer{},
		&entity.Mechanic{},
		&entity.ServiceTicket{},
		&entity.TicketMechanic{},
		&entity.PartDescription{},
		&entity.Part{},
		&entity.TicketAttachment{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	// Cleanup on test completion
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		// Reconnect to drop the schema
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing.
// Revocation is not checked; logout tests wire their own RevocationCheck.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret, nil))
}

// GenerateTestToken creates a valid access token for the given principal.
func GenerateTestToken(principalID string, role entity.Role) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  principalID,
		"role": string(role),
		"type": "access",
		"iss":  "workshop",
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
		"jti":  fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// ManagerToken returns a token for an ad-hoc manager principal.
func ManagerToken() string {
	return GenerateTestToken(uuid.New().String(), entity.RoleManager)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// HashTestPassword returns a bcrypt hash of TestPassword.
func HashTestPassword(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}
	return string(hash)
}

// SeedCustomer creates a customer row with unique contact fields.
func SeedCustomer(t *testing.T, db *gorm.DB, firstName, lastName string) *entity.Customer {
	t.Helper()
	id := uuid.New().String()
	customer := &entity.Customer{
		ID:           id,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        fmt.Sprintf("%s@test.com", id[:8]),
		Phone:        fmt.Sprintf("555-%s", id[:8]),
		Address:      "1 Test Street",
		Username:     "cust_" + id[:8],
		PasswordHash: HashTestPassword(t),
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("Failed to seed test customer: %v", err)
	}
	return customer
}

// SeedMechanic creates a mechanic row with the given role.
func SeedMechanic(t *testing.T, db *gorm.DB, firstName, lastName string, role entity.Role) *entity.Mechanic {
	t.Helper()
	id := uuid.New().String()
	mechanic := &entity.Mechanic{
		ID:           id,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        fmt.Sprintf("%s@shop.test.com", id[:8]),
		Salary:       52000,
		Address:      "2 Shop Road",
		PasswordHash: HashTestPassword(t),
		Role:         role,
	}
	if err := db.Create(mechanic).Error; err != nil {
		t.Fatalf("Failed to seed test mechanic: %v", err)
	}
	return mechanic
}

// SeedTicket creates a ticket for the customer in the given status.
func SeedTicket(t *testing.T, db *gorm.DB, customerID, status string) *entity.ServiceTicket {
	t.Helper()
	ticket := &entity.ServiceTicket{
		ID:               uuid.New().String(),
		CustomerID:       customerID,
		VIN:              "1HGBH41JXMN109186",
		IssueDescription: "Engine makes a ticking noise",
		Status:           status,
	}
	if err := db.Create(ticket).Error; err != nil {
		t.Fatalf("Failed to seed test ticket: %v", err)
	}
	return ticket
}

// SeedPartDescription creates a catalog entry.
func SeedPartDescription(t *testing.T, db *gorm.DB, name string, price float64) *entity.PartDescription {
	t.Helper()
	desc := &entity.PartDescription{
		ID:    uuid.New().String(),
		Name:  name,
		Price: price,
	}
	if err := db.Create(desc).Error; err != nil {
		t.Fatalf("Failed to seed part description: %v", err)
	}
	return desc
}

// SeedPart creates one physical unit of the given catalog entry.
func SeedPart(t *testing.T, db *gorm.DB, descriptionID string) *entity.Part {
	t.Helper()
	part := &entity.Part{
		ID:            uuid.New().String(),
		DescriptionID: descriptionID,
	}
	if err := db.Create(part).Error; err != nil {
		t.Fatalf("Failed to seed part unit: %v", err)
	}
	return part
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
