package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gearbox/workshop/internal/config"
	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gearbox/workshop/internal/workshop/testutil"
)

func testJWTConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:             testutil.JWTSecret,
			AccessTokenExpire:  time.Hour,
			RefreshTokenExpire: 7 * 24 * time.Hour,
			Issuer:             "workshop",
		},
	}
}

func setupCustomerTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	customerSvc := service.NewCustomerService(repos.Customer)
	authSvc := service.NewAuthService(repos.Customer, repos.Mechanic, nil, testJWTConfig())
	customerHandler := NewCustomerHandler(customerSvc)
	authHandler := NewAuthHandler(authSvc)

	// Signup and login are public
	router.POST("/customers", customerHandler.Create)
	router.POST("/customers/login", authHandler.LoginCustomer)

	api := testutil.AuthGroup(router, "")
	api.GET("/customers", customerHandler.List)
	api.GET("/customers/:id", customerHandler.Get)
	api.PUT("/customers/:id", customerHandler.Update)
	api.DELETE("/customers/:id", customerHandler.Delete)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestCustomerSignupAndLogin(t *testing.T) {
	env := setupCustomerTest(t)

	w := testutil.DoRequest(env.Router, "POST", "/customers", map[string]interface{}{
		"first_name": "Hana",
		"last_name":  "Ignition",
		"email":      "hana@test.com",
		"phone":      "555-0100",
		"address":    "3 Garage Lane",
		"username":   "hana",
		"password":   "password123",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("Signup response must not leak the password hash: %s", w.Body.String())
	}

	// Login with the right password
	w2 := testutil.DoRequest(env.Router, "POST", "/customers/login", map[string]interface{}{
		"email":    "hana@test.com",
		"password": "password123",
	}, "")
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200 on login, got %d: %s", w2.Code, w2.Body.String())
	}
	data := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	if data["access_token"] == nil || data["refresh_token"] == nil {
		t.Errorf("Expected token pair, got %v", data)
	}

	// The issued access token opens the authorized surface
	w3 := testutil.DoRequest(env.Router, "GET", "/customers", nil, data["access_token"].(string))
	if w3.Code != http.StatusOK {
		t.Fatalf("Expected 200 with issued token, got %d: %s", w3.Code, w3.Body.String())
	}

	// Wrong password and unknown email both read the same
	w4 := testutil.DoRequest(env.Router, "POST", "/customers/login", map[string]interface{}{
		"email":    "hana@test.com",
		"password": "wrong-password",
	}, "")
	if w4.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for wrong password, got %d: %s", w4.Code, w4.Body.String())
	}
	w5 := testutil.DoRequest(env.Router, "POST", "/customers/login", map[string]interface{}{
		"email":    "nobody@test.com",
		"password": "password123",
	}, "")
	if w5.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for unknown email, got %d: %s", w5.Code, w5.Body.String())
	}
	if testutil.ParseResponse(w4)["message"] != testutil.ParseResponse(w5)["message"] {
		t.Errorf("Wrong-password and unknown-email must be indistinguishable")
	}
}

func TestCustomerUpdateAndDelete(t *testing.T) {
	env := setupCustomerTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Iris", "Jumpstart")
	ticket := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusPending)
	token := testutil.GenerateTestToken(customer.ID, entity.RoleCustomer)

	// Partial update leaves the other fields alone
	w := testutil.DoRequest(env.Router, "PUT", "/customers/"+customer.ID,
		map[string]interface{}{"address": "4 New Street"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["address"] != "4 New Street" {
		t.Errorf("Expected updated address, got %v", data["address"])
	}
	if data["first_name"] != "Iris" {
		t.Errorf("Expected first name unchanged, got %v", data["first_name"])
	}

	// Delete takes the owned ticket with it
	w2 := testutil.DoRequest(env.Router, "DELETE", "/customers/"+customer.ID, nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200 on delete, got %d: %s", w2.Code, w2.Body.String())
	}

	var count int64
	env.DB.Model(&entity.ServiceTicket{}).Where("id = ?", ticket.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected owned ticket deleted with customer, found %d rows", count)
	}

	// Repeat delete
	w3 := testutil.DoRequest(env.Router, "DELETE", "/customers/"+customer.ID, nil, token)
	if w3.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 on repeat delete, got %d: %s", w3.Code, w3.Body.String())
	}
}

func TestCustomerDeleteRemovesConsumedParts(t *testing.T) {
	env := setupCustomerTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Jack", "Kilowatt")
	ticket := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusInProgress)
	desc := testutil.SeedPartDescription(t, env.DB, "Fuse", 2.50)
	consumed := testutil.SeedPart(t, env.DB, desc.ID)
	onShelf := testutil.SeedPart(t, env.DB, desc.ID)
	env.DB.Model(&entity.Part{}).Where("id = ?", consumed.ID).Update("ticket_id", ticket.ID)

	token := testutil.GenerateTestToken(customer.ID, entity.RoleCustomer)
	w := testutil.DoRequest(env.Router, "DELETE", "/customers/"+customer.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The consumed unit goes with its ticket; it never returns to stock
	var count int64
	env.DB.Model(&entity.Part{}).Where("id = ?", consumed.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected consumed part removed with its ticket, found %d rows", count)
	}

	// Unconsumed stock of the same catalog entry is untouched
	env.DB.Model(&entity.Part{}).Where("id = ?", onShelf.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected shelf unit to survive, found %d rows", count)
	}
}
