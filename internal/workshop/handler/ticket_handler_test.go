package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gearbox/workshop/internal/workshop/testutil"
)

func setupTicketTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	svc := service.NewTicketService(repos.Ticket, repos.Customer, repos.Mechanic, repos.Part, testutil.TestLaborFee)
	handler := NewTicketHandler(svc)

	api := testutil.AuthGroup(router, "")
	api.POST("/tickets", handler.Create)
	api.GET("/tickets", handler.List)
	api.GET("/tickets/:id", handler.Get)
	api.PUT("/tickets/:id/status", handler.SetStatus)
	api.PUT("/tickets/:id/assign-mechanic/:mechanicID", handler.AssignMechanic)
	api.PUT("/tickets/:id/remove-mechanic/:mechanicID", handler.RemoveMechanic)
	api.PUT("/tickets/:id/parts/:partID", handler.ConsumePart)
	api.GET("/tickets/:id/parts", handler.ListParts)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestTicketCompletionPricing(t *testing.T) {
	env := setupTicketTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Ada", "Lovelace")
	mechanic := testutil.SeedMechanic(t, env.DB, "Bob", "Wrench", entity.RoleMechanic)
	desc := testutil.SeedPartDescription(t, env.DB, "Oil Filter", 15.00)
	unit := testutil.SeedPart(t, env.DB, desc.ID)

	customerToken := testutil.GenerateTestToken(customer.ID, entity.RoleCustomer)
	mechanicToken := testutil.GenerateTestToken(mechanic.ID, entity.RoleMechanic)
	managerToken := testutil.ManagerToken()

	// Open a ticket
	w := testutil.DoRequest(env.Router, "POST", "/tickets", map[string]interface{}{
		"customer_id":       customer.ID,
		"vin":               "1HGBH41JXMN109186",
		"issue_description": "Oil change overdue",
	}, customerToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != entity.StatusPending {
		t.Errorf("Expected status Pending, got %v", data["status"])
	}
	if data["price"] != nil {
		t.Errorf("Expected nil price on open ticket, got %v", data["price"])
	}
	ticketID := data["id"].(string)

	// Manager consumes the oil filter unit
	w2 := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticketID+"/parts/"+unit.ID, nil, managerToken)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200 on consume, got %d: %s", w2.Code, w2.Body.String())
	}

	// Mechanic completes the ticket: price = labor 150.00 + filter 15.00
	w3 := testutil.DoRequest(env.Router, "PUT", "/tickets/"+ticketID+"/status",
		map[string]interface{}{"status": entity.StatusComplete}, mechanicToken)
	if w3.Code != http.StatusOK {
		t.Fatalf("Expected 200 on complete, got %d: %s", w3.Code, w3.Body.String())
	}
	data3 := testutil.ParseResponse(w3)["data"].(map[string]interface{})
	if price := data3["price"].(float64); price != 165.00 {
		t.Errorf("Expected price 165.00, got %v", price)
	}

	// Consuming another unit and completing again must not re-price
	unit2 := testutil.SeedPart(t, env.DB, desc.ID)
	testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticketID+"/parts/"+unit2.ID, nil, managerToken)
	w4 := testutil.DoRequest(env.Router, "PUT", "/tickets/"+ticketID+"/status",
		map[string]interface{}{"status": entity.StatusComplete}, mechanicToken)
	if w4.Code != http.StatusOK {
		t.Fatalf("Expected 200 on repeat complete, got %d: %s", w4.Code, w4.Body.String())
	}
	data4 := testutil.ParseResponse(w4)["data"].(map[string]interface{})
	if price := data4["price"].(float64); price != 165.00 {
		t.Errorf("Expected price to stay 165.00 after repeat complete, got %v", price)
	}
}

func TestTicketStatusValidation(t *testing.T) {
	env := setupTicketTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Carl", "Diesel")
	ticket := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusPending)

	mechanicToken := testutil.GenerateTestToken("mech-x", entity.RoleMechanic)
	customerToken := testutil.GenerateTestToken(customer.ID, entity.RoleCustomer)

	// Unknown status value
	w := testutil.DoRequest(env.Router, "PUT", "/tickets/"+ticket.ID+"/status",
		map[string]interface{}{"status": "Fixed"}, mechanicToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown status, got %d: %s", w.Code, w.Body.String())
	}
	msg := testutil.ParseResponse(w)["message"].(string)
	if !strings.Contains(msg, entity.StatusAwaitingParts) {
		t.Errorf("Expected allowed statuses in message, got %q", msg)
	}

	// Customers cannot drive the lifecycle
	w2 := testutil.DoRequest(env.Router, "PUT", "/tickets/"+ticket.ID+"/status",
		map[string]interface{}{"status": entity.StatusInProgress}, customerToken)
	if w2.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for customer status change, got %d: %s", w2.Code, w2.Body.String())
	}

	// Valid transition
	w3 := testutil.DoRequest(env.Router, "PUT", "/tickets/"+ticket.ID+"/status",
		map[string]interface{}{"status": entity.StatusInProgress}, mechanicToken)
	if w3.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w3.Code, w3.Body.String())
	}

	// Unknown ticket
	w4 := testutil.DoRequest(env.Router, "PUT", "/tickets/00000000-0000-0000-0000-000000000000/status",
		map[string]interface{}{"status": entity.StatusInProgress}, mechanicToken)
	if w4.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown ticket, got %d: %s", w4.Code, w4.Body.String())
	}
}

func TestTicketAssignAndRemoveMechanic(t *testing.T) {
	env := setupTicketTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Dora", "Explorer")
	mechanic := testutil.SeedMechanic(t, env.DB, "Eli", "Torque", entity.RoleMechanic)
	ticket := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusPending)

	managerToken := testutil.ManagerToken()
	mechanicToken := testutil.GenerateTestToken(mechanic.ID, entity.RoleMechanic)

	// Only managers assign
	w := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticket.ID+"/assign-mechanic/"+mechanic.ID, nil, mechanicToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for mechanic assigning, got %d: %s", w.Code, w.Body.String())
	}

	w2 := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticket.ID+"/assign-mechanic/"+mechanic.ID, nil, managerToken)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200 on assign, got %d: %s", w2.Code, w2.Body.String())
	}

	// Assigning twice is an idempotent no-op
	w3 := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticket.ID+"/assign-mechanic/"+mechanic.ID, nil, managerToken)
	if w3.Code != http.StatusOK {
		t.Fatalf("Expected 200 on repeat assign, got %d: %s", w3.Code, w3.Body.String())
	}

	wGet := testutil.DoRequest(env.Router, "GET", "/tickets/"+ticket.ID, nil, managerToken)
	data := testutil.ParseResponse(wGet)["data"].(map[string]interface{})
	if data["status"] != entity.StatusAssigned {
		t.Errorf("Expected status Assigned after assign, got %v", data["status"])
	}
	if mechanics := data["mechanics"].([]interface{}); len(mechanics) != 1 {
		t.Errorf("Expected 1 assigned mechanic after repeat assign, got %d", len(mechanics))
	}

	// Unknown mechanic
	w4 := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticket.ID+"/assign-mechanic/00000000-0000-0000-0000-000000000000", nil, managerToken)
	if w4.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown mechanic, got %d: %s", w4.Code, w4.Body.String())
	}

	// Remove, then remove again
	w5 := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticket.ID+"/remove-mechanic/"+mechanic.ID, nil, managerToken)
	if w5.Code != http.StatusOK {
		t.Fatalf("Expected 200 on remove, got %d: %s", w5.Code, w5.Body.String())
	}

	w6 := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticket.ID+"/remove-mechanic/"+mechanic.ID, nil, managerToken)
	if w6.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 on repeat remove, got %d: %s", w6.Code, w6.Body.String())
	}
	msg := testutil.ParseResponse(w6)["message"].(string)
	if !strings.Contains(msg, "was not assigned") {
		t.Errorf("Expected 'was not assigned' message, got %q", msg)
	}
}

func TestConsumePartConflict(t *testing.T) {
	env := setupTicketTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Finn", "Gasket")
	ticketA := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusInProgress)
	ticketB := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusInProgress)
	desc := testutil.SeedPartDescription(t, env.DB, "Brake Pad", 42.50)
	unit := testutil.SeedPart(t, env.DB, desc.ID)

	managerToken := testutil.ManagerToken()
	mechanicToken := testutil.GenerateTestToken("mech-y", entity.RoleMechanic)

	// Only managers consume stock
	w := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticketA.ID+"/parts/"+unit.ID, nil, mechanicToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for mechanic consuming, got %d: %s", w.Code, w.Body.String())
	}

	w2 := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticketA.ID+"/parts/"+unit.ID, nil, managerToken)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200 on first consume, got %d: %s", w2.Code, w2.Body.String())
	}

	// The same physical unit cannot go onto a second ticket
	w3 := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticketB.ID+"/parts/"+unit.ID, nil, managerToken)
	if w3.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on second consume, got %d: %s", w3.Code, w3.Body.String())
	}

	// The unit stays on the first ticket
	w4 := testutil.DoRequest(env.Router, "GET", "/tickets/"+ticketA.ID+"/parts", nil, managerToken)
	if w4.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing parts, got %d: %s", w4.Code, w4.Body.String())
	}
	parts := testutil.ParseResponse(w4)["data"].([]interface{})
	if len(parts) != 1 {
		t.Fatalf("Expected 1 consumed part on ticket A, got %d", len(parts))
	}
	line := parts[0].(map[string]interface{})
	if line["description"] != "Brake Pad" {
		t.Errorf("Expected description 'Brake Pad', got %v", line["description"])
	}

	w5 := testutil.DoRequest(env.Router, "GET", "/tickets/"+ticketB.ID+"/parts", nil, managerToken)
	if parts := testutil.ParseResponse(w5)["data"].([]interface{}); len(parts) != 0 {
		t.Errorf("Expected 0 parts on ticket B, got %d", len(parts))
	}
}

func TestListPartsMissingCatalogRow(t *testing.T) {
	env := setupTicketTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Hal", "Solenoid")
	ticket := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusInProgress)
	desc := testutil.SeedPartDescription(t, env.DB, "Alternator", 180.00)
	unit := testutil.SeedPart(t, env.DB, desc.ID)

	managerToken := testutil.ManagerToken()
	w := testutil.DoRequest(env.Router, "PUT",
		"/tickets/"+ticket.ID+"/parts/"+unit.ID, nil, managerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on consume, got %d: %s", w.Code, w.Body.String())
	}

	// Orphan the consumed unit by removing its catalog row
	if err := env.DB.Where("id = ?", desc.ID).Delete(&entity.PartDescription{}).Error; err != nil {
		t.Fatalf("Failed to delete catalog row: %v", err)
	}

	// The listing degrades to a placeholder instead of failing
	w2 := testutil.DoRequest(env.Router, "GET", "/tickets/"+ticket.ID+"/parts", nil, managerToken)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing parts, got %d: %s", w2.Code, w2.Body.String())
	}
	parts := testutil.ParseResponse(w2)["data"].([]interface{})
	if len(parts) != 1 {
		t.Fatalf("Expected 1 consumed part, got %d", len(parts))
	}
	line := parts[0].(map[string]interface{})
	if line["description"] != "Description N/A" {
		t.Errorf("Expected placeholder description, got %v", line["description"])
	}
	if line["part_id"] != unit.ID {
		t.Errorf("Expected part %s, got %v", unit.ID, line["part_id"])
	}
}

func TestTicketCreateUnknownCustomer(t *testing.T) {
	env := setupTicketTest(t)
	token := testutil.GenerateTestToken("nobody", entity.RoleCustomer)

	w := testutil.DoRequest(env.Router, "POST", "/tickets", map[string]interface{}{
		"customer_id":       "00000000-0000-0000-0000-000000000000",
		"vin":               "WVWZZZ1JZXW000001",
		"issue_description": "Rattle at idle",
	}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown customer, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTicketListAndGet(t *testing.T) {
	env := setupTicketTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Gus", "Piston")
	testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusPending)
	ticket := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusInProgress)

	token := testutil.GenerateTestToken(customer.ID, entity.RoleCustomer)

	w := testutil.DoRequest(env.Router, "GET", "/tickets", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if tickets := testutil.ParseResponse(w)["data"].([]interface{}); len(tickets) != 2 {
		t.Errorf("Expected 2 tickets, got %d", len(tickets))
	}

	w2 := testutil.DoRequest(env.Router, "GET", "/tickets/"+ticket.ID, nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	data := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	nested := data["customer"].(map[string]interface{})
	if nested["first_name"] != "Gus" {
		t.Errorf("Expected nested customer summary, got %v", data["customer"])
	}

	// No token at all
	w3 := testutil.DoRequest(env.Router, "GET", "/tickets", nil, "")
	if w3.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d: %s", w3.Code, w3.Body.String())
	}
}
