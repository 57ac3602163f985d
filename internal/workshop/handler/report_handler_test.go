package handler

import (
	"net/http"
	"testing"

	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gearbox/workshop/internal/workshop/testutil"
	"gorm.io/gorm"
)

func setupReportTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	svc := service.NewReportService(repos.Report)
	handler := NewReportHandler(svc)

	api := testutil.AuthGroup(router, "")
	api.GET("/reports/top-spenders", handler.TopSpenders)
	api.GET("/reports/top-mechanics", handler.TopMechanics)
	api.GET("/reports/export", handler.Export)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func priceTicket(t *testing.T, db *gorm.DB, ticketID string, price float64) {
	t.Helper()
	err := db.Model(&entity.ServiceTicket{}).Where("id = ?", ticketID).
		Updates(map[string]interface{}{"status": entity.StatusComplete, "price": price}).Error
	if err != nil {
		t.Fatalf("Failed to price ticket: %v", err)
	}
}

func TestTopSpendersOrdering(t *testing.T) {
	env := setupReportTest(t)
	big := testutil.SeedCustomer(t, env.DB, "Pia", "Quartz")
	small := testutil.SeedCustomer(t, env.DB, "Quentin", "Radiator")
	idle := testutil.SeedCustomer(t, env.DB, "Rosa", "Solenoid")

	priceTicket(t, env.DB, testutil.SeedTicket(t, env.DB, big.ID, entity.StatusPending).ID, 300)
	priceTicket(t, env.DB, testutil.SeedTicket(t, env.DB, big.ID, entity.StatusPending).ID, 150)
	priceTicket(t, env.DB, testutil.SeedTicket(t, env.DB, small.ID, entity.StatusPending).ID, 165)
	// Unpriced tickets stay out of the totals
	testutil.SeedTicket(t, env.DB, small.ID, entity.StatusInProgress)
	testutil.SeedTicket(t, env.DB, idle.ID, entity.StatusPending)

	token := testutil.ManagerToken()
	w := testutil.DoRequest(env.Router, "GET", "/reports/top-spenders", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	spenders := testutil.ParseResponse(w)["data"].([]interface{})
	if len(spenders) != 2 {
		t.Fatalf("Expected 2 spenders, got %d", len(spenders))
	}
	first := spenders[0].(map[string]interface{})
	second := spenders[1].(map[string]interface{})
	if first["customer_id"] != big.ID || first["total"].(float64) != 450 {
		t.Errorf("Expected %s with 450 first, got %v", big.ID, first)
	}
	if second["customer_id"] != small.ID || second["total"].(float64) != 165 {
		t.Errorf("Expected %s with 165 second, got %v", small.ID, second)
	}
}

func TestTopMechanicsOrdering(t *testing.T) {
	env := setupReportTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Sam", "Throttle")
	busy := testutil.SeedMechanic(t, env.DB, "Tess", "Union", entity.RoleMechanic)
	slow := testutil.SeedMechanic(t, env.DB, "Uwe", "Valve", entity.RoleMechanic)
	testutil.SeedMechanic(t, env.DB, "Vera", "Washer", entity.RoleMechanic)

	t1 := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusAssigned)
	t2 := testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusAssigned)
	env.DB.Create(&entity.TicketMechanic{ServiceTicketID: t1.ID, MechanicID: busy.ID})
	env.DB.Create(&entity.TicketMechanic{ServiceTicketID: t2.ID, MechanicID: busy.ID})
	env.DB.Create(&entity.TicketMechanic{ServiceTicketID: t1.ID, MechanicID: slow.ID})

	token := testutil.ManagerToken()
	w := testutil.DoRequest(env.Router, "GET", "/reports/top-mechanics", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	mechanics := testutil.ParseResponse(w)["data"].([]interface{})
	if len(mechanics) != 2 {
		t.Fatalf("Expected 2 mechanics with assignments, got %d", len(mechanics))
	}
	first := mechanics[0].(map[string]interface{})
	if first["mechanic_id"] != busy.ID || first["ticket_count"].(float64) != 2 {
		t.Errorf("Expected %s with 2 tickets first, got %v", busy.ID, first)
	}
}

func TestReportExport(t *testing.T) {
	env := setupReportTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Will", "Xenon")
	priceTicket(t, env.DB, testutil.SeedTicket(t, env.DB, customer.ID, entity.StatusPending).ID, 165)

	// Export is manager only
	mechanicToken := testutil.GenerateTestToken("mech-r", entity.RoleMechanic)
	w := testutil.DoRequest(env.Router, "GET", "/reports/export", nil, mechanicToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for mechanic export, got %d: %s", w.Code, w.Body.String())
	}

	w2 := testutil.DoRequest(env.Router, "GET", "/reports/export", nil, testutil.ManagerToken())
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	contentType := w2.Header().Get("Content-Type")
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Expected xlsx content type, got %q", contentType)
	}
	if w2.Body.Len() == 0 {
		t.Errorf("Expected non-empty workbook")
	}
}
