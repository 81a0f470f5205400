package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/handlers"
	"github.com/xdrive/xdrive-logistics/internal/service"
	"github.com/xdrive/xdrive-logistics/pkg/auth"
	"github.com/xdrive/xdrive-logistics/pkg/events"
)

// ---------- Mocks ----------

type mockShipmentRepo struct {
	nextID    int64
	shipments map[int64]*domain.Shipment
}

func newMockShipmentRepo() *mockShipmentRepo {
	return &mockShipmentRepo{nextID: 1, shipments: make(map[int64]*domain.Shipment)}
}

func (m *mockShipmentRepo) Create(_ context.Context, userID int64, req *domain.CreateShipmentRequest) (*domain.Shipment, error) {
	shipment := &domain.Shipment{
		ID:               m.nextID,
		UserID:           userID,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: req.DeliveryLocation,
		CargoType:        req.CargoType,
		Status:           domain.ShipmentOpen,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if req.PickupDate != nil {
		shipment.PickupDate = *req.PickupDate
	}
	if req.Weight != nil {
		shipment.Weight = *req.Weight
	}
	m.nextID++
	m.shipments[shipment.ID] = shipment
	return shipment, nil
}

func (m *mockShipmentRepo) GetByID(_ context.Context, id int64) (*domain.Shipment, error) {
	shipment, exists := m.shipments[id]
	if !exists {
		return nil, nil
	}
	copied := *shipment
	return &copied, nil
}

func (m *mockShipmentRepo) List(_ context.Context, filter domain.ShipmentFilter, limit, offset int) ([]domain.Shipment, error) {
	var result []domain.Shipment
	for _, s := range m.shipments {
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.UserID != nil && s.UserID != *filter.UserID {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockShipmentRepo) UpdateStatus(_ context.Context, id int64, from, to domain.ShipmentStatus) (bool, error) {
	shipment, exists := m.shipments[id]
	if !exists || shipment.Status != from {
		return false, nil
	}
	shipment.Status = to
	return true, nil
}

type mockOfferRepo struct {
	nextID    int64
	offers    map[int64]*domain.Offer
	shipments *mockShipmentRepo
}

func newMockOfferRepo(shipments *mockShipmentRepo) *mockOfferRepo {
	return &mockOfferRepo{nextID: 1, offers: make(map[int64]*domain.Offer), shipments: shipments}
}

func (m *mockOfferRepo) Create(_ context.Context, driverID int64, req *domain.CreateOfferRequest) (*domain.Offer, error) {
	offer := &domain.Offer{
		ID:         m.nextID,
		ShipmentID: req.ShipmentID,
		DriverID:   driverID,
		Price:      *req.Price,
		Notes:      req.Notes,
		Status:     domain.OfferPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.nextID++
	m.offers[offer.ID] = offer
	return offer, nil
}

func (m *mockOfferRepo) GetByID(_ context.Context, id int64) (*domain.Offer, error) {
	offer, exists := m.offers[id]
	if !exists {
		return nil, nil
	}
	copied := *offer
	return &copied, nil
}

func (m *mockOfferRepo) ListByShipment(_ context.Context, shipmentID int64) ([]domain.Offer, error) {
	var result []domain.Offer
	for _, o := range m.offers {
		if o.ShipmentID == shipmentID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (m *mockOfferRepo) Accept(_ context.Context, offerID int64) (*domain.Offer, int64, error) {
	offer, exists := m.offers[offerID]
	if !exists || offer.Status != domain.OfferPending {
		return nil, 0, domain.ErrConflict
	}

	shipment := m.shipments.shipments[offer.ShipmentID]
	if shipment == nil || shipment.Status != domain.ShipmentOpen {
		return nil, 0, domain.ErrConflict
	}

	offer.Status = domain.OfferAccepted
	shipment.Status = domain.ShipmentInTransit

	var rejected int64
	for _, sibling := range m.offers {
		if sibling.ShipmentID == offer.ShipmentID && sibling.ID != offerID && sibling.Status == domain.OfferPending {
			sibling.Status = domain.OfferRejected
			rejected++
		}
	}

	copied := *offer
	return &copied, rejected, nil
}

func (m *mockOfferRepo) Reject(_ context.Context, offerID int64) (*domain.Offer, error) {
	offer, exists := m.offers[offerID]
	if !exists || offer.Status != domain.OfferPending {
		return nil, domain.ErrConflict
	}
	offer.Status = domain.OfferRejected
	copied := *offer
	return &copied, nil
}

// ---------- Test Setup ----------

func setupMarketplaceServer() (*httptest.Server, *mockShipmentRepo, *mockOfferRepo) {
	cfg := testConfig()
	shipmentRepo := newMockShipmentRepo()
	offerRepo := newMockOfferRepo(shipmentRepo)

	shipmentService := service.NewShipmentService(shipmentRepo, events.NoopPublisher{})
	offerService := service.NewOfferService(offerRepo, shipmentRepo, events.NoopPublisher{})
	h := handlers.New(nil, shipmentService, offerService, nil, nil, nil, nil, allowAllLimiter{}, cfg)

	r := chi.NewRouter()
	r.Route("/api/shipments", func(r chi.Router) {
		r.Get("/", h.ListShipments)
		r.Get("/{id}", h.GetShipment)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT("shipper"))
			r.Post("/", h.CreateShipment)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT())
			r.Post("/{id}/cancel", h.CancelShipment)
			r.Post("/{id}/complete", h.CompleteShipment)
		})
	})
	r.Route("/api/offers", func(r chi.Router) {
		r.Get("/", h.ListOffers)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT("driver"))
			r.Post("/", h.CreateOffer)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.RequireJWT("shipper"))
			r.Post("/{id}/accept", h.AcceptOffer)
			r.Post("/{id}/reject", h.RejectOffer)
		})
	})

	return httptest.NewServer(r), shipmentRepo, offerRepo
}

func sessionToken(t *testing.T, userID int64, email, accountType string) string {
	t.Helper()
	token, err := auth.NewSessionToken(userID, email, accountType, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to mint session token: %v", err)
	}
	return token
}

func doAuthed(t *testing.T, method, url, token string, body interface{}, expectedStatus int) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	if resp.StatusCode != expectedStatus {
		t.Fatalf("%s %s: expected status %d, got %d", method, url, expectedStatus, resp.StatusCode)
	}
	return resp
}

// ---------- Tests ----------

func TestShipments_CreateAndList(t *testing.T) {
	server, _, _ := setupMarketplaceServer()
	defer server.Close()

	shipper := sessionToken(t, 7, "shipper@example.com", "shipper")
	pickup := time.Now().Add(48 * time.Hour)

	body := map[string]interface{}{
		"pickup_location":   "Manchester M1",
		"delivery_location": "Leeds LS1",
		"pickup_date":       pickup.Format(time.RFC3339),
		"cargo_type":        "pallets",
		"weight":            420.5,
	}
	resp := doAuthed(t, http.MethodPost, server.URL+"/api/shipments", shipper, body, http.StatusCreated)

	var created struct {
		Shipment domain.Shipment `json:"shipment"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Shipment.ID == 0 || created.Shipment.UserID != 7 {
		t.Fatalf("Unexpected shipment: %+v", created.Shipment)
	}
	if created.Shipment.Status != domain.ShipmentOpen {
		t.Fatalf("Expected new shipment to be open, got %s", created.Shipment.Status)
	}

	// A new shipment shows up in the public listing without auth.
	resp = get(t, server.URL+"/api/shipments?status=open", http.StatusOK)
	var listed struct {
		Shipments []domain.Shipment `json:"shipments"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Shipments) != 1 {
		t.Fatalf("Expected 1 open shipment, got %d", len(listed.Shipments))
	}
}

func TestShipments_CreateRequiresShipperRole(t *testing.T) {
	server, _, _ := setupMarketplaceServer()
	defer server.Close()

	driver := sessionToken(t, 3, "driver@example.com", "driver")
	pickup := time.Now().Add(24 * time.Hour)

	body := map[string]interface{}{
		"pickup_location":   "A",
		"delivery_location": "B",
		"pickup_date":       pickup.Format(time.RFC3339),
	}
	resp := doAuthed(t, http.MethodPost, server.URL+"/api/shipments", driver, body, http.StatusForbidden)
	resp.Body.Close()

	resp = doAuthed(t, http.MethodPost, server.URL+"/api/shipments", "", body, http.StatusUnauthorized)
	resp.Body.Close()
}

func TestShipments_UnknownRoleTokenRejected(t *testing.T) {
	server, _, _ := setupMarketplaceServer()
	defer server.Close()

	// A syntactically valid token whose account type is outside the
	// closed role set must not pass the auth gate.
	forged := sessionToken(t, 9, "pilot@example.com", "pilot")
	pickup := time.Now().Add(24 * time.Hour)

	body := map[string]interface{}{
		"pickup_location":   "A",
		"delivery_location": "B",
		"pickup_date":       pickup.Format(time.RFC3339),
	}
	resp := doAuthed(t, http.MethodPost, server.URL+"/api/shipments", forged, body, http.StatusUnauthorized)
	resp.Body.Close()

	resp = doAuthed(t, http.MethodPost, server.URL+"/api/shipments/1/cancel", forged, nil, http.StatusUnauthorized)
	resp.Body.Close()
}

func TestShipments_CancelOnlyByOwner(t *testing.T) {
	server, repo, _ := setupMarketplaceServer()
	defer server.Close()

	pickup := time.Now().Add(24 * time.Hour)
	shipment, _ := repo.Create(context.Background(), 7, &domain.CreateShipmentRequest{
		PickupLocation:   "A",
		DeliveryLocation: "B",
		PickupDate:       &pickup,
	})

	stranger := sessionToken(t, 8, "other@example.com", "shipper")
	resp := doAuthed(t, http.MethodPost, server.URL+"/api/shipments/1/cancel", stranger, nil, http.StatusForbidden)
	resp.Body.Close()

	owner := sessionToken(t, 7, "shipper@example.com", "shipper")
	resp = doAuthed(t, http.MethodPost, server.URL+"/api/shipments/1/cancel", owner, nil, http.StatusOK)
	var result struct {
		Shipment domain.Shipment `json:"shipment"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()

	if result.Shipment.Status != domain.ShipmentCancelled {
		t.Fatalf("Expected cancelled shipment, got %s", result.Shipment.Status)
	}

	// Cancelling again conflicts: the shipment already left the open state.
	resp = doAuthed(t, http.MethodPost, server.URL+"/api/shipments/1/cancel", owner, nil, http.StatusConflict)
	resp.Body.Close()
	_ = shipment
}

func TestOffers_CreateValidation(t *testing.T) {
	server, repo, _ := setupMarketplaceServer()
	defer server.Close()

	pickup := time.Now().Add(24 * time.Hour)
	repo.Create(context.Background(), 7, &domain.CreateShipmentRequest{
		PickupLocation:   "A",
		DeliveryLocation: "B",
		PickupDate:       &pickup,
	})

	driver := sessionToken(t, 3, "driver@example.com", "driver")

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"missing price", map[string]interface{}{"shipment_id": 1}, http.StatusBadRequest},
		{"zero price", map[string]interface{}{"shipment_id": 1, "price": 0}, http.StatusBadRequest},
		{"negative price", map[string]interface{}{"shipment_id": 1, "price": -20}, http.StatusBadRequest},
		{"unknown shipment", map[string]interface{}{"shipment_id": 99, "price": 150}, http.StatusNotFound},
		{"valid", map[string]interface{}{"shipment_id": 1, "price": 150, "notes": "flatbed"}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doAuthed(t, http.MethodPost, server.URL+"/api/offers", driver, tt.body, tt.status)
			resp.Body.Close()
		})
	}
}

func TestOffers_AcceptRejectsSiblingsAndAdvancesShipment(t *testing.T) {
	server, shipmentRepo, offerRepo := setupMarketplaceServer()
	defer server.Close()

	pickup := time.Now().Add(24 * time.Hour)
	shipmentRepo.Create(context.Background(), 7, &domain.CreateShipmentRequest{
		PickupLocation:   "A",
		DeliveryLocation: "B",
		PickupDate:       &pickup,
	})

	price1, price2 := 150.0, 175.0
	offerRepo.Create(context.Background(), 3, &domain.CreateOfferRequest{ShipmentID: 1, Price: &price1})
	offerRepo.Create(context.Background(), 4, &domain.CreateOfferRequest{ShipmentID: 1, Price: &price2})

	// Only the shipment owner may accept.
	stranger := sessionToken(t, 8, "other@example.com", "shipper")
	resp := doAuthed(t, http.MethodPost, server.URL+"/api/offers/1/accept", stranger, nil, http.StatusForbidden)
	resp.Body.Close()

	owner := sessionToken(t, 7, "shipper@example.com", "shipper")
	resp = doAuthed(t, http.MethodPost, server.URL+"/api/offers/1/accept", owner, nil, http.StatusOK)
	var result struct {
		Offer domain.Offer `json:"offer"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()

	if result.Offer.Status != domain.OfferAccepted {
		t.Fatalf("Expected accepted offer, got %s", result.Offer.Status)
	}
	if offerRepo.offers[2].Status != domain.OfferRejected {
		t.Fatalf("Expected sibling offer rejected, got %s", offerRepo.offers[2].Status)
	}
	if shipmentRepo.shipments[1].Status != domain.ShipmentInTransit {
		t.Fatalf("Expected shipment in_transit, got %s", shipmentRepo.shipments[1].Status)
	}

	// Accepting the already rejected sibling conflicts.
	resp = doAuthed(t, http.MethodPost, server.URL+"/api/offers/2/accept", owner, nil, http.StatusConflict)
	resp.Body.Close()
}

func TestOffers_ListRequiresShipmentID(t *testing.T) {
	server, _, _ := setupMarketplaceServer()
	defer server.Close()

	resp := get(t, server.URL+"/api/offers", http.StatusBadRequest)
	resp.Body.Close()
}
