package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/account"
	"github.com/vasiliy-maslov/foodtruck-service/internal/auth"
	"github.com/vasiliy-maslov/foodtruck-service/internal/catalog"
	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
	"github.com/vasiliy-maslov/foodtruck-service/internal/location"
	"github.com/vasiliy-maslov/foodtruck-service/internal/message"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
	"github.com/vasiliy-maslov/foodtruck-service/internal/realtime"
	"github.com/vasiliy-maslov/foodtruck-service/internal/report"
	"github.com/vasiliy-maslov/foodtruck-service/internal/supplier"
)

type Services struct {
	Accounts  account.Service
	Catalog   catalog.Service
	Customers customer.Service
	Locations location.Service
	Orders    order.Service
	Reports   report.Service
	Messages  message.Service
	Suppliers supplier.Service
}

type Handler struct {
	accounts  account.Service
	catalog   catalog.Service
	customers customer.Service
	locations location.Service
	orders    order.Service
	reports   report.Service
	messages  message.Service
	suppliers supplier.Service
	verifier  auth.Verifier
	hub       *realtime.Hub
	validate  *validator.Validate
}

func NewHandler(services Services, verifier auth.Verifier, hub *realtime.Hub) *Handler {
	return &Handler{
		accounts:  services.Accounts,
		catalog:   services.Catalog,
		customers: services.Customers,
		locations: services.Locations,
		orders:    services.Orders,
		reports:   services.Reports,
		messages:  services.Messages,
		suppliers: services.Suppliers,
		verifier:  verifier,
		hub:       hub,
		validate:  validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.handleHealth)

	router.Route("/public", func(r chi.Router) {
		r.Use(auth.OptionalIdentity(h.verifier))
		r.Get("/trucks", h.handlePublicTrucks)
		r.Get("/menu", h.handlePublicMenu)
		r.Post("/orders", h.handlePublicOrder)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireIdentity(h.verifier))
		r.Post("/auth/session", h.handleSignIn)
		r.Get("/me", h.handleMe)

		r.Route("/accounts/{accountID}", func(r chi.Router) {
			r.Use(h.authorizeAccount)

			r.Get("/", h.handleGetAccount)
			r.Patch("/", h.handleUpdateAccount)
			r.Get("/users", h.handleListUsers)
			r.Post("/users", h.handleAddUser)

			r.Get("/products", h.handleListProducts)
			r.Post("/products", h.handleCreateProduct)
			r.Get("/products/{productID}", h.handleGetProduct)
			r.Put("/products/{productID}", h.handleUpdateProduct)
			r.Post("/products/{productID}/inventory-events", h.handleRecordInventoryEvent)

			r.Get("/customers", h.handleListCustomers)
			r.Post("/customers", h.handleCreateCustomer)
			r.Get("/customers/{customerID}", h.handleGetCustomer)

			r.Get("/locations", h.handleListLocations)
			r.Post("/locations", h.handleCreateLocation)
			r.Post("/location-pings", h.handleRecordPing)

			r.Get("/orders", h.handleListOrders)
			r.Post("/orders", h.handleCreateOrder)
			r.Get("/orders/{orderID}", h.handleGetOrder)
			r.Post("/orders/{orderID}/status", h.handleAdvanceStatus)

			r.Get("/messages", h.handleListMessages)
			r.Post("/messages", h.handleCreateMessage)

			r.Get("/supplier-transactions", h.handleListSupplierTransactions)
			r.Post("/supplier-transactions", h.handleCreateSupplierTransaction)

			r.Get("/dashboard", h.handleDashboard)
			r.Get("/reports/top-products", h.handleTopProducts)
			r.Get("/reports/profit-snapshots", h.handleListProfitSnapshots)
			r.Post("/reports/profit-snapshots", h.handleCreateProfitSnapshot)

			r.Get("/stream", h.handleStream)
		})
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorizeAccount checks that the signed-in identity may act on {accountID}.
func (h *Handler) authorizeAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		accountID, ok := uuidParam(w, r, "accountID")
		if !ok {
			return
		}

		role, err := h.accounts.Authorize(r.Context(), identity.UID, accountID)
		if err != nil {
			log.Warn().Err(err).Str("uid", identity.UID).Stringer("account_id", accountID).Msg("Account access denied")
			respondWithServiceError(w, err, "Failed to authorize account access")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountRoleKey{}, role)))
	})
}

type accountRoleKey struct{}

// accountRoleFrom reads the caller's role stored by authorizeAccount.
func accountRoleFrom(r *http.Request) account.Role {
	role, _ := r.Context().Value(accountRoleKey{}).(account.Role)
	return role
}

// accountIDFrom reads the already-authorized account id.
func accountIDFrom(r *http.Request) uuid.UUID {
	return uuid.FromStringOrNil(chi.URLParam(r, "accountID"))
}
