package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/auth"
	"github.com/vasiliy-maslov/foodtruck-service/internal/catalog"
	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
	"github.com/vasiliy-maslov/foodtruck-service/internal/location"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
)

type PublicAccount struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	City string    `json:"city,omitempty"`
}

// PublicProduct is the customer-facing view of a product; cost and stock stay private.
type PublicProduct struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Category        string           `json:"category,omitempty"`
	MenuType        catalog.MenuType `json:"menu_type"`
	Price           float64          `json:"price"`
	PrepTimeSeconds *int             `json:"prep_time_seconds,omitempty"`
}

type PublicMenuResponse struct {
	Account  PublicAccount   `json:"account"`
	Products []PublicProduct `json:"products"`
	Preview  bool            `json:"preview"`
}

type PublicCustomerRequest struct {
	Name           string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	MarketingOptIn bool   `json:"marketing_opt_in"`
}

// PublicOrderItemRequest has no price field; anonymous orders always pay menu price.
type PublicOrderItemRequest struct {
	ProductID           string `json:"product_id" validate:"required,uuid"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions,omitempty" validate:"max=500"`
}

type PublicOrderRequest struct {
	Customer   *PublicCustomerRequest   `json:"customer,omitempty"`
	LocationID string                   `json:"location_id,omitempty" validate:"omitempty,uuid"`
	Channel    string                   `json:"channel,omitempty" validate:"omitempty,oneof=sms web_form qr_code in_person phone other"`
	Notes      string                   `json:"notes,omitempty" validate:"max=1000"`
	Items      []PublicOrderItemRequest `json:"items" validate:"dive"`
}

func (h *Handler) handlePublicTrucks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	latRaw, lngRaw := query.Get("lat"), query.Get("lng")

	var coords *location.Coords
	if latRaw != "" || lngRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lng, errLng := strconv.ParseFloat(lngRaw, 64)
		if errLat != nil || errLng != nil {
			respondWithError(w, http.StatusBadRequest, "lat and lng must both be valid numbers")
			return
		}
		coords = &location.Coords{Lat: lat, Lng: lng}
	}

	trucks, err := h.locations.ListPublicTrucks(r.Context(), coords, query.Get("city"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to list trucks")
		return
	}
	respondWithJSON(w, http.StatusOK, trucks)
}

// resolveMenuAccount reads ?account=, falling back to the signed-in business
// owner's own account. preview reports the fallback.
func (h *Handler) resolveMenuAccount(w http.ResponseWriter, r *http.Request) (accountID uuid.UUID, preview bool, ok bool) {
	if raw := strings.TrimSpace(r.URL.Query().Get("account")); raw != "" {
		id, err := uuid.FromString(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid account parameter")
			return uuid.Nil, false, false
		}
		return id, false, true
	}

	identity, signedIn := auth.IdentityFromContext(r.Context())
	if signedIn {
		session, err := h.accounts.CurrentSession(r.Context(), identity.UID)
		if err == nil && session.Profile != nil && session.Profile.IsBusiness() && session.Profile.PrimaryAccountID != nil {
			return *session.Profile.PrimaryAccountID, true, true
		}
		if err != nil {
			log.Debug().Err(err).Str("uid", identity.UID).Msg("No business session for menu preview")
		}
	}

	respondWithError(w, http.StatusBadRequest, "account parameter is required")
	return uuid.Nil, false, false
}

func (h *Handler) handlePublicMenu(w http.ResponseWriter, r *http.Request) {
	accountID, preview, ok := h.resolveMenuAccount(w, r)
	if !ok {
		return
	}

	acct, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load menu")
		return
	}
	products, err := h.catalog.ListProducts(r.Context(), accountID, true)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load menu")
		return
	}

	resp := PublicMenuResponse{
		Account:  PublicAccount{ID: acct.ID, Name: acct.Name, City: acct.City},
		Products: make([]PublicProduct, 0, len(products)),
		Preview:  preview,
	}
	for _, p := range products {
		resp.Products = append(resp.Products, PublicProduct{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			Category:        p.Category,
			MenuType:        p.MenuType,
			Price:           p.Price,
			PrepTimeSeconds: p.PrepTimeSeconds,
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePublicOrder(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("account"))
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "account parameter is required")
		return
	}
	accountID, err := uuid.FromString(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account parameter")
		return
	}

	var req PublicOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if _, err := h.accounts.GetAccount(r.Context(), accountID); err != nil {
		respondWithServiceError(w, err, "Failed to place order")
		return
	}

	items := make([]OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, OrderItemRequest{
			ProductID:           item.ProductID,
			Quantity:            item.Quantity,
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	input, err := CreateOrderRequest{
		LocationID: req.LocationID,
		Channel:    req.Channel,
		Notes:      req.Notes,
		Items:      items,
	}.toInput(accountID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id in request payload")
		return
	}
	if input.Channel == "" {
		input.Channel = order.ChannelWebForm
	}
	// The cart is checked before a customer contact is stored for it.
	if err := h.orders.ValidateItems(r.Context(), accountID, input.Items); err != nil {
		respondWithServiceError(w, err, "Failed to place order")
		return
	}

	if c := req.Customer; c != nil && (strings.TrimSpace(c.Name) != "" || strings.TrimSpace(c.Phone) != "" || strings.TrimSpace(c.Email) != "") {
		channel := customer.ChannelNone
		if strings.TrimSpace(c.Phone) != "" {
			channel = customer.ChannelSMS
		}
		created, err := h.customers.CreateCustomer(r.Context(), &customer.Customer{
			AccountID:        accountID,
			Name:             c.Name,
			Phone:            c.Phone,
			Email:            c.Email,
			PreferredChannel: channel,
			MarketingOptIn:   c.MarketingOptIn,
		})
		if err != nil {
			respondWithServiceError(w, err, "Failed to save customer contact")
			return
		}
		input.CustomerID = &created.ID
	}

	h.createOrder(w, r, input)
}
