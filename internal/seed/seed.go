package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/vasiliy-maslov/foodtruck-service/internal/account"
	"github.com/vasiliy-maslov/foodtruck-service/internal/auth"
	"github.com/vasiliy-maslov/foodtruck-service/internal/catalog"
	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
	"github.com/vasiliy-maslov/foodtruck-service/internal/location"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var menuYAML []byte

const seedProvider = "seed"

type MenuItem struct {
	Name            string  `yaml:"name"`
	Category        string  `yaml:"category"`
	MenuType        string  `yaml:"menu_type"`
	Price           float64 `yaml:"price"`
	Cost            float64 `yaml:"cost"`
	PrepTimeSeconds int     `yaml:"prep_time_seconds"`
	Stock           float64 `yaml:"stock"`
}

type menuFile struct {
	Items []MenuItem `yaml:"items"`
}

// DemoMenu parses the embedded demo menu.
func DemoMenu() ([]MenuItem, error) {
	return ParseMenu(menuYAML)
}

func ParseMenu(data []byte) ([]MenuItem, error) {
	var f menuFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: failed to parse menu: %w", err)
	}
	if len(f.Items) == 0 {
		return nil, errors.New("seed: menu has no items")
	}
	return f.Items, nil
}

type Accounts interface {
	SignIn(ctx context.Context, identity auth.Identity, req account.SignInRequest) (*account.Session, error)
}

type Products interface {
	CreateProduct(ctx context.Context, p *catalog.Product) (*catalog.Product, error)
	RecordInventoryEvent(ctx context.Context, e *catalog.InventoryEvent) (*catalog.Product, error)
}

type Customers interface {
	CreateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error)
}

type Locations interface {
	CreateLocation(ctx context.Context, l *location.Location) (*location.Location, error)
}

type Orders interface {
	CreateOrder(ctx context.Context, input order.CreateInput) (*order.Order, error)
	AdvanceStatus(ctx context.Context, accountID, orderID uuid.UUID, target order.Status) (*order.Order, error)
}

type Options struct {
	AccountName string
	Products    int
	Customers   int
	Orders      int
}

type Result struct {
	AccountID  uuid.UUID
	OwnerUID   string
	Products   int
	Customers  int
	LocationID uuid.UUID
	Orders     int
}

type Seeder struct {
	accounts  Accounts
	products  Products
	customers Customers
	locations Locations
	orders    Orders
	fake      faker.Faker
	out       io.Writer
}

// NewSeeder builds a seeder; progress is drawn to out.
func NewSeeder(accounts Accounts, products Products, customers Customers, locations Locations, orders Orders, out io.Writer) *Seeder {
	if out == nil {
		out = io.Discard
	}
	return &Seeder{
		accounts:  accounts,
		products:  products,
		customers: customers,
		locations: locations,
		orders:    orders,
		fake:      faker.New(),
		out:       out,
	}
}

// Run provisions a demo business with its menu, customers, a truck location and orders.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	menu, err := DemoMenu()
	if err != nil {
		return nil, err
	}
	if opts.Products > 0 && opts.Products < len(menu) {
		menu = menu[:opts.Products]
	}
	if opts.Customers <= 0 {
		opts.Customers = 5
	}
	if opts.AccountName == "" {
		opts.AccountName = s.fake.Company().Name()
	}

	owner := auth.Identity{
		UID:         seedProvider + "-" + cuid.New(),
		Email:       strings.ToLower(s.fake.Internet().Email()),
		DisplayName: s.fake.Person().Name(),
		Provider:    seedProvider,
	}
	session, err := s.accounts.SignIn(ctx, owner, account.SignInRequest{
		Kind:         account.KindBusinessOwner,
		BusinessName: opts.AccountName,
	})
	if err != nil {
		return nil, fmt.Errorf("seed: failed to provision account: %w", err)
	}
	if session.Account == nil {
		return nil, errors.New("seed: sign-in did not return an account")
	}
	accountID := session.Account.ID
	res := &Result{AccountID: accountID, OwnerUID: owner.UID}

	productIDs, err := s.seedProducts(ctx, accountID, menu)
	if err != nil {
		return nil, err
	}
	res.Products = len(productIDs)

	customerIDs, err := s.seedCustomers(ctx, accountID, opts.Customers)
	if err != nil {
		return nil, err
	}
	res.Customers = len(customerIDs)

	lat, lng := s.fake.Address().Latitude(), s.fake.Address().Longitude()
	loc, err := s.locations.CreateLocation(ctx, &location.Location{
		AccountID:       accountID,
		Name:            "Main truck",
		Address1:        s.fake.Address().StreetAddress(),
		City:            s.fake.Address().City(),
		Latitude:        &lat,
		Longitude:       &lng,
		IsTruckLocation: true,
		IsPublic:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("seed: failed to create location: %w", err)
	}
	res.LocationID = loc.ID

	n, err := s.seedOrders(ctx, accountID, loc.ID, productIDs, customerIDs, opts.Orders)
	res.Orders = n
	if err != nil {
		return res, err
	}

	log.Info().Stringer("account_id", accountID).Int("products", res.Products).Int("orders", res.Orders).Msg("seed: demo data created")
	return res, nil
}

func (s *Seeder) seedProducts(ctx context.Context, accountID uuid.UUID, menu []MenuItem) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(menu))
	for _, item := range menu {
		p := &catalog.Product{
			AccountID: accountID,
			Name:      item.Name,
			Category:  item.Category,
			MenuType:  catalog.MenuType(item.MenuType),
			IsActive:  true,
			Price:     item.Price,
		}
		if item.Cost > 0 {
			cost := item.Cost
			p.Cost = &cost
		}
		if item.PrepTimeSeconds > 0 {
			prep := item.PrepTimeSeconds
			p.PrepTimeSeconds = &prep
		}

		created, err := s.products.CreateProduct(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("seed: failed to create product %q: %w", item.Name, err)
		}
		ids = append(ids, created.ID)

		if item.Stock > 0 {
			_, err := s.products.RecordInventoryEvent(ctx, &catalog.InventoryEvent{
				AccountID:     accountID,
				ProductID:     created.ID,
				Type:          catalog.InventoryPurchase,
				QuantityDelta: item.Stock,
				UnitCost:      p.Cost,
				Reason:        "opening stock",
			})
			if err != nil {
				return nil, fmt.Errorf("seed: failed to stock product %q: %w", item.Name, err)
			}
		}
	}
	return ids, nil
}

func (s *Seeder) seedCustomers(ctx context.Context, accountID uuid.UUID, n int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		c, err := s.customers.CreateCustomer(ctx, &customer.Customer{
			AccountID:        accountID,
			Name:             s.fake.Person().Name(),
			Phone:            s.fake.Phone().Number(),
			Email:            s.fake.Internet().Email(),
			PreferredChannel: customer.ChannelSMS,
			MarketingOptIn:   s.fake.Bool(),
		})
		if err != nil {
			return nil, fmt.Errorf("seed: failed to create customer: %w", err)
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

var seedChannels = []order.Channel{order.ChannelWebForm, order.ChannelQRCode, order.ChannelInPerson, order.ChannelSMS}

func (s *Seeder) seedOrders(ctx context.Context, accountID, locationID uuid.UUID, productIDs, customerIDs []uuid.UUID, n int) (int, error) {
	if n <= 0 || len(productIDs) == 0 {
		return 0, nil
	}

	bar := progressbar.NewOptions(n,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription("seeding orders"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	created := 0
	for i := 0; i < n; i++ {
		input := order.CreateInput{
			AccountID:     accountID,
			LocationID:    &locationID,
			Channel:       seedChannels[s.fake.IntBetween(0, len(seedChannels)-1)],
			PaymentMethod: "card",
		}
		if len(customerIDs) > 0 && s.fake.Bool() {
			id := customerIDs[s.fake.IntBetween(0, len(customerIDs)-1)]
			input.CustomerID = &id
		}
		lines := s.fake.IntBetween(1, 3)
		for j := 0; j < lines; j++ {
			input.Items = append(input.Items, order.ItemInput{
				ProductID: productIDs[s.fake.IntBetween(0, len(productIDs)-1)],
				Quantity:  s.fake.IntBetween(1, 3),
			})
		}

		o, err := s.orders.CreateOrder(ctx, input)
		if err != nil {
			return created, fmt.Errorf("seed: failed to create order %d: %w", i+1, err)
		}
		created++

		// Walk a share of the orders forward so the board has every stage.
		steps := s.fake.IntBetween(0, 4)
		for k := 0; k < steps; k++ {
			if _, err := s.orders.AdvanceStatus(ctx, accountID, o.ID, ""); err != nil {
				return created, fmt.Errorf("seed: failed to advance order %s: %w", o.ID, err)
			}
		}
		_ = bar.Add(1)
	}
	return created, nil
}
