package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/account"
	"github.com/vasiliy-maslov/foodtruck-service/internal/auth"
	"github.com/vasiliy-maslov/foodtruck-service/internal/catalog"
	"github.com/vasiliy-maslov/foodtruck-service/internal/config"
	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
	"github.com/vasiliy-maslov/foodtruck-service/internal/db"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
	handler "github.com/vasiliy-maslov/foodtruck-service/internal/handler/http"
	"github.com/vasiliy-maslov/foodtruck-service/internal/location"
	"github.com/vasiliy-maslov/foodtruck-service/internal/message"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
	"github.com/vasiliy-maslov/foodtruck-service/internal/report"
	"github.com/vasiliy-maslov/foodtruck-service/internal/supplier"
)

func newPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Driver {
	case "rabbitmq":
		return events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return events.NewNoop(), nil
	}
}

func newVerifier(ctx context.Context, cfg config.AuthConfig) (auth.Verifier, error) {
	if cfg.Provider == "firebase" {
		return auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	}
	return auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL), nil
}

// newServices wires repositories and services over one Postgres handle. Every
// event also reaches an order notifier that queues pickup messages.
func newServices(pg *db.Postgres, publisher events.Publisher, cfg *config.Config) (handler.Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return handler.Services{}, err
	}

	catalogSvc := catalog.NewService(catalog.NewRepository(pg.Pool))
	customerSvc := customer.NewService(customer.NewRepository(pg.Pool))
	locationSvc := location.NewService(location.NewRepository(pg.Pool))
	messageSvc := message.NewService(message.NewRepository(pg.Pool), customerSvc)
	supplierSvc := supplier.NewService(supplier.NewRepository(pg.Pool))

	orderEvents := events.NewMulti(publisher, message.NewOrderNotifier(messageSvc, customerSvc))
	orderSvc := order.NewService(order.NewRepository(pg.Pool), catalogSvc, customerSvc, locationSvc, orderEvents)

	log.Debug().Str("timezone", loc.String()).Msg("Services wired")
	return handler.Services{
		Accounts:  account.NewService(account.NewRepository(pg.Pool), publisher),
		Catalog:   catalogSvc,
		Customers: customerSvc,
		Locations: locationSvc,
		Orders:    orderSvc,
		Reports:   report.NewService(orderSvc, supplierSvc, report.NewRepository(pg.SQLX), loc),
		Messages:  messageSvc,
		Suppliers: supplierSvc,
	}, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*db.Postgres, error) {
	if cfg.Postgres.AutoMigrate {
		if err := db.MigrateUp(cfg.Postgres); err != nil {
			return nil, err
		}
	}
	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pg, nil
}
