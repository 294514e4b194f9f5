package handlers

import (
	"github.com/jmoiron/sqlx"

	"shopreel/internal/config"
	"shopreel/internal/repos"
	"shopreel/internal/services"
)

type Deps struct {
	ProductHandler      *ProductHandler
	PromoHandler        *PromoHandler
	OrderHandler        *OrderHandler
	AddressHandler      *AddressHandler
	NotificationHandler *NotificationHandler
}

// NewDeps wires repositories, services, and handlers. Every external
// collaborator (payment gateway, push provider) is an injected handle, not
// a module-level global.
func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(db)
	promoRepo := repos.NewPromoRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	notifRepo := repos.NewNotificationRepo(db)
	addrRepo := repos.NewAddressRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	promoSvc := services.NewPromoService(promoRepo)
	paymentSvc := services.NewPaymentService(cfg.PaymentSecret,
		services.NewHTTPGateway(cfg.GatewayURL, cfg.PaymentSecret))

	var pusher services.Pusher
	if cfg.PushEndpoint != "" {
		pusher = services.NewHTTPPusher(cfg.PushEndpoint)
	}
	notifier := services.NewNotifier(notifRepo, pusher)

	orderSvc := services.NewOrderService(orderRepo, prodRepo, promoSvc, paymentSvc, notifier)

	return &Deps{
		ProductHandler:      &ProductHandler{Catalog: catalogSvc},
		PromoHandler:        &PromoHandler{Promo: promoSvc},
		OrderHandler:        &OrderHandler{Order: orderSvc, Repo: orderRepo},
		AddressHandler:      &AddressHandler{Repo: addrRepo},
		NotificationHandler: &NotificationHandler{Repo: notifRepo},
	}
}
