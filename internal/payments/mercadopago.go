package payments

import (
	"context"
	"fmt"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"github.com/salaohub/salon-scheduler/internal/config"
	"github.com/salaohub/salon-scheduler/internal/models"
)

// Checkout é o resultado da criação de uma preferência de pagamento
type Checkout struct {
	PreferenceID string `json:"preference_id"`
	InitPoint    string `json:"init_point"`
}

// PaymentInfo é o recorte do pagamento que interessa ao fluxo de assinatura
type PaymentInfo struct {
	ID                string
	Status            string
	Amount            float64
	ExternalReference string
}

// Service encapsula o checkout do MercadoPago para assinaturas de plano.
type Service struct {
	prefs    preference.Client
	payments payment.Client

	frontendURL string
}

func NewService(cfg *config.Config) (*Service, error) {
	mpCfg, err := mpconfig.New(cfg.MercadoPagoAccessToken)
	if err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}

	return &Service{
		prefs:       preference.NewClient(mpCfg),
		payments:    payment.NewClient(mpCfg),
		frontendURL: cfg.FrontendURL,
	}, nil
}

// CreateCheckout cria a preferência de assinatura de um plano.
// external_reference carrega "salon_{id}" para o retorno do pagamento.
func (s *Service) CreateCheckout(ctx context.Context, salon *models.Salon, plan *models.Plan) (*Checkout, error) {
	ref := fmt.Sprintf("salon_%d", salon.ID)

	req := preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:     fmt.Sprintf("Assinatura %s", plan.Name),
				Quantity:  1,
				UnitPrice: plan.Price,
			},
		},
		ExternalReference: ref,
		BackURLs: &preference.BackURLsRequest{
			Success: s.frontendURL + "/pagamento/sucesso",
			Pending: s.frontendURL + "/pagamento/pendente",
			Failure: s.frontendURL + "/pagamento/erro",
		},
		AutoReturn: "approved",
	}

	pref, err := s.prefs.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("payments: criar preferência: %w", err)
	}

	return &Checkout{
		PreferenceID: pref.ID,
		InitPoint:    pref.InitPoint,
	}, nil
}

// GetPayment consulta um pagamento pelo ID retornado no redirect
func (s *Service) GetPayment(ctx context.Context, paymentID int) (*PaymentInfo, error) {
	p, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("payments: consultar pagamento: %w", err)
	}

	return &PaymentInfo{
		ID:                fmt.Sprintf("%d", p.ID),
		Status:            p.Status,
		Amount:            p.TransactionAmount,
		ExternalReference: p.ExternalReference,
	}, nil
}
