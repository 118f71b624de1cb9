package services

import (
	"fmt"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"

	"github.com/roshshop/backend/models"
)

type StripeService struct {
	WebhookKey string
	baseURL    string
}

func NewStripeService(secretKey, webhookKey, publicBaseURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		WebhookKey: webhookKey,
		baseURL:    publicBaseURL,
	}
}

// CreateCheckoutSession turns the order snapshot into a hosted Stripe checkout
// session tagged with the order id, and returns the redirect URL.
func (s *StripeService) CreateCheckoutSession(order *models.Order) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          buildLineItems(order.OrderItems),
		SuccessURL:         stripe.String(fmt.Sprintf("%s/order-success?orderId=%s", s.baseURL, order.ID)),
		CancelURL:          stripe.String(s.baseURL + "/checkout"),
	}
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("user_id", order.UserID.String())

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session: %w", err)
	}
	return sess.URL, nil
}

func buildLineItems(items []models.OrderItem) []*stripe.CheckoutSessionLineItemParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String("usd"),
				ProductData: productData,
				UnitAmount:  stripe.Int64(item.UnitPrice),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}
	return lineItems
}

// ParseWebhook verifies the event signature against the shared webhook secret
// before anything trusts its payload.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
